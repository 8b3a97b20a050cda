package family

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ltcare/familyhub/internal/testutil"
	"github.com/ltcare/familyhub/pkg/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func serve(t *testing.T, h http.Handler, userID int64, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

type handlerEnv struct {
	routes http.Handler
	alice  int64
	bob    int64
	carol  int64
}

// newHandlerEnv builds a family owned by alice with bob as a member; carol
// belongs to no family.
func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	svc, db := newTestService(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	familyID, _, err := svc.EnsureFamilyForInviter(context.Background(), alice)
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), familyID, bob)
	require.NoError(t, err)

	return &handlerEnv{
		routes: NewHandler(svc, zap.NewNop()).Routes(),
		alice:  alice,
		bob:    bob,
		carol:  carol,
	}
}

func TestHandlerErrors(t *testing.T) {
	e := newHandlerEnv(t)

	tests := []struct {
		name   string
		userID int64
		method string
		path   string
		body   string
		want   int
		code   string
	}{
		{"unauthenticated", 0, http.MethodGet, "/", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"rename malformed body", e.alice, http.MethodPatch, "/", `{`, http.StatusBadRequest, "BAD_REQUEST"},
		{"rename blank name", e.alice, http.MethodPatch, "/", `{"name":"   "}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"rename by member", e.bob, http.MethodPatch, "/", `{"name":"Bob's"}`, http.StatusForbidden, "FORBIDDEN"},
		{"rename without family", e.carol, http.MethodPatch, "/", `{"name":"Carol's"}`, http.StatusForbidden, "FORBIDDEN"},
		{"remove non-numeric id", e.alice, http.MethodDelete, "/members/abc", "", http.StatusBadRequest, "BAD_REQUEST"},
		{"remove zero id", e.alice, http.MethodDelete, "/members/0", "", http.StatusBadRequest, "BAD_REQUEST"},
		{"remove self", e.alice, http.MethodDelete, fmt.Sprintf("/members/%d", e.alice), "", http.StatusBadRequest, "BAD_REQUEST"},
		{"remove by member", e.bob, http.MethodDelete, fmt.Sprintf("/members/%d", e.alice), "", http.StatusForbidden, "FORBIDDEN"},
		{"remove non-member", e.alice, http.MethodDelete, fmt.Sprintf("/members/%d", e.carol), "", http.StatusNotFound, "NOT_FOUND"},
		{"leave without family", e.carol, http.MethodPost, "/leave", "", http.StatusNotFound, "NOT_FOUND"},
		{"owner leaves with members", e.alice, http.MethodPost, "/leave", "", http.StatusConflict, "CONFLICT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := serve(t, e.routes, tt.userID, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestHandlerOwnerFlow(t *testing.T) {
	e := newHandlerEnv(t)

	rec, env := serve(t, e.routes, e.alice, http.MethodPatch, "/", `{"name":"The Smiths"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var renamed FamilyResponse
	require.NoError(t, json.Unmarshal(env.Data, &renamed))
	assert.Equal(t, "The Smiths", renamed.Name)

	rec, env = serve(t, e.routes, e.bob, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var overview OverviewResponse
	require.NoError(t, json.Unmarshal(env.Data, &overview))
	require.NotNil(t, overview.Family)
	assert.Equal(t, "The Smiths", overview.Family.Name)
	assert.Len(t, overview.Members, 2)

	rec, _ = serve(t, e.routes, e.alice, http.MethodDelete, fmt.Sprintf("/members/%d", e.bob), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = serve(t, e.routes, e.bob, http.MethodGet, "/members", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var members MembersResponse
	require.NoError(t, json.Unmarshal(env.Data, &members))
	assert.Nil(t, members.FamilyID)
	assert.Empty(t, members.Members)

	rec, _ = serve(t, e.routes, e.alice, http.MethodPost, "/leave", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = serve(t, e.routes, e.alice, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &overview))
	assert.Nil(t, overview.Family)
}
