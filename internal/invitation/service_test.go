package invitation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ltcare/familyhub/internal/database"
	"github.com/ltcare/familyhub/internal/family"
	"github.com/ltcare/familyhub/internal/notification"
	"github.com/ltcare/familyhub/internal/testutil"
	"github.com/ltcare/familyhub/internal/user"
	"github.com/ltcare/familyhub/pkg/apperror"
)

type testEnv struct {
	db            *database.DB
	svc           *Service
	families      *family.Service
	notifications *notification.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	logger := zap.NewNop()
	families := family.NewService(db, family.NewRepository(db), logger)
	notifications := notification.NewService(notification.NewRepository(db), logger)
	return &testEnv{
		db:            db,
		svc:           NewService(db, NewRepository(db), user.NewRepository(db), families, notifications, logger),
		families:      families,
		notifications: notifications,
	}
}

func (e *testEnv) invitation(t *testing.T, id int64) *Invitation {
	t.Helper()
	inv, err := e.svc.repo.GetForUpdate(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, inv)
	return inv
}

func TestInviteAndAcceptScenario(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	inv, err := e.svc.Invite(ctx, alice, "bob")
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, StatusPending, inv.Status)
	assert.Equal(t, alice, inv.InviterID)
	assert.Equal(t, bob, inv.InviteeID)

	fam, members, err := e.families.Current(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, fam)
	assert.Equal(t, inv.FamilyID, fam.ID)
	assert.True(t, fam.IsOwner(alice))
	require.Len(t, members, 1)

	pending, err := e.svc.ListPending(ctx, bob)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].InviterUsername)
	assert.Equal(t, fam.Name, pending[0].FamilyName)

	familyID, err := e.svc.Accept(ctx, bob, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.FamilyID, familyID)
	assert.Equal(t, StatusAccepted, e.invitation(t, inv.ID).Status)

	members, err = e.families.ListMembers(ctx, familyID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, alice, members[0].UserID)
	assert.Equal(t, bob, members[1].UserID)

	pending, err = e.svc.ListPending(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestInviteValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")

	tests := []struct {
		name     string
		username string
		want     error
	}{
		{"empty username", "   ", ErrInviteeRequired},
		{"unknown user", "nobody", ErrInviteeNotFound},
		{"self invite", "alice", ErrSelfInvite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.Invite(ctx, alice, tt.username)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, ok, err := e.families.ResolveFamilyID(ctx, alice)
	require.NoError(t, err)
	assert.False(t, ok, "failed invites must not create a family")
}

func TestDuplicatePendingInviteIsIgnored(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	first, err := e.svc.Invite(ctx, alice, "bob")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := e.svc.Invite(ctx, alice, "bob")
	require.NoError(t, err)
	assert.Nil(t, second)

	pending, err := e.svc.ListPending(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	count, err := e.notifications.GetUnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInviteExistingMemberConflicts(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	inv, err := e.svc.Invite(ctx, alice, "bob")
	require.NoError(t, err)
	_, err = e.svc.Accept(ctx, bob, inv.ID)
	require.NoError(t, err)

	_, err = e.svc.Invite(ctx, alice, "bob")
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.True(t, apperror.Is(err, apperror.Conflict))

	familyID, ok, err := e.families.ResolveFamilyID(ctx, alice)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, inv.FamilyID, familyID)
}

func TestAcceptTwiceConflicts(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	inv, err := e.svc.Invite(ctx, alice, "bob")
	require.NoError(t, err)

	_, err = e.svc.Accept(ctx, bob, inv.ID)
	require.NoError(t, err)

	_, err = e.svc.Accept(ctx, bob, inv.ID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	members, err := e.families.ListMembers(ctx, inv.FamilyID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestAcceptChecks(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	testutil.CreateUser(t, e.db, "bob")
	carol := testutil.CreateUser(t, e.db, "carol")

	inv, err := e.svc.Invite(ctx, alice, "bob")
	require.NoError(t, err)

	_, err = e.svc.Accept(ctx, carol, inv.ID)
	assert.ErrorIs(t, err, ErrNotInvitee)

	_, err = e.svc.Accept(ctx, carol, inv.ID+100)
	assert.ErrorIs(t, err, ErrInvitationNotFound)

	assert.Equal(t, StatusPending, e.invitation(t, inv.ID).Status)
}

func TestAcceptWhileInAnotherFamily(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	testutil.CreateUser(t, e.db, "carol")

	fromAlice, err := e.svc.Invite(ctx, alice, "carol")
	require.NoError(t, err)
	fromBob, err := e.svc.Invite(ctx, bob, "carol")
	require.NoError(t, err)

	carol := fromAlice.InviteeID
	_, err = e.svc.Accept(ctx, carol, fromAlice.ID)
	require.NoError(t, err)

	_, err = e.svc.Accept(ctx, carol, fromBob.ID)
	assert.ErrorIs(t, err, ErrInOtherFamily)
	assert.Equal(t, StatusPending, e.invitation(t, fromBob.ID).Status)
}

func TestDecline(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	carol := testutil.CreateUser(t, e.db, "carol")

	inv, err := e.svc.Invite(ctx, alice, "bob")
	require.NoError(t, err)

	errForeign := e.svc.Decline(ctx, carol, inv.ID)
	errMissing := e.svc.Decline(ctx, bob, inv.ID+100)
	assert.ErrorIs(t, errForeign, ErrInvitationNotFound)
	assert.ErrorIs(t, errMissing, ErrInvitationNotFound)
	assert.Equal(t, errMissing.Error(), errForeign.Error())

	require.NoError(t, e.svc.Decline(ctx, bob, inv.ID))
	assert.Equal(t, StatusDeclined, e.invitation(t, inv.ID).Status)

	assert.ErrorIs(t, e.svc.Decline(ctx, bob, inv.ID), ErrInvitationNotFound)

	_, err = e.svc.Accept(ctx, bob, inv.ID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	list, _, err := e.notifications.ListByRecipientID(ctx, alice, 1, 20, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, notification.TypeInvitationDeclined, list[0].Type)

	// a declined invitation no longer blocks a new one
	again, err := e.svc.Invite(ctx, alice, "bob")
	require.NoError(t, err)
	assert.NotNil(t, again)
}

func TestAcceptAfterFamilyDissolved(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	inv, err := e.svc.Invite(ctx, alice, "bob")
	require.NoError(t, err)

	// alice is the only member, so leaving dissolves the family
	require.NoError(t, e.families.Leave(ctx, alice))

	pending, err := e.svc.ListPending(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = e.svc.Accept(ctx, bob, inv.ID)
	assert.ErrorIs(t, err, ErrInvitationNotFound)

	_, ok, err := e.families.ResolveFamilyID(ctx, bob)
	require.NoError(t, err)
	assert.False(t, ok)

	// bob can still start a family of his own and rename it
	_, err = e.svc.Invite(ctx, bob, "alice")
	require.NoError(t, err)
	_, err = e.families.Rename(ctx, bob, "Bob's")
	require.NoError(t, err)
}

func TestConcurrentAccept(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	inv, err := e.svc.Invite(ctx, alice, "bob")
	require.NoError(t, err)

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.svc.Accept(ctx, bob, inv.ID)
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperror.Is(err, apperror.Conflict):
			conflicted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	members, err := e.families.ListMembers(ctx, inv.FamilyID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	count, err := e.notifications.GetUnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListPendingNewestFirst(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	carol := testutil.CreateUser(t, e.db, "carol")

	_, err := e.svc.Invite(ctx, carol, "bob")
	require.NoError(t, err)
	_, err = e.svc.Invite(ctx, alice, "bob")
	require.NoError(t, err)

	pending, err := e.svc.ListPending(ctx, bob)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "alice", pending[0].InviterUsername)
	assert.Equal(t, "carol", pending[1].InviterUsername)
}
