package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ltcare/familyhub/internal/database"
	"github.com/ltcare/familyhub/internal/family"
	"github.com/ltcare/familyhub/internal/testutil"
)

type testEnv struct {
	db       *database.DB
	svc      *Service
	families *family.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	families := family.NewService(db, family.NewRepository(db), zap.NewNop())
	return &testEnv{
		db:       db,
		svc:      NewService(db, NewRepository(db), families, zap.NewNop()),
		families: families,
	}
}

// userInFamily creates a user who owns a fresh family
func (e *testEnv) userInFamily(t *testing.T, username string) int64 {
	t.Helper()
	id := testutil.CreateUser(t, e.db, username)
	_, _, err := e.families.EnsureFamilyForInviter(context.Background(), id)
	require.NoError(t, err)
	return id
}

func (e *testEnv) create(t *testing.T, userID int64, title string, start, end time.Time) *Event {
	t.Helper()
	event, err := e.svc.CreateEvent(context.Background(), userID, &CreateEventRequest{
		Title:     title,
		StartTime: &start,
		EndTime:   &end,
	})
	require.NoError(t, err)
	return event
}

func titles(events []*Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

func TestCreateAndListRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.userInFamily(t, "alice")

	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	content := "bring <i>snacks</i>"
	color := "#ff8800"

	created, err := e.svc.CreateEvent(ctx, alice, &CreateEventRequest{
		Title:     "X",
		Content:   &content,
		StartTime: &t0,
		EndTime:   &t1,
		Color:     &color,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	familyID, events, err := e.svc.ListEvents(ctx, alice, nil)
	require.NoError(t, err)
	require.NotNil(t, familyID)
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, *familyID, got.FamilyID)
	assert.Equal(t, "X", got.Title)
	assert.True(t, t0.Equal(got.StartTime), "start %v", got.StartTime)
	assert.True(t, t1.Equal(got.EndTime), "end %v", got.EndTime)
	require.NotNil(t, got.Content)
	assert.Equal(t, "bring snacks", *got.Content)
	require.NotNil(t, got.AuthorUserID)
	assert.Equal(t, alice, *got.AuthorUserID)
}

func TestListEventsOverlap(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.userInFamily(t, "alice")

	a := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	e.create(t, alice, "before", a.Add(-2*time.Hour), a.Add(-time.Hour))
	e.create(t, alice, "touches start", a.Add(-time.Hour), a)
	e.create(t, alice, "spans start", a.Add(-time.Hour), a.Add(time.Hour))
	e.create(t, alice, "inside", a.Add(24*time.Hour), a.Add(25*time.Hour))
	e.create(t, alice, "overlaps end", b.Add(-time.Minute), b.Add(5*time.Minute))
	e.create(t, alice, "touches end", b, b.Add(5*time.Minute))

	_, events, err := e.svc.ListEvents(ctx, alice, &Range{Start: a, End: b})
	require.NoError(t, err)
	assert.Equal(t, []string{"spans start", "inside", "overlaps end"}, titles(events))

	_, all, err := e.svc.ListEvents(ctx, alice, nil)
	require.NoError(t, err)
	assert.Len(t, all, 6)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].StartTime.Before(all[i-1].StartTime), "events ordered by start time")
	}
}

func TestListEventsSubSecondBounds(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.userInFamily(t, "alice")

	ten := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e.create(t, alice, "at ten", ten, ten.Add(time.Hour))
	e.create(t, alice, "ends at ten", ten.Add(-time.Hour), ten)

	tests := []struct {
		name string
		rng  Range
		want []string
	}{
		{"end just after start", Range{Start: ten.Add(-time.Hour), End: ten.Add(500 * time.Millisecond)}, []string{"ends at ten", "at ten"}},
		{"window inside event", Range{Start: ten.Add(200 * time.Millisecond), End: ten.Add(800 * time.Millisecond)}, []string{"at ten"}},
		{"end just before start", Range{Start: ten.Add(-30 * time.Minute), End: ten.Add(-500 * time.Millisecond)}, []string{"ends at ten"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, events, err := e.svc.ListEvents(ctx, alice, &tt.rng)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(events))
		})
	}
}

func TestListEventsWithoutFamily(t *testing.T) {
	e := newTestEnv(t)
	bob := testutil.CreateUser(t, e.db, "bob")

	familyID, events, err := e.svc.ListEvents(context.Background(), bob, nil)
	require.NoError(t, err)
	assert.Nil(t, familyID)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestListEventsInvalidRange(t *testing.T) {
	e := newTestEnv(t)
	alice := e.userInFamily(t, "alice")
	now := time.Now()

	_, _, err := e.svc.ListEvents(context.Background(), alice, &Range{Start: now, End: now})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCreateEventValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.userInFamily(t, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name   string
		caller int64
		req    CreateEventRequest
		want   error
	}{
		{"missing title", alice, CreateEventRequest{StartTime: &start, EndTime: &end}, ErrMissingFields},
		{"markup only title", alice, CreateEventRequest{Title: "<p></p>", StartTime: &start, EndTime: &end}, ErrMissingFields},
		{"missing start", alice, CreateEventRequest{Title: "X", EndTime: &end}, ErrMissingFields},
		{"missing end", alice, CreateEventRequest{Title: "X", StartTime: &start}, ErrMissingFields},
		{"end before start", alice, CreateEventRequest{Title: "X", StartTime: &end, EndTime: &start}, ErrInvalidTimes},
		{"no family", bob, CreateEventRequest{Title: "X", StartTime: &start, EndTime: &end}, ErrNoFamily},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.CreateEvent(ctx, tt.caller, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateEventMergePatch(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.userInFamily(t, "alice")

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	color := "blue"
	created, err := e.svc.CreateEvent(ctx, alice, &CreateEventRequest{
		Title: "Dentist", StartTime: &start, EndTime: &end, Color: &color,
	})
	require.NoError(t, err)

	newTitle := "Dentist (moved)"
	updated, err := e.svc.UpdateEvent(ctx, alice, created.ID, &UpdateEventRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.True(t, start.Equal(updated.StartTime))
	assert.True(t, end.Equal(updated.EndTime))
	require.NotNil(t, updated.Color)
	assert.Equal(t, "blue", *updated.Color)

	newEnd := end.Add(2 * time.Hour)
	updated, err = e.svc.UpdateEvent(ctx, alice, created.ID, &UpdateEventRequest{EndTime: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.True(t, newEnd.Equal(updated.EndTime))

	tooEarly := start.Add(-time.Hour)
	_, err = e.svc.UpdateEvent(ctx, alice, created.ID, &UpdateEventRequest{EndTime: &tooEarly})
	assert.ErrorIs(t, err, ErrInvalidTimes)

	empty := "  "
	_, err = e.svc.UpdateEvent(ctx, alice, created.ID, &UpdateEventRequest{Title: &empty})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, events, err := e.svc.ListEvents(ctx, alice, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, newTitle, events[0].Title)
	assert.True(t, newEnd.Equal(events[0].EndTime))
}

func TestEventsScopedByFamily(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.userInFamily(t, "alice")
	mallory := e.userInFamily(t, "mallory")
	outsider := testutil.CreateUser(t, e.db, "outsider")

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	event := e.create(t, alice, "Private", start, start.Add(time.Hour))

	title := "hacked"
	_, err := e.svc.UpdateEvent(ctx, mallory, event.ID, &UpdateEventRequest{Title: &title})
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, e.svc.DeleteEvent(ctx, mallory, event.ID), ErrEventNotFound)

	_, err = e.svc.UpdateEvent(ctx, outsider, event.ID, &UpdateEventRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNoFamily)
	assert.ErrorIs(t, e.svc.DeleteEvent(ctx, outsider, event.ID), ErrNoFamily)

	_, malloryEvents, err := e.svc.ListEvents(ctx, mallory, nil)
	require.NoError(t, err)
	assert.Empty(t, malloryEvents)

	require.NoError(t, e.svc.DeleteEvent(ctx, alice, event.ID))
	assert.ErrorIs(t, e.svc.DeleteEvent(ctx, alice, event.ID), ErrEventNotFound)
}
