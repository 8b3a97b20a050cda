package family

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ltcare/familyhub/internal/database"
	"github.com/ltcare/familyhub/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *database.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewService(db, NewRepository(db), zap.NewNop()), db
}

func TestEnsureFamilyForInviter(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	_, ok, err := svc.ResolveFamilyID(ctx, alice)
	require.NoError(t, err)
	assert.False(t, ok)

	var familyID int64
	var created bool
	err = db.InTx(ctx, func(tx *database.Tx) error {
		var err error
		familyID, created, err = svc.WithTx(tx).EnsureFamilyForInviter(ctx, alice)
		return err
	})
	require.NoError(t, err)
	assert.True(t, created)

	family, members, err := svc.Current(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, family)
	assert.Equal(t, familyID, family.ID)
	assert.Equal(t, DefaultName, family.Name)
	assert.True(t, family.IsOwner(alice))
	require.Len(t, members, 1)
	assert.Equal(t, alice, members[0].UserID)

	again, created, err := svc.EnsureFamilyForInviter(ctx, alice)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, familyID, again)
}

func TestMembersOrderedByUserID(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	familyID, _, err := svc.EnsureFamilyForInviter(ctx, carol)
	require.NoError(t, err)
	for _, id := range []int64{bob, alice} {
		added, err := svc.AddMember(ctx, familyID, id)
		require.NoError(t, err)
		assert.True(t, added)
	}

	added, err := svc.AddMember(ctx, familyID, bob)
	require.NoError(t, err)
	assert.False(t, added, "duplicate membership is ignored")

	gotFamily, members, err := svc.MembersOf(ctx, bob)
	require.NoError(t, err)
	require.NotNil(t, gotFamily)
	assert.Equal(t, familyID, *gotFamily)

	var ids []int64
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	assert.Equal(t, []int64{alice, bob, carol}, ids)
}

func TestMembersOfWithoutFamily(t *testing.T) {
	svc, db := newTestService(t)
	alice := testutil.CreateUser(t, db, "alice")

	familyID, members, err := svc.MembersOf(context.Background(), alice)
	require.NoError(t, err)
	assert.Nil(t, familyID)
	assert.NotNil(t, members)
	assert.Empty(t, members)

	family, _, err := svc.Current(context.Background(), alice)
	require.NoError(t, err)
	assert.Nil(t, family)
}

func TestRename(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	familyID, _, err := svc.EnsureFamilyForInviter(ctx, alice)
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, familyID, bob)
	require.NoError(t, err)

	family, err := svc.Rename(ctx, alice, "  The <b>Smiths</b> ")
	require.NoError(t, err)
	assert.Equal(t, "The Smiths", family.Name)

	_, err = svc.Rename(ctx, bob, "Bob's")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.Rename(ctx, carol, "Carol's")
	assert.ErrorIs(t, err, ErrNoFamily)

	_, err = svc.Rename(ctx, alice, "<br>")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestLeave(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	err := svc.Leave(ctx, bob)
	assert.ErrorIs(t, err, ErrNotInFamily)

	familyID, _, err := svc.EnsureFamilyForInviter(ctx, alice)
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, familyID, bob)
	require.NoError(t, err)

	err = svc.Leave(ctx, alice)
	assert.ErrorIs(t, err, ErrOwnerMustStay)

	require.NoError(t, svc.Leave(ctx, bob))
	_, ok, err := svc.ResolveFamilyID(ctx, bob)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Leave(ctx, alice))
	_, ok, err = svc.ResolveFamilyID(ctx, alice)
	require.NoError(t, err)
	assert.False(t, ok)

	// the last member leaving dissolves the family
	alive, err := svc.LockFamily(ctx, familyID)
	require.NoError(t, err)
	assert.False(t, alive)

	family, err := NewRepository(db).GetByID(ctx, familyID)
	require.NoError(t, err)
	assert.Nil(t, family)
}

func TestRemoveMember(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	familyID, _, err := svc.EnsureFamilyForInviter(ctx, alice)
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, familyID, bob)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveMember(ctx, alice, alice), ErrCannotRemoveSelf)
	assert.ErrorIs(t, svc.RemoveMember(ctx, bob, alice), ErrNotOwner)
	assert.ErrorIs(t, svc.RemoveMember(ctx, alice, carol), ErrMemberNotFound)

	require.NoError(t, svc.RemoveMember(ctx, alice, bob))
	isMember, err := svc.IsMember(ctx, familyID, bob)
	require.NoError(t, err)
	assert.False(t, isMember)
}
