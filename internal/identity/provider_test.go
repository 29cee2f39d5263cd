package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/dbtest"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestCreateAndLookup(t *testing.T) {
	store := NewStore(dbtest.Open(t))
	ctx := context.Background()

	id, err := store.Create(ctx, uuid.Nil, " Owner@Example.com ", "$argon2id$hash")
	require.NoError(t, err)

	record, err := store.Lookup(ctx, "owner@example.com")
	require.NoError(t, err)
	require.Equal(t, id, record.ID)
	require.Equal(t, "$argon2id$hash", record.PasswordHash)
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	store := NewStore(dbtest.Open(t))
	ctx := context.Background()

	_, err := store.Create(ctx, uuid.Nil, "owner@example.com", "h1")
	require.NoError(t, err)

	_, err = store.Create(ctx, uuid.Nil, "OWNER@example.com", "h2")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestDeleteRemovesIdentity(t *testing.T) {
	store := NewStore(dbtest.Open(t))
	ctx := context.Background()

	id, err := store.Create(ctx, uuid.Nil, "owner@example.com", "h1")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, id))

	_, err = store.Lookup(ctx, "owner@example.com")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, store.Delete(ctx, id))
}

func TestCreateSameIDIsReused(t *testing.T) {
	store := NewStore(dbtest.Open(t))
	ctx := context.Background()
	want := uuid.New()

	first, err := store.Create(ctx, want, "owner@example.com", "h1")
	require.NoError(t, err)
	require.Equal(t, want, first)

	again, err := store.Create(ctx, want, "Owner@example.com", "h1")
	require.NoError(t, err)
	require.Equal(t, want, again)

	_, err = store.Create(ctx, uuid.New(), "owner@example.com", "h1")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}
