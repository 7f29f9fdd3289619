package database

import (
	"context"
	"testing"
	"time"

	"github.com/krishkalaria12/snap-vault/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateWithProfile(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := NewUserRepository(db)
	profiles := NewProfileRepository(db)

	user := &models.User{Email: "ana@example.com", PasswordHash: "hash"}
	require.NoError(t, users.CreateWithProfile(ctx, user))
	require.NotEmpty(t, user.ID)

	profile, err := profiles.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, profile.Username)

	byEmail, err := users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	err = users.CreateWithProfile(ctx, &models.User{Email: "ana@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(setupTestDB(t))

	user := &models.User{Email: "bo@example.com", PasswordHash: "old"}
	require.NoError(t, users.CreateWithProfile(ctx, user))

	require.NoError(t, users.UpdatePassword(ctx, user.ID, "new"))
	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	assert.ErrorIs(t, users.UpdatePassword(ctx, "missing", "x"), ErrNotFound)
}

func TestProfileRepository_Save(t *testing.T) {
	ctx := context.Background()
	profiles := NewProfileRepository(setupTestDB(t))

	name, full := "ana", "Ana Lima"
	at := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)

	profile, err := profiles.Save(ctx, "0b7c4a62-1f7e-4b8f-9d0e-3b1c2d4e5f60", &name, &full, at)
	require.NoError(t, err)
	assert.Equal(t, "ana", *profile.Username)
	require.NotNil(t, profile.UpdatedAt)
	assert.True(t, at.Equal(*profile.UpdatedAt))

	renamed := "ana2"
	profile, err = profiles.Save(ctx, profile.ID, &renamed, nil, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "ana2", *profile.Username)
	assert.Nil(t, profile.FullName)

	_, err = profiles.Save(ctx, "another-id", &renamed, nil, at)
	assert.ErrorIs(t, err, ErrConflict)
}
