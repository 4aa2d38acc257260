package dao_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinitydb/impossible-trinity/internal/repository/dao"
	"github.com/trinitydb/impossible-trinity/internal/testutil"
)

func TestUserDAO_Insert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	d := dao.NewUserDAO(db)

	created, err := d.Insert(ctx, dao.User{Username: "alice", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = d.Insert(ctx, dao.User{Username: "alice", PasswordHash: "other"})
	assert.ErrorIs(t, err, dao.ErrUsernameExists)

	found, err := d.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = d.FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, dao.ErrUserNotFound)

	_, err = d.FindByID(ctx, created.ID+1)
	assert.ErrorIs(t, err, dao.ErrUserNotFound)
}

func TestCommentDAO(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "alice", false)
	trinity := testutil.CreateTrinity(t, db, user.ID, nil)
	comment := testutil.CreateComment(t, db, trinity.ID, user.ID, "hello")

	d := dao.NewCommentDAO(db)

	found, err := d.FindByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", found.Content)
	assert.Equal(t, "alice", found.User.Username)

	require.NoError(t, d.Delete(ctx, comment.ID))
	assert.ErrorIs(t, d.Delete(ctx, comment.ID), dao.ErrCommentNotFound)

	_, err = d.FindByID(ctx, comment.ID)
	assert.ErrorIs(t, err, dao.ErrCommentNotFound)
}
