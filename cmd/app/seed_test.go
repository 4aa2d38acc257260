package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinitydb/impossible-trinity/internal/repository/dao"
	"github.com/trinitydb/impossible-trinity/internal/testutil"
)

func TestSeed_Idempotent(t *testing.T) {
	database := testutil.SetupTestDB(t)
	ctx := context.Background()

	report, err := seed(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, seedReport{AdminCreated: true, SampleCreated: true}, report)

	report, err = seed(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, seedReport{}, report)

	admin, err := dao.NewUserDAO(database).FindByUsername(ctx, seedAdminUsername)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	all, err := dao.NewTrinityDAO(database).FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, mundellFleming.Name, all[0].Name)
	assert.Equal(t, admin.ID, all[0].CreatorID)
}

func TestSeed_KeepsExistingAdmin(t *testing.T) {
	database := testutil.SetupTestDB(t)
	existing := testutil.CreateUser(t, database, seedAdminUsername, true)

	report, err := seed(context.Background(), database)
	require.NoError(t, err)
	assert.False(t, report.AdminCreated)
	assert.True(t, report.SampleCreated)

	all, err := dao.NewTrinityDAO(database).FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, existing.ID, all[0].CreatorID)
}
