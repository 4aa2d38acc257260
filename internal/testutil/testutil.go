// Package testutil sets up throwaway databases and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/trinitydb/impossible-trinity/internal/config"
	"github.com/trinitydb/impossible-trinity/internal/db"
	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/repository/dao"
)

// Password is the clear-text password of every user made by CreateUser.
const Password = "password123"

var seq atomic.Int64

// SetupTestDB opens a migrated sqlite database in a temporary directory.
// A single connection serialises concurrent writers the way one sqlite file
// would anyway.
func SetupTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, dao.InitTables(database))

	return database
}

// GetTestConfig mirrors the shipped defaults with a fixed signing key.
func GetTestConfig() *config.AppConfig {
	return &config.AppConfig{
		API: &config.APIConfig{
			Environment:        "test",
			Port:               "0",
			BaseURL:            "localhost",
			AllowedCORSDomains: []string{"http://localhost"},
			SessionSigningKey:  "test-signing-key",
			SessionTTL:         time.Hour,
			LogLevel:           "error",
			AuthRateLimit:      100,
			AuthRateBurst:      100,
			ShutdownTimeout:    time.Second,
		},
		Gin: &config.GinConfig{Mode: "test"},
		Database: &config.DatabaseConfig{
			Driver: "sqlite",
		},
		Pagination: &config.PaginationConfig{
			CardPerPage:   12,
			TablePerPage:  20,
			APIPerPage:    12,
			APIMaxPerPage: 100,
		},
	}
}

// CreateUser inserts a user whose password is Password. bcrypt.MinCost keeps
// the suite fast.
func CreateUser(t testing.TB, database *gorm.DB, username string, isAdmin bool) domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := dao.NewUserDAO(database).Insert(context.Background(), dao.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	})
	require.NoError(t, err)

	return domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Password:  user.PasswordHash,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	}
}

// CreateTrinity inserts a valid entry owned by creatorID. mutate may adjust
// the row before it is stored.
func CreateTrinity(t testing.TB, database *gorm.DB, creatorID uint, mutate func(*dao.Trinity)) dao.Trinity {
	t.Helper()

	n := seq.Add(1)
	trinity := dao.Trinity{
		Name:        fmt.Sprintf("Trinity %d", n),
		NameEn:      domain.DefaultNameEn,
		Field:       "经济学",
		Element1:    fmt.Sprintf("alpha-%d", n),
		Element2:    fmt.Sprintf("beta-%d", n),
		Element3:    fmt.Sprintf("gamma-%d", n),
		Description: "description",
		CreatorID:   creatorID,
	}
	if mutate != nil {
		mutate(&trinity)
	}

	created, err := dao.NewTrinityDAO(database).Insert(context.Background(), trinity)
	require.NoError(t, err)

	return created
}

func CreateComment(t testing.TB, database *gorm.DB, trinityID, userID uint, content string) dao.Comment {
	t.Helper()

	comment, err := dao.NewCommentDAO(database).Insert(context.Background(), dao.Comment{
		Content:   content,
		TrinityID: trinityID,
		UserID:    userID,
	})
	require.NoError(t, err)

	return comment
}

// CountComments returns how many comments still reference trinityID.
func CountComments(t testing.TB, database *gorm.DB, trinityID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, database.Model(&dao.Comment{}).Where("trinity_id = ?", trinityID).Count(&count).Error)

	return count
}
