package service_test

import (
	"testing"

	"gorm.io/gorm"

	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/repository"
	"github.com/trinitydb/impossible-trinity/internal/repository/dao"
	"github.com/trinitydb/impossible-trinity/internal/service"
	"github.com/trinitydb/impossible-trinity/internal/testutil"
)

type fixture struct {
	db       *gorm.DB
	auth     *service.AuthService
	trinity  *service.TrinityService
	comments *service.CommentService
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	trinityRepo := repository.NewTrinityRepository(dao.NewTrinityDAO(db))

	return fixture{
		db:       db,
		auth:     service.NewAuthService(repository.NewUserRepository(dao.NewUserDAO(db))),
		trinity:  service.NewTrinityService(trinityRepo),
		comments: service.NewCommentService(repository.NewCommentRepository(dao.NewCommentDAO(db)), trinityRepo),
	}
}

func (f fixture) actor(t *testing.T, username string, isAdmin bool) domain.Actor {
	t.Helper()

	return domain.NewActor(testutil.CreateUser(t, f.db, username, isAdmin))
}

func validTrinity(name string) domain.Trinity {
	return domain.Trinity{
		Name:        name,
		NameEn:      domain.DefaultNameEn,
		Field:       "分布式系统",
		Element1:    "一致性",
		Element2:    "可用性",
		Element3:    "分区容错性",
		Description: "pick two",
	}
}
