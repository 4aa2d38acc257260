package repository

import (
	"context"
	"fmt"

	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/repository/dao"
)

var ErrTrinityNotFound = dao.ErrTrinityNotFound

type TrinityDAO interface {
	Insert(ctx context.Context, trinity dao.Trinity) (dao.Trinity, error)
	InsertBatch(ctx context.Context, trinities []dao.Trinity) error
	FindByID(ctx context.Context, id uint) (dao.Trinity, error)
	List(ctx context.Context, q dao.TrinityQuery) ([]dao.Trinity, error)
	FindByCreatorID(ctx context.Context, creatorID uint) ([]dao.Trinity, error)
	FindAll(ctx context.Context) ([]dao.Trinity, error)
	FindAllInInsertOrder(ctx context.Context) ([]dao.Trinity, error)
	Update(ctx context.Context, trinity dao.Trinity) (dao.Trinity, error)
	Delete(ctx context.Context, id uint) error
	IncrementAgree(ctx context.Context, id uint) (int, error)
	DistinctFields(ctx context.Context) ([]string, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type TrinityRepository struct {
	dao TrinityDAO
}

func NewTrinityRepository(dao TrinityDAO) *TrinityRepository {
	return &TrinityRepository{
		dao: dao,
	}
}

func (r *TrinityRepository) Create(ctx context.Context, trinity domain.Trinity) (domain.Trinity, error) {
	created, err := r.dao.Insert(ctx, trinityDomainToDao(trinity))
	if err != nil {
		return domain.Trinity{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return trinityDaoToDomain(created), nil
}

func (r *TrinityRepository) CreateMany(ctx context.Context, trinities []domain.Trinity) error {
	rows := make([]dao.Trinity, len(trinities))
	for i, t := range trinities {
		rows[i] = trinityDomainToDao(t)
	}

	if err := r.dao.InsertBatch(ctx, rows); err != nil {
		return fmt.Errorf("r.dao.InsertBatch -> %w", err)
	}

	return nil
}

func (r *TrinityRepository) FindByID(ctx context.Context, id uint) (domain.Trinity, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Trinity{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return trinityDaoToDomain(found), nil
}

// List fetches one page. It asks the dao for one extra row to learn whether
// a next page exists.
func (r *TrinityRepository) List(ctx context.Context, filter domain.TrinityFilter, page, perPage int) (domain.TrinityPage, error) {
	found, err := r.dao.List(ctx, dao.TrinityQuery{
		Field:  filter.Field,
		Search: filter.Search,
		Offset: (page - 1) * perPage,
		Limit:  perPage + 1,
	})
	if err != nil {
		return domain.TrinityPage{}, fmt.Errorf("r.dao.List -> %w", err)
	}

	hasNext := len(found) > perPage
	if hasNext {
		found = found[:perPage]
	}

	return domain.TrinityPage{
		Items:   trinitiesDaoToDomain(found),
		Page:    page,
		PerPage: perPage,
		HasNext: hasNext,
	}, nil
}

func (r *TrinityRepository) FindByCreatorID(ctx context.Context, creatorID uint) ([]domain.Trinity, error) {
	found, err := r.dao.FindByCreatorID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByCreatorID -> %w", err)
	}

	return trinitiesDaoToDomain(found), nil
}

func (r *TrinityRepository) FindAll(ctx context.Context) ([]domain.Trinity, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return trinitiesDaoToDomain(found), nil
}

func (r *TrinityRepository) FindAllForExport(ctx context.Context) ([]domain.Trinity, error) {
	found, err := r.dao.FindAllInInsertOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAllInInsertOrder -> %w", err)
	}

	return trinitiesDaoToDomain(found), nil
}

func (r *TrinityRepository) Update(ctx context.Context, trinity domain.Trinity) (domain.Trinity, error) {
	updated, err := r.dao.Update(ctx, trinityDomainToDao(trinity))
	if err != nil {
		return domain.Trinity{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return trinityDaoToDomain(updated), nil
}

func (r *TrinityRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *TrinityRepository) IncrementAgree(ctx context.Context, id uint) (int, error) {
	count, err := r.dao.IncrementAgree(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("r.dao.IncrementAgree -> %w", err)
	}

	return count, nil
}

func (r *TrinityRepository) Fields(ctx context.Context) ([]string, error) {
	fields, err := r.dao.DistinctFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.DistinctFields -> %w", err)
	}

	return fields, nil
}

func (r *TrinityRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	exists, err := r.dao.ExistsByName(ctx, name)
	if err != nil {
		return false, fmt.Errorf("r.dao.ExistsByName -> %w", err)
	}

	return exists, nil
}

func trinityDomainToDao(t domain.Trinity) dao.Trinity {
	return dao.Trinity{
		ID:                t.ID,
		Name:              t.Name,
		NameEn:            t.NameEn,
		Field:             t.Field,
		Element1:          t.Element1,
		Element2:          t.Element2,
		Element3:          t.Element3,
		Description:       t.Description,
		Element1Sacrifice: t.Element1Sacrifice,
		Element2Sacrifice: t.Element2Sacrifice,
		Element3Sacrifice: t.Element3Sacrifice,
		Hyperlink:         t.Hyperlink,
		FeatureImageURL:   t.FeatureImageURL,
		Element1ImageURL:  t.Element1ImageURL,
		Element2ImageURL:  t.Element2ImageURL,
		Element3ImageURL:  t.Element3ImageURL,
		AgreeCount:        t.AgreeCount,
		CreatorID:         t.CreatorID,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func trinityDaoToDomain(t dao.Trinity) domain.Trinity {
	trinity := domain.Trinity{
		ID:                t.ID,
		Name:              t.Name,
		NameEn:            t.NameEn,
		Field:             t.Field,
		Element1:          t.Element1,
		Element2:          t.Element2,
		Element3:          t.Element3,
		Description:       t.Description,
		Element1Sacrifice: t.Element1Sacrifice,
		Element2Sacrifice: t.Element2Sacrifice,
		Element3Sacrifice: t.Element3Sacrifice,
		Hyperlink:         t.Hyperlink,
		FeatureImageURL:   t.FeatureImageURL,
		Element1ImageURL:  t.Element1ImageURL,
		Element2ImageURL:  t.Element2ImageURL,
		Element3ImageURL:  t.Element3ImageURL,
		AgreeCount:        t.AgreeCount,
		CreatorID:         t.CreatorID,
		Creator:           userDaoToDomainPtr(t.Creator),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}

	if len(t.Comments) > 0 {
		trinity.Comments = make([]domain.Comment, len(t.Comments))
		for i, c := range t.Comments {
			trinity.Comments[i] = commentDaoToDomain(c)
		}
	}

	return trinity
}

func trinitiesDaoToDomain(trinities []dao.Trinity) []domain.Trinity {
	result := make([]domain.Trinity, len(trinities))
	for i, t := range trinities {
		result[i] = trinityDaoToDomain(t)
	}

	return result
}
