package repository

import (
	"context"
	"fmt"

	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/repository/dao"
)

var ErrCommentNotFound = dao.ErrCommentNotFound

type CommentDAO interface {
	Insert(ctx context.Context, comment dao.Comment) (dao.Comment, error)
	FindByID(ctx context.Context, id uint) (dao.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type CommentRepository struct {
	dao CommentDAO
}

func NewCommentRepository(dao CommentDAO) *CommentRepository {
	return &CommentRepository{
		dao: dao,
	}
}

func (r *CommentRepository) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	created, err := r.dao.Insert(ctx, dao.Comment{
		Content:   comment.Content,
		TrinityID: comment.TrinityID,
		UserID:    comment.UserID,
	})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return commentDaoToDomain(created), nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id uint) (domain.Comment, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return commentDaoToDomain(found), nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func commentDaoToDomain(c dao.Comment) domain.Comment {
	return domain.Comment{
		ID:        c.ID,
		Content:   c.Content,
		TrinityID: c.TrinityID,
		UserID:    c.UserID,
		Author:    userDaoToDomainPtr(c.User),
		CreatedAt: c.CreatedAt,
	}
}
