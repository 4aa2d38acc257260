package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/repository"
)

var (
	ErrCommentNotFound = repository.ErrCommentNotFound
	ErrEmptyContent    = errors.New("comment content is empty")
)

type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	FindByID(ctx context.Context, id uint) (domain.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type CommentTrinityRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Trinity, error)
}

type CommentService struct {
	repo        CommentRepository
	trinityRepo CommentTrinityRepository
}

func NewCommentService(repo CommentRepository, trinityRepo CommentTrinityRepository) *CommentService {
	return &CommentService{
		repo:        repo,
		trinityRepo: trinityRepo,
	}
}

func (s *CommentService) AddComment(ctx context.Context, trinityID uint, content string, actor domain.Actor) (domain.Comment, error) {
	if !actor.Authenticated() {
		return domain.Comment{}, ErrPermissionDenied
	}

	if _, err := s.trinityRepo.FindByID(ctx, trinityID); err != nil {
		return domain.Comment{}, fmt.Errorf("s.trinityRepo.FindByID -> %w", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, ErrEmptyContent
	}

	created, err := s.repo.Create(ctx, domain.Comment{
		Content:   content,
		TrinityID: trinityID,
		UserID:    actor.UserID,
	})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// DeleteComment is reserved to admins. The comment is returned, also with
// ErrPermissionDenied, so the caller knows which entry it belongs to.
func (s *CommentService) DeleteComment(ctx context.Context, commentID uint, actor domain.Actor) (domain.Comment, error) {
	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !actor.IsAdmin {
		return comment, ErrPermissionDenied
	}

	if err = s.repo.Delete(ctx, commentID); err != nil {
		return domain.Comment{}, fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return comment, nil
}
