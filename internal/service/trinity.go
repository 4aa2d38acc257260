package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/request"
	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/pkg/trinitycsv"
	"github.com/trinitydb/impossible-trinity/internal/repository"
)

var (
	ErrTrinityNotFound  = repository.ErrTrinityNotFound
	ErrPermissionDenied = errors.New("permission denied")
	ErrMalformedCSV     = trinitycsv.ErrMalformed
)

// ImportRowError describes a CSV row that was skipped during an import.
type ImportRowError struct {
	Line int
	Err  error
}

func (e *ImportRowError) Error() string {
	return fmt.Sprintf("csv line %d: %v", e.Line, e.Err)
}

func (e *ImportRowError) Unwrap() error {
	return e.Err
}

type TrinityRepository interface {
	Create(ctx context.Context, trinity domain.Trinity) (domain.Trinity, error)
	CreateMany(ctx context.Context, trinities []domain.Trinity) error
	FindByID(ctx context.Context, id uint) (domain.Trinity, error)
	List(ctx context.Context, filter domain.TrinityFilter, page, perPage int) (domain.TrinityPage, error)
	FindByCreatorID(ctx context.Context, creatorID uint) ([]domain.Trinity, error)
	FindAll(ctx context.Context) ([]domain.Trinity, error)
	FindAllForExport(ctx context.Context) ([]domain.Trinity, error)
	Update(ctx context.Context, trinity domain.Trinity) (domain.Trinity, error)
	Delete(ctx context.Context, id uint) error
	IncrementAgree(ctx context.Context, id uint) (int, error)
	Fields(ctx context.Context) ([]string, error)
}

type TrinityService struct {
	repo TrinityRepository
}

func NewTrinityService(repo TrinityRepository) *TrinityService {
	return &TrinityService{
		repo: repo,
	}
}

// List returns one page, newest first. Pages start at 1.
func (s *TrinityService) List(ctx context.Context, filter domain.TrinityFilter, page, perPage int) (domain.TrinityPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}

	result, err := s.repo.List(ctx, filter, page, perPage)
	if err != nil {
		return domain.TrinityPage{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	return result, nil
}

func (s *TrinityService) Get(ctx context.Context, id uint) (domain.Trinity, error) {
	trinity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Trinity{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return trinity, nil
}

func (s *TrinityService) Create(ctx context.Context, trinity domain.Trinity, actor domain.Actor) (domain.Trinity, error) {
	if !actor.Authenticated() {
		return domain.Trinity{}, ErrPermissionDenied
	}

	trinity.ID = 0
	trinity.AgreeCount = 0
	trinity.CreatorID = actor.UserID

	created, err := s.repo.Create(ctx, trinity)
	if err != nil {
		return domain.Trinity{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// Update replaces the editable fields of entry id. The creator and the agree
// count are kept.
func (s *TrinityService) Update(ctx context.Context, id uint, trinity domain.Trinity, actor domain.Actor) (domain.Trinity, error) {
	existing, err := s.authorize(ctx, id, actor)
	if err != nil {
		return domain.Trinity{}, err
	}

	trinity.ID = existing.ID
	trinity.CreatorID = existing.CreatorID
	trinity.AgreeCount = existing.AgreeCount
	trinity.CreatedAt = existing.CreatedAt

	updated, err := s.repo.Update(ctx, trinity)
	if err != nil {
		return domain.Trinity{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// Delete removes entry id together with its comments.
func (s *TrinityService) Delete(ctx context.Context, id uint, actor domain.Actor) error {
	if _, err := s.authorize(ctx, id, actor); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// Agree adds one vote and returns the new count.
func (s *TrinityService) Agree(ctx context.Context, id uint, actor domain.Actor) (int, error) {
	if !actor.Authenticated() {
		return 0, ErrPermissionDenied
	}

	count, err := s.repo.IncrementAgree(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("s.repo.IncrementAgree -> %w", err)
	}

	return count, nil
}

// ListByCreator returns the actor's own entries for the dashboard.
func (s *TrinityService) ListByCreator(ctx context.Context, actor domain.Actor) ([]domain.Trinity, error) {
	if !actor.Authenticated() {
		return nil, ErrPermissionDenied
	}

	trinities, err := s.repo.FindByCreatorID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByCreatorID -> %w", err)
	}

	return trinities, nil
}

func (s *TrinityService) ListAll(ctx context.Context, actor domain.Actor) ([]domain.Trinity, error) {
	if !actor.IsAdmin {
		return nil, ErrPermissionDenied
	}

	trinities, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return trinities, nil
}

func (s *TrinityService) Fields(ctx context.Context) ([]string, error) {
	fields, err := s.repo.Fields(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Fields -> %w", err)
	}

	return fields, nil
}

// Export writes every entry as CSV, oldest first.
func (s *TrinityService) Export(ctx context.Context, w io.Writer, actor domain.Actor) error {
	if !actor.IsAdmin {
		return ErrPermissionDenied
	}

	trinities, err := s.repo.FindAllForExport(ctx)
	if err != nil {
		return fmt.Errorf("s.repo.FindAllForExport -> %w", err)
	}

	if err = trinitycsv.Encode(w, trinities); err != nil {
		return fmt.Errorf("trinitycsv.Encode -> %w", err)
	}

	return nil
}

// Import validates every row of r and stores the accepted ones, owned by the
// actor, in a single transaction. Invalid rows are skipped and counted. A
// file that cannot be parsed stores nothing and fails with ErrMalformedCSV.
func (s *TrinityService) Import(ctx context.Context, r io.Reader, actor domain.Actor) (domain.ImportReport, error) {
	if !actor.IsAdmin {
		return domain.ImportReport{}, ErrPermissionDenied
	}

	reader, err := trinitycsv.NewReader(r)
	if err != nil {
		return domain.ImportReport{}, fmt.Errorf("trinitycsv.NewReader -> %w", err)
	}

	var (
		report   domain.ImportReport
		accepted []domain.Trinity
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.ImportReport{}, fmt.Errorf("reader.Read -> %w", err)
		}

		req := request.NewTrinityRequestFromValues(row.Values)
		if err = req.Validate(); err != nil {
			report.Skipped++
			zap.L().Debug("skipping csv row", zap.Error(&ImportRowError{Line: row.Line, Err: err}))
			continue
		}

		trinity := req.ToDomain()
		trinity.CreatorID = actor.UserID
		accepted = append(accepted, trinity)
	}

	if err = s.repo.CreateMany(ctx, accepted); err != nil {
		return domain.ImportReport{}, fmt.Errorf("s.repo.CreateMany -> %w", err)
	}
	report.Imported = len(accepted)

	zap.L().Info("csv import finished",
		zap.Uint("admin_id", actor.UserID),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped),
	)

	return report, nil
}

// authorize loads entry id and checks that the actor may modify it.
func (s *TrinityService) authorize(ctx context.Context, id uint, actor domain.Actor) (domain.Trinity, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Trinity{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !actor.CanModify(existing) {
		return domain.Trinity{}, ErrPermissionDenied
	}

	return existing, nil
}
