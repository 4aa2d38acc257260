package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/trinitydb/impossible-trinity/internal/domain"
	"github.com/trinitydb/impossible-trinity/internal/repository"
)

var (
	ErrDuplicateUsername  = repository.ErrUsernameExists
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
}

type AuthService struct {
	repo AuthUserRepository
}

func NewAuthService(repo AuthUserRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (domain.User, error) {
	return s.createUser(ctx, username, password, false)
}

// CreateAdmin provisions an administrator account from the command line.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (domain.User, error) {
	return s.createUser(ctx, username, password, true)
}

// Login fails with ErrInvalidCredentials for an unknown username as well as
// for a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByUsername -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, username, password string, isAdmin bool) (domain.User, error) {
	if err := s.checkUsernameExists(ctx, username); err != nil {
		return domain.User{}, err
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	created, err := s.repo.Create(ctx, domain.User{
		Username: username,
		Password: hashedPassword,
		IsAdmin:  isAdmin,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	return string(hash), nil
}

// checkUsernameExists gives an early answer; the unique index still catches
// two registrations racing for the same name.
func (s *AuthService) checkUsernameExists(ctx context.Context, username string) error {
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return ErrDuplicateUsername
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("s.repo.FindByUsername -> %w", err)
	}

	return nil
}
