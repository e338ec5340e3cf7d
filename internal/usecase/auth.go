package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/domain/model"
	"github.com/polkiloo/foodorder/internal/domain/repository"
	pkgAuth "github.com/polkiloo/foodorder/internal/pkg/auth"
)

// StaffAuthUseCase handles staff accounts and token management.
type StaffAuthUseCase struct {
	staff  repository.StaffRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
	logger *slog.Logger
}

// NewStaffAuthUseCase constructs StaffAuthUseCase.
func NewStaffAuthUseCase(staff repository.StaffRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, logger *slog.Logger) *StaffAuthUseCase {
	return &StaffAuthUseCase{staff: staff, hasher: hasher, tokens: strategy, logger: logger}
}

// Login validates credentials and returns a staff token.
func (u *StaffAuthUseCase) Login(ctx context.Context, login, password string) (*model.Staff, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	staff, err := u.staff.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(staff.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(pkgAuth.Claims{StaffID: staff.ID, Login: staff.Login})
	if err != nil {
		return nil, "", err
	}

	return staff, token, nil
}

// EnsureStaff creates the account unless the login already exists. The
// password of an existing account is left unchanged.
func (u *StaffAuthUseCase) EnsureStaff(ctx context.Context, login, password string) error {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return domainErrors.ErrInvalidCredentials
	}

	_, err := u.staff.GetByLogin(ctx, login)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return err
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return err
	}
	if _, err := u.staff.Create(ctx, login, hash); err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil
		}
		return err
	}
	u.logger.Info("staff account created", slog.String("login", login))
	return nil
}

// ParseToken extracts staff claims from provided token.
func (u *StaffAuthUseCase) ParseToken(token string) (pkgAuth.Claims, error) {
	if token == "" {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}
