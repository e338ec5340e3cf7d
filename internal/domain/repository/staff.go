package repository

import (
	"context"

	"github.com/polkiloo/foodorder/internal/domain/model"
)

// StaffRepository describes persistence operations for operator accounts.
type StaffRepository interface {
	Create(ctx context.Context, login, passwordHash string) (*model.Staff, error)
	GetByLogin(ctx context.Context, login string) (*model.Staff, error)
}
