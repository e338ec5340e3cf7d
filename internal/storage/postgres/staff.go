package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/domain/model"
)

type staffRepository struct {
	storage *Storage
}

func (r *staffRepository) Create(ctx context.Context, login, passwordHash string) (*model.Staff, error) {
	const query = `INSERT INTO staff (login, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	var staff model.Staff
	staff.Login = login
	staff.PasswordHash = passwordHash
	if err := r.storage.pool.QueryRow(ctx, query, login, passwordHash).Scan(&staff.ID, &staff.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) GetByLogin(ctx context.Context, login string) (*model.Staff, error) {
	const query = `SELECT id, login, password_hash, created_at FROM staff WHERE login=$1`
	var staff model.Staff
	if err := r.storage.pool.QueryRow(ctx, query, login).Scan(&staff.ID, &staff.Login, &staff.PasswordHash, &staff.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &staff, nil
}
