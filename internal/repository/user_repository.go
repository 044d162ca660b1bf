package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"registration-service/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (int64, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) (int64, error) {
	query := `INSERT INTO users (first_name, password, email, phone) VALUES ($1, $2, $3, $4) RETURNING id`
	var newID int64
	err := r.db.QueryRowxContext(ctx, query, user.FirstName, user.Password, user.Email, user.Phone).Scan(&newID)

	if err != nil {
		return 0, mapPostgresError("insert user", err)
	}

	return newID, nil
}

// FindByEmail returns ErrNotFound when no user has the given email.
func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `SELECT id, email FROM users WHERE email = $1`
	err := r.db.GetContext(ctx, &user, query, email)

	if err != nil {
		return nil, mapPostgresError("find user by email", err)
	}

	return &user, nil
}
