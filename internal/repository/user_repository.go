package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	s "github.com/iliyamo/invoice-dashboard/internal/schema"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var qUserByEmail = fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 LIMIT 1",
	s.Names(s.Users.ID, s.Users.Name, s.Users.Email, s.Users.Password), s.Users.TableName(), s.Users.Email)

// GetByEmail fetches a user by exact email match. ErrUserNotFound is
// returned when there is no such user.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, qUserByEmail, email).Scan(&u.ID, &u.Name, &u.Email, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}
