package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"shopcore/pkg/model"
)

type UserRepository interface {
	Add(ctx context.Context, user model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

type UserDatabase struct {
	DB *sql.DB
}

func (ud *UserDatabase) Add(ctx context.Context, user model.User) error {
	return WithTx(ctx, ud.DB, func(tx *sql.Tx) error {
		const userExists = `
			select exists (
				select 1
				from users
				where email = $1
			) as exists
		`

		var exists bool
		if err := tx.QueryRowContext(ctx, userExists, user.Email).Scan(&exists); err != nil {
			return fmt.Errorf("can't check if user exists: %w", err)
		}

		if exists {
			return model.ErrEmailTaken
		}

		const insertUser = `
			insert into users (id, name, email, password, role)
			values ($1, $2, $3, $4, $5)
		`

		if _, err := tx.ExecContext(ctx, insertUser, user.ID, user.Name, user.Email, user.Password, user.Role); err != nil {
			return fmt.Errorf("can't insert user: %w", err)
		}

		return nil
	})
}

func (ud *UserDatabase) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return ud.get(ctx, `where email = $1`, email)
}

func (ud *UserDatabase) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return ud.get(ctx, `where id = $1`, id)
}

func (ud *UserDatabase) get(ctx context.Context, where string, arg any) (model.User, error) {
	q := `
		select id, name, email, password, role
		from users
	` + where

	var u model.User
	err := ud.DB.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("can't query user: %w", err)
	}

	return u, nil
}
