package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shopcore/pkg/database"
	"shopcore/pkg/model"
)

type User interface {
	Register(ctx context.Context, name, email, password string, role model.Role) (model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

type UserGeneric struct {
	UserRepository database.UserRepository
}

func (ug *UserGeneric) Register(ctx context.Context, name, email, password string, role model.Role) (model.User, error) {
	if name == "" || !strings.Contains(email, "@") {
		return model.User{}, &model.ValidationError{Reason: "name and a valid email are required"}
	}
	if len(password) < 8 {
		return model.User{}, &model.ValidationError{Reason: "password must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("can't hash password: %w", err)
	}

	user := model.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}

	if err := ug.UserRepository.Add(ctx, user); err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (ug *UserGeneric) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return ug.UserRepository.GetByID(ctx, id)
}
