package store

import (
	"context"
	"errors"
	"time"

	"github.com/RainersCode/honey-sub001/internal/database"
	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/gocql/gocql"
)

var ErrUserNotFound = errors.New("user not found")

// ScyllaUsers keeps accounts in the customers keyspace with a
// users_by_email lookup table for login.
type ScyllaUsers struct{}

func NewUsers() *ScyllaUsers {
	return &ScyllaUsers{}
}

func (s *ScyllaUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var userID gocql.UUID
	err := database.GetPreparedGetUserByEmail().Bind(email).WithContext(ctx).Scan(&userID)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, userID)
}

func (s *ScyllaUsers) GetByID(ctx context.Context, id gocql.UUID) (*models.User, error) {
	u := models.User{ID: id}
	err := database.GetPreparedGetUserByID().Bind(id).WithContext(ctx).Scan(
		&u.Email, &u.Password, &u.Name, &u.Role, &u.Provider, &u.ProviderID, &u.CreatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *ScyllaUsers) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if err := database.GetPreparedInsertUser().Bind(
		u.ID, u.Email, u.Password, u.Name, u.Role, u.Provider, u.ProviderID, now, now,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}
	return database.GetPreparedInsertUserByEmail().Bind(u.Email, u.ID).WithContext(ctx).Exec()
}
