package gorm

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/flagkeep/flagkeep/pkg/model"
	"github.com/flagkeep/flagkeep/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// GetUser returns a user by id
func (s *UsersStore) GetUser(ctx context.Context, id int) (*model.User, error) {
	return s.first(ctx, "id = ?", id)
}

// GetUserByUsername returns a user by username
func (s *UsersStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *UsersStore) first(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var user model.User
	tx := s.db.WithContext(ctx).Where(query, args...).First(&user)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, tx.Error
	}
	return &user, nil
}

// FindUsers returns the users with the given ids
func (s *UsersStore) FindUsers(ctx context.Context, ids []int) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser inserts a user and sets its ID
func (s *UsersStore) CreateUser(ctx context.Context, user *model.User) error {
	type insertedRow struct {
		ID        int
		CreatedAt time.Time
	}
	var row insertedRow
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO users (username, email, name, password_hash, root_role_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_at
	`, user.Username, user.Email, user.Name, user.PasswordHash, user.RootRoleID).Scan(&row).Error
	if err != nil {
		return err
	}
	user.ID = row.ID
	user.CreatedAt = row.CreatedAt
	return nil
}

// SetPassword replaces the password hash of a user
func (s *UsersStore) SetPassword(ctx context.Context, id int, passwordHash string) error {
	tx := s.db.WithContext(ctx).Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// MarkSeen records a login
func (s *UsersStore) MarkSeen(ctx context.Context, id int) error {
	return s.db.WithContext(ctx).Exec(`UPDATE users SET seen_at = now() WHERE id = ?`, id).Error
}
