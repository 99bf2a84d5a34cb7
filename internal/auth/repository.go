package auth

import (
	"context"
	"errors"

	"staybook/internal/users"

	"gorm.io/gorm"
)

// Repository persists credentials. Lookups by email are case-insensitive so
// rows written before normalization still resolve.
type Repository interface {
	CreateUser(ctx context.Context, user *users.User) error
	GetUserByEmail(ctx context.Context, email string) (*users.User, error)
	GetUserByID(ctx context.Context, id string) (*users.User, error)
	UpdateUserPassword(ctx context.Context, userID string, hashedPassword string) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

const emailMatch = "LOWER(email) = LOWER(?)"

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(ctx context.Context, user *users.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserAlreadyExists
	}
	return err
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.findOne(ctx, emailMatch, email)
}

func (r *repository) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *repository) findOne(ctx context.Context, cond string, arg any) (*users.User, error) {
	user := new(users.User)
	err := r.db.WithContext(ctx).Where(cond, arg).First(user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, err
	}
	return user, nil
}

func (r *repository) UpdateUserPassword(ctx context.Context, userID string, hashedPassword string) error {
	res := r.db.WithContext(ctx).Model(&users.User{}).
		Where("id = ?", userID).
		Update("password", hashedPassword)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&users.User{}).Where(emailMatch, email).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
