package users

import (
	"context"

	"github.com/dmitrijs2005/pointfeed/internal/server/models"
)

// Repository is the user half of the data-access contract. Exists backs the
// guard's principal check; lookups return common.ErrorNotFound when absent.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	TouchLastLogin(ctx context.Context, id string) error
}
