package repository

import (
	"context"
	"time"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/domain"
)

// AccountRepository provides account-specific access on top of the generic
// repository.
type AccountRepository struct {
	*Repository[domain.Account]
}

// NewAccountRepository creates a repository bound to the accounts collection.
func NewAccountRepository(provider database.Provider) *AccountRepository {
	return &AccountRepository{Repository: New[domain.Account](provider, domain.CollectionAccounts)}
}

// FindByEmail returns the account with the given email, or nil if none.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.FindOneByField(ctx, "email", email)
}

// FindByPersona returns all accounts with the given persona.
func (r *AccountRepository) FindByPersona(ctx context.Context, persona string) ([]*domain.Account, error) {
	return r.FindByField(ctx, "persona", persona)
}

// UpdateLastActive stamps the account's last_active field with the current
// time and returns the updated account.
func (r *AccountRepository) UpdateLastActive(ctx context.Context, id string) (*domain.Account, error) {
	return r.Update(ctx, id, database.Document{
		"last_active": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
