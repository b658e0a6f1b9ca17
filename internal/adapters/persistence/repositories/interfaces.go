package repositories

import (
	"context"
	"time"

	"fintech-financing/internal/adapters/persistence/models"
)

// FinanceFilter narrows user-scoped finance listings.
type FinanceFilter struct {
	Status         string
	Brand          string
	IncludeDeleted bool
}

// FinanceRepository defines finance data access
type FinanceRepository interface {
	Create(ctx context.Context, finance *models.Finance) error
	GetByID(ctx context.Context, id string) (*models.Finance, error)
	// GetByIDAndUser resolves ownership with a single {id, user_id} query so
	// a non-owner sees the same not-found as a missing record.
	GetByIDAndUser(ctx context.Context, id, userID string) (*models.Finance, error)
	ListByUser(ctx context.Context, userID string, filter FinanceFilter, offset, limit int) ([]*models.Finance, int64, error)
	Save(ctx context.Context, finance *models.Finance) error
	// SignContract applies the combined signed/in_progress transition as one
	// conditional update. It reports false when the record was not in a
	// signable state (already signed or not approved).
	SignContract(ctx context.Context, id string, signedAt time.Time) (bool, error)
}

// ContractRepository defines contract data access
type ContractRepository interface {
	Create(ctx context.Context, contract *models.Contract) error
	GetLatestByFinanceID(ctx context.Context, financeID string) (*models.Contract, error)
	MarkSigned(ctx context.Context, financeID string, signedAt time.Time) error
	MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error
	// ExpirePending moves pending contracts whose expires_at has passed to
	// expired and returns how many were swept.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}
