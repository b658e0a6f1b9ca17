package repositories

import (
	"context"
	"time"

	"fintech-financing/internal/adapters/persistence/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContractRepository handles contract data access
type GormContractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// Create creates a new contract
func (r *GormContractRepository) Create(ctx context.Context, contract *models.Contract) error {
	if contract.ID == "" {
		contract.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(contract).Error
}

// GetLatestByFinanceID gets the most recently generated contract for a finance
func (r *GormContractRepository) GetLatestByFinanceID(ctx context.Context, financeID string) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("finance_id = ?", financeID).
		Order("generated_at DESC").
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// MarkSigned flips the pending contract of a finance to signed
func (r *GormContractRepository) MarkSigned(ctx context.Context, financeID string, signedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("finance_id = ? AND status = ?", financeID, models.ContractStatePending).
		Updates(map[string]interface{}{
			"status":    models.ContractStateSigned,
			"signed_at": signedAt,
		}).Error
}

// MarkEmailSent records that the contract email went out
func (r *GormContractRepository) MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email_sent":    true,
			"email_sent_at": sentAt,
		}).Error
}

// ExpirePending sweeps pending contracts past their expiry date
func (r *GormContractRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("status = ? AND expires_at < ?", models.ContractStatePending, now).
		Update("status", models.ContractStateExpired)
	return res.RowsAffected, res.Error
}
