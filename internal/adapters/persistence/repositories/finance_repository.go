package repositories

import (
	"context"
	"time"

	"fintech-financing/internal/adapters/persistence/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFinanceRepository handles finance data access
type GormFinanceRepository struct {
	db *gorm.DB
}

// NewFinanceRepository creates a new finance repository
func NewFinanceRepository(db *gorm.DB) *GormFinanceRepository {
	return &GormFinanceRepository{db: db}
}

// Create creates a new finance, assigning a synthetic id when absent
func (r *GormFinanceRepository) Create(ctx context.Context, finance *models.Finance) error {
	if finance.ID == "" {
		finance.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(finance).Error
}

// GetByID gets a finance by ID
func (r *GormFinanceRepository) GetByID(ctx context.Context, id string) (*models.Finance, error) {
	var finance models.Finance
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&finance).Error
	if err != nil {
		return nil, err
	}
	return &finance, nil
}

// GetByIDAndUser gets a finance matching both id and owner
func (r *GormFinanceRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*models.Finance, error) {
	var finance models.Finance
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&finance).Error
	if err != nil {
		return nil, err
	}
	return &finance, nil
}

// ListByUser lists a user's finances with optional filters and pagination
func (r *GormFinanceRepository) ListByUser(ctx context.Context, userID string, filter FinanceFilter, offset, limit int) ([]*models.Finance, int64, error) {
	var finances []*models.Finance
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Finance{}).Where("user_id = ?", userID)
	if !filter.IncludeDeleted {
		query = query.Where("deleted = ?", false)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&finances).Error

	return finances, total, err
}

// Save persists all fields of a finance
func (r *GormFinanceRepository) Save(ctx context.Context, finance *models.Finance) error {
	return r.db.WithContext(ctx).Save(finance).Error
}

// SignContract marks the contract signed and the finance in_progress in a
// single conditional update, so two concurrent signings cannot both succeed.
func (r *GormFinanceRepository) SignContract(ctx context.Context, id string, signedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Finance{}).
		Where("id = ? AND contract_status <> ? AND status = ?",
			id, models.ContractSigned, models.StatusApproved).
		Updates(map[string]interface{}{
			"contract_status":    models.ContractSigned,
			"contract_signed_at": signedAt,
			"status":             models.StatusInProgress,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
