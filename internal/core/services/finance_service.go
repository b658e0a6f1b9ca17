package services

import (
	"context"
	"errors"
	"log"
	"time"

	"fintech-financing/internal/adapters/persistence/models"
	"fintech-financing/internal/adapters/persistence/repositories"
	"fintech-financing/internal/core/domain"
	"fintech-financing/internal/pkg/amortization"

	"gorm.io/gorm"
)

// FinanceService handles finance business logic and the authorization rules
// around it. Owners manage the content of their own records; administrators
// only move lifecycle status through SetStatus.
type FinanceService struct {
	financeRepo repositories.FinanceRepository
	vehicles    VehicleLookup
	contracts   ContractIssuer
}

// NewFinanceService creates a new finance service. vehicles and contracts may
// be nil when those collaborators are not configured.
func NewFinanceService(financeRepo repositories.FinanceRepository, vehicles VehicleLookup, contracts ContractIssuer) *FinanceService {
	return &FinanceService{
		financeRepo: financeRepo,
		vehicles:    vehicles,
		contracts:   contracts,
	}
}

// Create creates a finance owned by the requesting user. Administrators may
// not create finances, and nobody may create one on behalf of another user.
func (s *FinanceService) Create(ctx context.Context, principal domain.Principal, input CreateFinanceInput) (*models.Finance, error) {
	user, ok := principal.(domain.User)
	if !ok {
		return nil, domain.ErrForbidden
	}
	if input.UserID != "" && input.UserID != user.ID {
		return nil, domain.ErrOwnerMismatch
	}
	if input.Value <= 0 {
		return nil, domain.ErrInvalidVehicleValue
	}
	if input.DownPayment < 0 || input.DownPayment > input.Value {
		return nil, domain.ErrInvalidInput
	}
	if input.CountOfMonths < 1 {
		return nil, domain.ErrInvalidInput
	}
	if input.InterestRate < 0 {
		return nil, domain.ErrInvalidInput
	}

	finance := &models.Finance{
		UserID:           user.ID,
		Brand:            input.Brand,
		ModelName:        input.ModelName,
		Type:             input.Type,
		Value:            input.Value,
		DownPayment:      input.DownPayment,
		CountOfMonths:    input.CountOfMonths,
		InterestRate:     input.InterestRate,
		InstallmentValue: input.InstallmentValue,
		Status:           models.StatusPending,
		FinanceDate:      time.Now(),
	}
	if input.FinanceDate != nil {
		finance.FinanceDate = *input.FinanceDate
	}
	if finance.InstallmentValue <= 0 {
		finance.InstallmentValue = amortization.Installment(finance.Principal(), finance.InterestRate, finance.CountOfMonths)
	}

	// Vehicle catalog lookup fills missing descriptors, best-effort.
	if s.vehicles != nil && finance.Brand == "" && finance.ModelName == "" {
		if specs, err := s.vehicles.Specs(ctx); err != nil {
			log.Printf("vehicle lookup failed, continuing without descriptors: %v", err)
		} else if specs != nil {
			finance.Brand = specs.Brand
			finance.ModelName = specs.ModelName
			finance.Type = specs.Type
		}
	}

	if err := s.financeRepo.Create(ctx, finance); err != nil {
		return nil, err
	}
	return finance, nil
}

// ListByUser lists the requesting user's finances. An empty result is
// reported as not found.
func (s *FinanceService) ListByUser(ctx context.Context, principal domain.Principal, filter repositories.FinanceFilter, offset, limit int) ([]*models.Finance, int64, error) {
	user, ok := principal.(domain.User)
	if !ok {
		return nil, 0, domain.ErrForbidden
	}

	finances, total, err := s.financeRepo.ListByUser(ctx, user.ID, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, domain.ErrFinanceNotFound
	}
	return finances, total, nil
}

// GetByID fetches one finance owned by the requesting user. A record owned by
// someone else surfaces as not found, never as forbidden.
func (s *FinanceService) GetByID(ctx context.Context, principal domain.Principal, id string) (*models.Finance, error) {
	user, ok := principal.(domain.User)
	if !ok {
		return nil, domain.ErrForbidden
	}
	return s.getOwned(ctx, id, user.ID)
}

// Update applies a full or partial update to an owned finance. Status changes
// and ownership transfers are rejected outright.
func (s *FinanceService) Update(ctx context.Context, principal domain.Principal, id string, input UpdateFinanceInput) (*models.Finance, error) {
	user, ok := principal.(domain.User)
	if !ok {
		return nil, domain.ErrForbidden
	}
	if input.Status != nil {
		return nil, domain.ErrStatusChangeDenied
	}
	if input.UserID != nil && *input.UserID != user.ID {
		return nil, domain.ErrOwnerChangeDenied
	}

	finance, err := s.getOwned(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}

	termsChanged := false
	if input.Brand != nil {
		finance.Brand = *input.Brand
	}
	if input.ModelName != nil {
		finance.ModelName = *input.ModelName
	}
	if input.Type != nil {
		finance.Type = *input.Type
	}
	if input.Value != nil {
		if *input.Value <= 0 {
			return nil, domain.ErrInvalidVehicleValue
		}
		finance.Value = *input.Value
		termsChanged = true
	}
	if input.DownPayment != nil {
		if *input.DownPayment < 0 {
			return nil, domain.ErrInvalidInput
		}
		finance.DownPayment = *input.DownPayment
		termsChanged = true
	}
	if input.CountOfMonths != nil {
		if *input.CountOfMonths < 1 {
			return nil, domain.ErrInvalidInput
		}
		finance.CountOfMonths = *input.CountOfMonths
		termsChanged = true
	}
	if input.InterestRate != nil {
		if *input.InterestRate < 0 {
			return nil, domain.ErrInvalidInput
		}
		finance.InterestRate = *input.InterestRate
		termsChanged = true
	}
	if input.InstallmentValue != nil {
		finance.InstallmentValue = *input.InstallmentValue
	} else if termsChanged {
		finance.InstallmentValue = amortization.Installment(finance.Principal(), finance.InterestRate, finance.CountOfMonths)
	}

	if err := s.financeRepo.Save(ctx, finance); err != nil {
		return nil, err
	}
	return finance, nil
}

// Delete soft-deletes an owned finance.
func (s *FinanceService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	return s.setDeleted(ctx, principal, id, true)
}

// Restore clears the soft-delete flag. Restoring a record that was never
// deleted still succeeds.
func (s *FinanceService) Restore(ctx context.Context, principal domain.Principal, id string) error {
	return s.setDeleted(ctx, principal, id, false)
}

func (s *FinanceService) setDeleted(ctx context.Context, principal domain.Principal, id string, deleted bool) error {
	user, ok := principal.(domain.User)
	if !ok {
		return domain.ErrForbidden
	}
	finance, err := s.getOwned(ctx, id, user.ID)
	if err != nil {
		return err
	}
	finance.Deleted = deleted
	return s.financeRepo.Save(ctx, finance)
}

// SetStatus moves a finance's lifecycle status. Administrator-only; the
// transition graph is not constrained beyond who may move it. Entering
// approved issues the pending contract as a best-effort side effect.
func (s *FinanceService) SetStatus(ctx context.Context, principal domain.Principal, id, status string) (*models.Finance, error) {
	if _, ok := principal.(domain.Admin); !ok {
		return nil, domain.ErrStatusChangeDenied
	}
	if !models.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	finance, err := s.financeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFinanceNotFound
		}
		return nil, err
	}

	entersApproval := status == models.StatusApproved && finance.Status != models.StatusApproved
	finance.Status = status
	if err := s.financeRepo.Save(ctx, finance); err != nil {
		return nil, err
	}

	if entersApproval && s.contracts != nil {
		if err := s.contracts.IssueForFinance(ctx, finance); err != nil {
			log.Printf("contract issuing for finance %s failed: %v", finance.ID, err)
		}
	}

	return finance, nil
}

// Schedule returns the amortization table of an owned finance.
func (s *FinanceService) Schedule(ctx context.Context, principal domain.Principal, id string) (*amortization.Result, error) {
	user, ok := principal.(domain.User)
	if !ok {
		return nil, domain.ErrForbidden
	}
	finance, err := s.getOwned(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}
	res := amortization.Schedule(finance.Principal(), finance.InterestRate, finance.CountOfMonths, finance.InstallmentValue)
	return &res, nil
}

func (s *FinanceService) getOwned(ctx context.Context, id, userID string) (*models.Finance, error) {
	finance, err := s.financeRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFinanceNotFound
		}
		return nil, err
	}
	return finance, nil
}
