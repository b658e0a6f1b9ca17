package models

import (
	"time"

	"gorm.io/gorm"
)

// Finance status values. Status transitions are administrator-only; signing
// forces in_progress together with the signed contract status.
const (
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusInProgress = "in_progress"
	StatusRejected   = "rejected"
)

// Contract status on the finance record. Empty string means unsigned.
const (
	ContractUnsigned = ""
	ContractSigned   = "signed"
)

// ValidStatus reports whether s is a known finance status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusInProgress, StatusRejected:
		return true
	}
	return false
}

// Finance represents the finances table
type Finance struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	UserID           string     `gorm:"index;size:64;not null" json:"user_id"`
	Brand            string     `gorm:"size:100" json:"brand"`
	ModelName        string     `gorm:"size:100" json:"model_name"`
	Type             string     `gorm:"size:50" json:"type"`
	Value            float64    `gorm:"not null" json:"value"`
	DownPayment      float64    `gorm:"default:0" json:"down_payment"`
	CountOfMonths    int        `gorm:"not null" json:"count_of_months"`
	InterestRate     float64    `gorm:"default:0" json:"interest_rate"`
	InstallmentValue float64    `json:"installment_value"`
	FinanceDate      time.Time  `json:"finance_date"`
	Status           string     `gorm:"size:20;default:'pending';index" json:"status"`
	ContractStatus   string     `gorm:"size:20;default:''" json:"contract_status"`
	ContractSignedAt *time.Time `json:"contract_signed_at"`
	Deleted          bool       `gorm:"default:false;index" json:"deleted"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Finance) TableName() string {
	return "finances"
}

// Principal returns the financed amount after the down payment.
func (f *Finance) Principal() float64 {
	return f.Value - f.DownPayment
}

// IsSigned reports whether the contract on this finance has been signed.
func (f *Finance) IsSigned() bool {
	return f.ContractStatus == ContractSigned
}

// FinanceResponse DTO
type FinanceResponse struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	Brand            string     `json:"brand,omitempty"`
	ModelName        string     `json:"modelName,omitempty"`
	Type             string     `json:"type,omitempty"`
	Value            float64    `json:"value"`
	DownPayment      float64    `json:"downPayment"`
	CountOfMonths    int        `json:"countOfMonths"`
	InterestRate     float64    `json:"interestRate"`
	InstallmentValue float64    `json:"installmentValue"`
	FinanceDate      time.Time  `json:"financeDate"`
	Status           string     `json:"status"`
	ContractStatus   string     `json:"contractStatus,omitempty"`
	ContractSignedAt *time.Time `json:"contractSignedAt,omitempty"`
	Deleted          bool       `json:"deleted"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func (f *Finance) ToResponse() *FinanceResponse {
	return &FinanceResponse{
		ID:               f.ID,
		UserID:           f.UserID,
		Brand:            f.Brand,
		ModelName:        f.ModelName,
		Type:             f.Type,
		Value:            f.Value,
		DownPayment:      f.DownPayment,
		CountOfMonths:    f.CountOfMonths,
		InterestRate:     f.InterestRate,
		InstallmentValue: f.InstallmentValue,
		FinanceDate:      f.FinanceDate,
		Status:           f.Status,
		ContractStatus:   f.ContractStatus,
		ContractSignedAt: f.ContractSignedAt,
		Deleted:          f.Deleted,
		CreatedAt:        f.CreatedAt,
	}
}

// Contract lifecycle states. A contract is generated when the finance is
// approved, signed by its owner, or expired by the sweeper once expires_at
// passes while still pending.
const (
	ContractStatePending = "pending"
	ContractStateSigned  = "signed"
	ContractStateExpired = "expired"
)

// Contract represents the contracts table
type Contract struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	FinanceID      string     `gorm:"index;size:36;not null" json:"finance_id"`
	UserID         string     `gorm:"index;size:64;not null" json:"user_id"`
	Status         string     `gorm:"size:20;default:'pending';index" json:"status"`
	ContractNumber string     `gorm:"uniqueIndex;size:50;not null" json:"contract_number"`
	Terms          string     `gorm:"type:text" json:"terms"`
	GeneratedAt    time.Time  `json:"generated_at"`
	SignedAt       *time.Time `json:"signed_at"`
	EmailSent      bool       `gorm:"default:false" json:"email_sent"`
	EmailSentAt    *time.Time `json:"email_sent_at"`
	ExpiresAt      time.Time  `gorm:"index;not null" json:"expires_at"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contract) TableName() string {
	return "contracts"
}

// AutoMigrate creates or updates the schema for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Finance{},
		&Contract{},
	)
}
