package services

import (
	"context"
	"time"

	"fintech-financing/internal/adapters/persistence/models"
	"fintech-financing/internal/core/domain"
)

// Note: FinanceService implementation is in finance_service.go
// Note: ContractService implementation is in contract_service.go

// ContractEmail carries everything the contract mail templates render.
type ContractEmail struct {
	ContractNumber   string
	Brand            string
	ModelName        string
	Value            float64
	DownPayment      float64
	CountOfMonths    int
	InstallmentValue float64
}

// EmailSender dispatches contract emails. Implementations are best-effort
// collaborators: callers log failures and move on.
type EmailSender interface {
	SendContractReady(to, name string, data ContractEmail) error
	SendContractSigned(to, name string, data ContractEmail) error
}

// ContractCompletedEvent is the payload posted to the rewards service when a
// contract is signed.
type ContractCompletedEvent struct {
	UserID        string    `json:"userId"`
	FinanceID     string    `json:"financeId"`
	ContractValue float64   `json:"contractValue"`
	ContractDate  time.Time `json:"contractDate"`
}

// PointsNotifier notifies the external rewards service. Best-effort.
type PointsNotifier interface {
	ContractCompleted(ctx context.Context, event ContractCompletedEvent) error
}

// VehicleSpecs is the descriptor set returned by the vehicle data service.
type VehicleSpecs struct {
	Brand     string `json:"brand"`
	ModelName string `json:"modelName"`
	Type      string `json:"type"`
}

// VehicleLookup fetches vehicle descriptors from the external catalog.
type VehicleLookup interface {
	Specs(ctx context.Context) (*VehicleSpecs, error)
}

// ContractIssuer generates the pending contract once a finance is approved.
type ContractIssuer interface {
	IssueForFinance(ctx context.Context, finance *models.Finance) error
}

// UserResolver looks up a user profile at the identity service by id.
type UserResolver interface {
	ResolveUser(ctx context.Context, id string) (domain.User, error)
}

// Input DTOs

// CreateFinanceInput for creating a finance
type CreateFinanceInput struct {
	UserID           string     `json:"userId"`
	Brand            string     `json:"brand,omitempty"`
	ModelName        string     `json:"modelName,omitempty"`
	Type             string     `json:"type,omitempty"`
	Value            float64    `json:"value"`
	DownPayment      float64    `json:"downPayment,omitempty"`
	CountOfMonths    int        `json:"countOfMonths"`
	InterestRate     float64    `json:"interestRate,omitempty"`
	InstallmentValue float64    `json:"installmentValue,omitempty"`
	FinanceDate      *time.Time `json:"financeDate,omitempty"`
}

// UpdateFinanceInput for full or partial updates. Nil pointers mean "leave
// unchanged"; Status and UserID are present only to be rejected.
type UpdateFinanceInput struct {
	UserID           *string  `json:"userId,omitempty"`
	Brand            *string  `json:"brand,omitempty"`
	ModelName        *string  `json:"modelName,omitempty"`
	Type             *string  `json:"type,omitempty"`
	Value            *float64 `json:"value,omitempty"`
	DownPayment      *float64 `json:"downPayment,omitempty"`
	CountOfMonths    *int     `json:"countOfMonths,omitempty"`
	InterestRate     *float64 `json:"interestRate,omitempty"`
	InstallmentValue *float64 `json:"installmentValue,omitempty"`
	Status           *string  `json:"status,omitempty"`
}

// SignContractOutput is the result of a successful signing.
type SignContractOutput struct {
	ID               string    `json:"id"`
	ContractStatus   string    `json:"contractStatus"`
	ContractSignedAt time.Time `json:"contractSignedAt"`
	Status           string    `json:"status"`
}
