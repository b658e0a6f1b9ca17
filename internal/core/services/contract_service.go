package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fintech-financing/internal/adapters/persistence/models"
	"fintech-financing/internal/adapters/persistence/repositories"
	"fintech-financing/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// How long an issued contract stays signable before the sweeper expires it.
const contractValidity = 30 * 24 * time.Hour

// ContractService orchestrates the contract lifecycle: issuing a pending
// contract on approval, the signing transition, and the expiry sweep.
//
// Signing commits the state transition first and only then fires the
// notification side effects. A failing rewards service or mail provider is
// logged and swallowed; it never rolls back the transition or changes the
// reported outcome.
type ContractService struct {
	financeRepo  repositories.FinanceRepository
	contractRepo repositories.ContractRepository
	points       PointsNotifier
	email        EmailSender
	users        UserResolver
}

// NewContractService creates a new contract service. points, email and users
// may be nil when those collaborators are not configured.
func NewContractService(
	financeRepo repositories.FinanceRepository,
	contractRepo repositories.ContractRepository,
	points PointsNotifier,
	email EmailSender,
	users UserResolver,
) *ContractService {
	return &ContractService{
		financeRepo:  financeRepo,
		contractRepo: contractRepo,
		points:       points,
		email:        email,
		users:        users,
	}
}

// Sign signs the contract of an approved finance owned by the requesting
// user, moving it to in_progress. Only the conditional persist step decides
// success; everything after it is best-effort.
func (s *ContractService) Sign(ctx context.Context, principal domain.Principal, financeID string) (*SignContractOutput, error) {
	user, ok := principal.(domain.User)
	if !ok {
		// Admins are not implicitly owners.
		return nil, domain.ErrForbidden
	}

	finance, err := s.financeRepo.GetByID(ctx, financeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFinanceNotFound
		}
		return nil, err
	}
	if finance.UserID != user.ID {
		return nil, domain.ErrOwnerMismatch
	}
	if finance.IsSigned() {
		return nil, domain.ErrContractAlreadySigned
	}
	if finance.Status != models.StatusApproved {
		return nil, domain.ErrFinanceNotApproved
	}

	signedAt := time.Now()
	signed, err := s.financeRepo.SignContract(ctx, financeID, signedAt)
	if err != nil {
		return nil, err
	}
	if !signed {
		// Lost a race: the record left the signable state between the
		// precondition check and the conditional update.
		if current, err := s.financeRepo.GetByID(ctx, financeID); err == nil && current.IsSigned() {
			return nil, domain.ErrContractAlreadySigned
		}
		return nil, domain.ErrFinanceNotApproved
	}

	s.notifySigned(ctx, user, finance, signedAt)

	return &SignContractOutput{
		ID:               financeID,
		ContractStatus:   models.ContractSigned,
		ContractSignedAt: signedAt,
		Status:           models.StatusInProgress,
	}, nil
}

// notifySigned runs the post-commit side effects. Every failure is logged and
// suppressed.
func (s *ContractService) notifySigned(ctx context.Context, user domain.User, finance *models.Finance, signedAt time.Time) {
	contractNumber := ""
	contract, err := s.contractRepo.GetLatestByFinanceID(ctx, finance.ID)
	switch {
	case err == nil:
		contractNumber = contract.ContractNumber
		if err := s.contractRepo.MarkSigned(ctx, finance.ID, signedAt); err != nil {
			log.Printf("contract %s: mark signed failed: %v", contract.ContractNumber, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Signed before a contract row was issued; keep a number for the
		// email anyway.
		contractNumber = newContractNumber()
	default:
		log.Printf("contract lookup for finance %s failed: %v", finance.ID, err)
	}

	if s.points != nil {
		event := ContractCompletedEvent{
			UserID:        user.ID,
			FinanceID:     finance.ID,
			ContractValue: finance.Value,
			ContractDate:  signedAt,
		}
		if err := s.points.ContractCompleted(ctx, event); err != nil {
			log.Printf("points notification for finance %s failed: %v", finance.ID, err)
		}
	}

	if s.email != nil && user.Email != "" {
		data := contractEmailData(contractNumber, finance)
		if err := s.email.SendContractSigned(user.Email, user.Name, data); err != nil {
			log.Printf("contract signed email to %s failed: %v", user.Email, err)
		} else if contract != nil {
			if err := s.contractRepo.MarkEmailSent(ctx, contract.ID, time.Now()); err != nil {
				log.Printf("contract %s: mark email sent failed: %v", contract.ContractNumber, err)
			}
		}
	}
}

// IssueForFinance generates the pending contract for a freshly approved
// finance and emails the owner that it is ready to sign.
func (s *ContractService) IssueForFinance(ctx context.Context, finance *models.Finance) error {
	now := time.Now()
	contract := &models.Contract{
		FinanceID:      finance.ID,
		UserID:         finance.UserID,
		Status:         models.ContractStatePending,
		ContractNumber: newContractNumber(),
		Terms: fmt.Sprintf("Financing of %s %s over %d monthly installments of %.2f.",
			finance.Brand, finance.ModelName, finance.CountOfMonths, finance.InstallmentValue),
		GeneratedAt: now,
		ExpiresAt:   now.Add(contractValidity),
	}
	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return err
	}
	log.Printf("contract %s issued for finance %s", contract.ContractNumber, finance.ID)

	// Contract-ready email, best-effort. The owner's address comes from the
	// identity collaborator since the approving principal is an admin.
	if s.email != nil && s.users != nil {
		owner, err := s.users.ResolveUser(ctx, finance.UserID)
		if err != nil {
			log.Printf("owner lookup for finance %s failed: %v", finance.ID, err)
			return nil
		}
		if owner.Email == "" {
			return nil
		}
		if err := s.email.SendContractReady(owner.Email, owner.Name, contractEmailData(contract.ContractNumber, finance)); err != nil {
			log.Printf("contract ready email to %s failed: %v", owner.Email, err)
			return nil
		}
		if err := s.contractRepo.MarkEmailSent(ctx, contract.ID, time.Now()); err != nil {
			log.Printf("contract %s: mark email sent failed: %v", contract.ContractNumber, err)
		}
	}
	return nil
}

// ExpirePendingContracts sweeps pending contracts past their expiry. Called
// from the cron service.
func (s *ContractService) ExpirePendingContracts(ctx context.Context) (int64, error) {
	return s.contractRepo.ExpirePending(ctx, time.Now())
}

func contractEmailData(contractNumber string, finance *models.Finance) ContractEmail {
	return ContractEmail{
		ContractNumber:   contractNumber,
		Brand:            finance.Brand,
		ModelName:        finance.ModelName,
		Value:            finance.Value,
		DownPayment:      finance.DownPayment,
		CountOfMonths:    finance.CountOfMonths,
		InstallmentValue: finance.InstallmentValue,
	}
}

func newContractNumber() string {
	return "FIN-" + strings.ToUpper(uuid.NewString()[:8])
}
