package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"fintech-financing/internal/adapters/http/handlers"
	"fintech-financing/internal/adapters/http/middleware"
	"fintech-financing/internal/adapters/http/routes"
	"fintech-financing/internal/adapters/persistence/models"
	"fintech-financing/internal/adapters/persistence/repositories"
	"fintech-financing/internal/core/domain"
	"fintech-financing/internal/core/services"
	"fintech-financing/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	ownerToken    = "owner-token"
	intruderToken = "intruder-token"
	adminToken    = "admin-token"
)

var (
	owner    = domain.User{ID: "user-1", Email: "owner@example.com", Name: "Owner"}
	intruder = domain.User{ID: "user-2", Email: "intruder@example.com", Name: "Intruder"}
	admin    = domain.Admin{ID: "admin-1", Email: "admin@example.com", Name: "Admin"}
)

// stubIntrospector maps fixed tokens to principals, standing in for the
// external identity service.
type stubIntrospector struct{}

func (stubIntrospector) Introspect(_ context.Context, token string) (domain.Principal, error) {
	switch token {
	case ownerToken:
		return owner, nil
	case intruderToken:
		return intruder, nil
	case adminToken:
		return admin, nil
	}
	return nil, domain.ErrUnauthorized
}

type testEnv struct {
	app          *fiber.App
	financeRepo  repositories.FinanceRepository
	contractRepo repositories.ContractRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	financeRepo := repositories.NewFinanceRepository(db)
	contractRepo := repositories.NewContractRepository(db)
	contractService := services.NewContractService(financeRepo, contractRepo, nil, nil, nil)
	financeService := services.NewFinanceService(financeRepo, nil, contractService)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	apiV1 := app.Group("/api/v1")
	apiV1.Use(middleware.AuthMiddleware(stubIntrospector{}))
	routes.RegisterFinanceRoutes(apiV1, handlers.NewFinanceHandler(financeService), handlers.NewContractHandler(contractService))

	return &testEnv{app: app, financeRepo: financeRepo, contractRepo: contractRepo}
}

func (e *testEnv) request(t *testing.T, method, target, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) response.Response {
	t.Helper()
	var envelope response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	resp.Body.Close()
	return envelope
}

func financeData(t *testing.T, envelope response.Response) map[string]interface{} {
	t.Helper()
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	finance, ok := data["finance"].(map[string]interface{})
	require.True(t, ok)
	return finance
}

func (e *testEnv) seed(t *testing.T, finance *models.Finance) *models.Finance {
	t.Helper()
	require.NoError(t, e.financeRepo.Create(context.Background(), finance))
	return finance
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing token", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/finances", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown token", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/finances", "bogus", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/finances", nil)
		req.Header.Set("Authorization", "Token abc")
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestCreateFinanceEndpoint(t *testing.T) {
	payload := map[string]interface{}{
		"brand":         "Toyota",
		"modelName":     "Corolla",
		"type":          "sedan",
		"value":         90000,
		"downPayment":   20000,
		"countOfMonths": 48,
		"interestRate":  0.12,
	}

	t.Run("owner creates a pending finance", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.request(t, http.MethodPost, "/api/v1/finances", ownerToken, payload)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		finance := financeData(t, decodeEnvelope(t, resp))
		assert.Equal(t, owner.ID, finance["userId"])
		assert.Equal(t, models.StatusPending, finance["status"])
		assert.Greater(t, finance["installmentValue"].(float64), 0.0)
		assert.NotEmpty(t, finance["id"])
	})

	t.Run("computes the installment from the financed amount", func(t *testing.T) {
		env := newTestEnv(t)
		body := map[string]interface{}{
			"value":         20000,
			"downPayment":   2000,
			"countOfMonths": 12,
			"interestRate":  0.08,
		}
		resp := env.request(t, http.MethodPost, "/api/v1/finances", ownerToken, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		finance := financeData(t, decodeEnvelope(t, resp))
		assert.InDelta(t, 1565.80, finance["installmentValue"].(float64), 0.01)
		assert.Equal(t, models.StatusPending, finance["status"])
	})

	t.Run("admin cannot create", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.request(t, http.MethodPost, "/api/v1/finances", adminToken, payload)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("creating for another user is forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		body := map[string]interface{}{"userId": intruder.ID, "value": 90000, "countOfMonths": 48}
		resp := env.request(t, http.MethodPost, "/api/v1/finances", ownerToken, body)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("non-positive value is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		body := map[string]interface{}{"value": 0, "countOfMonths": 48}
		resp := env.request(t, http.MethodPost, "/api/v1/finances", ownerToken, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		envelope := decodeEnvelope(t, resp)
		assert.False(t, envelope.Success)
		assert.NotEmpty(t, envelope.Error)
	})
}

func TestListFinancesEndpoint(t *testing.T) {
	t.Run("lists only the caller's records", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, &models.Finance{UserID: owner.ID, Brand: "Toyota", Status: models.StatusPending})
		env.seed(t, &models.Finance{UserID: owner.ID, Brand: "Honda", Status: models.StatusPending})
		env.seed(t, &models.Finance{UserID: intruder.ID, Brand: "Fiat", Status: models.StatusPending})

		resp := env.request(t, http.MethodGet, "/api/v1/finances", ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data := decodeEnvelope(t, resp).Data.(map[string]interface{})
		finances := data["finances"].([]interface{})
		assert.Len(t, finances, 2)
		meta := data["meta"].(map[string]interface{})
		assert.Equal(t, 2.0, meta["total"])
	})

	t.Run("empty list is not found", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.request(t, http.MethodGet, "/api/v1/finances", ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("status filter applies", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, &models.Finance{UserID: owner.ID, Status: models.StatusPending})
		env.seed(t, &models.Finance{UserID: owner.ID, Status: models.StatusApproved})

		resp := env.request(t, http.MethodGet, "/api/v1/finances?status=approved", ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data := decodeEnvelope(t, resp).Data.(map[string]interface{})
		assert.Len(t, data["finances"].([]interface{}), 1)
	})
}

func TestGetFinanceEndpoint(t *testing.T) {
	env := newTestEnv(t)
	finance := env.seed(t, &models.Finance{UserID: owner.ID, Brand: "Toyota", Status: models.StatusPending})

	t.Run("owner reads own record", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/finances/"+finance.ID, ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Toyota", financeData(t, decodeEnvelope(t, resp))["brand"])
	})

	t.Run("someone else's record reads as not found", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/finances/"+finance.ID, intruderToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing record is not found", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/finances/missing", ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateFinanceEndpoint(t *testing.T) {
	t.Run("owner updates content fields", func(t *testing.T) {
		env := newTestEnv(t)
		finance := env.seed(t, &models.Finance{UserID: owner.ID, Brand: "Toyota", Value: 90000, CountOfMonths: 48, Status: models.StatusPending})

		resp := env.request(t, http.MethodPatch, "/api/v1/finances/"+finance.ID, ownerToken, map[string]interface{}{"brand": "Honda"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Honda", financeData(t, decodeEnvelope(t, resp))["brand"])
	})

	t.Run("status in the payload is forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		finance := env.seed(t, &models.Finance{UserID: owner.ID, Status: models.StatusPending})

		resp := env.request(t, http.MethodPut, "/api/v1/finances/"+finance.ID, ownerToken, map[string]interface{}{"status": models.StatusApproved})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("ownership transfer is forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		finance := env.seed(t, &models.Finance{UserID: owner.ID, Status: models.StatusPending})

		resp := env.request(t, http.MethodPatch, "/api/v1/finances/"+finance.ID, ownerToken, map[string]interface{}{"userId": intruder.ID})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestDeleteRestoreEndpoints(t *testing.T) {
	env := newTestEnv(t)
	finance := env.seed(t, &models.Finance{UserID: owner.ID, Status: models.StatusPending})

	resp := env.request(t, http.MethodDelete, "/api/v1/finances/"+finance.ID, ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Soft-deleted records disappear from the default listing.
	resp = env.request(t, http.MethodGet, "/api/v1/finances", ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/api/v1/finances?deleted=true", ownerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodPatch, "/api/v1/finances/"+finance.ID+"/restore", ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/api/v1/finances", ownerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestSetStatusEndpoint(t *testing.T) {
	t.Run("admin approves and a contract is issued", func(t *testing.T) {
		env := newTestEnv(t)
		finance := env.seed(t, &models.Finance{UserID: owner.ID, Brand: "Toyota", ModelName: "Corolla", Status: models.StatusPending})

		resp := env.request(t, http.MethodPatch, "/api/v1/finances/"+finance.ID+"/status", adminToken, map[string]string{"status": models.StatusApproved})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, models.StatusApproved, financeData(t, decodeEnvelope(t, resp))["status"])

		contract, err := env.contractRepo.GetLatestByFinanceID(context.Background(), finance.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ContractStatePending, contract.Status)
		assert.NotEmpty(t, contract.ContractNumber)
	})

	t.Run("owner cannot change status", func(t *testing.T) {
		env := newTestEnv(t)
		finance := env.seed(t, &models.Finance{UserID: owner.ID, Status: models.StatusPending})

		resp := env.request(t, http.MethodPatch, "/api/v1/finances/"+finance.ID+"/status", ownerToken, map[string]string{"status": models.StatusApproved})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		finance := env.seed(t, &models.Finance{UserID: owner.ID, Status: models.StatusPending})

		resp := env.request(t, http.MethodPatch, "/api/v1/finances/"+finance.ID+"/status", adminToken, map[string]string{"status": "cancelled"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSignContractEndpoint(t *testing.T) {
	t.Run("owner signs an approved finance", func(t *testing.T) {
		env := newTestEnv(t)
		finance := env.seed(t, &models.Finance{UserID: owner.ID, Status: models.StatusApproved})

		resp := env.request(t, http.MethodPost, "/api/v1/finances/"+finance.ID+"/sign-contract", ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		signed := financeData(t, decodeEnvelope(t, resp))
		assert.Equal(t, models.ContractSigned, signed["contractStatus"])
		assert.Equal(t, models.StatusInProgress, signed["status"])

		stored, err := env.financeRepo.GetByID(context.Background(), finance.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsSigned())
		assert.Equal(t, models.StatusInProgress, stored.Status)
	})

	t.Run("signing twice fails", func(t *testing.T) {
		env := newTestEnv(t)
		finance := env.seed(t, &models.Finance{UserID: owner.ID, Status: models.StatusApproved})

		resp := env.request(t, http.MethodPost, "/api/v1/finances/"+finance.ID+"/sign-contract", ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = env.request(t, http.MethodPost, "/api/v1/finances/"+finance.ID+"/sign-contract", ownerToken, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unapproved finance cannot be signed", func(t *testing.T) {
		env := newTestEnv(t)
		finance := env.seed(t, &models.Finance{UserID: owner.ID, Status: models.StatusPending})

		resp := env.request(t, http.MethodPost, "/api/v1/finances/"+finance.ID+"/sign-contract", ownerToken, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("only the owner may sign", func(t *testing.T) {
		env := newTestEnv(t)
		finance := env.seed(t, &models.Finance{UserID: owner.ID, Status: models.StatusApproved})

		resp := env.request(t, http.MethodPost, "/api/v1/finances/"+finance.ID+"/sign-contract", intruderToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = env.request(t, http.MethodPost, "/api/v1/finances/"+finance.ID+"/sign-contract", adminToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestScheduleEndpoint(t *testing.T) {
	env := newTestEnv(t)
	finance := env.seed(t, &models.Finance{
		UserID:           owner.ID,
		Value:            30000,
		DownPayment:      6000,
		CountOfMonths:    12,
		InterestRate:     0.08,
		InstallmentValue: 2087.73,
		Status:           models.StatusApproved,
	})

	resp := env.request(t, http.MethodGet, "/api/v1/finances/"+finance.ID+"/schedule", ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeEnvelope(t, resp).Data.(map[string]interface{})
	schedule := data["schedule"].([]interface{})
	assert.Len(t, schedule, 12)
	first := schedule[0].(map[string]interface{})
	assert.Greater(t, first["interest"].(float64), 0.0)
}
