package handlers

import (
	"errors"

	"fintech-financing/internal/adapters/http/middleware"
	"fintech-financing/internal/adapters/persistence/repositories"
	"fintech-financing/internal/core/domain"
	"fintech-financing/internal/core/services"
	"fintech-financing/internal/pkg/pagination"
	"fintech-financing/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// FinanceHandler handles finance endpoints
type FinanceHandler struct {
	financeService *services.FinanceService
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(financeService *services.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeService: financeService}
}

// financeError maps domain errors to HTTP responses.
func financeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrFinanceNotFound):
		return response.NotFound(c, "Finance not found")
	case errors.Is(err, domain.ErrOwnerMismatch):
		return response.Forbidden(c, "You cannot act on another user's finance")
	case errors.Is(err, domain.ErrStatusChangeDenied):
		return response.Forbidden(c, "Only administrators may change the finance status")
	case errors.Is(err, domain.ErrOwnerChangeDenied):
		return response.Forbidden(c, "Finance ownership cannot be transferred")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have permission to perform this operation")
	case errors.Is(err, domain.ErrInvalidVehicleValue):
		return response.BadRequest(c, "Vehicle value must be greater than 0")
	case errors.Is(err, domain.ErrInvalidStatus):
		return response.BadRequest(c, "Invalid finance status")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, "Invalid request data")
	case errors.Is(err, domain.ErrContractAlreadySigned):
		return response.BadRequest(c, "This contract has already been signed")
	case errors.Is(err, domain.ErrFinanceNotApproved):
		return response.BadRequest(c, "Only approved finances can be signed")
	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}

// requirePrincipal pulls the authenticated principal or answers 401.
func requirePrincipal(c *fiber.Ctx) (domain.Principal, error) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return nil, response.Unauthorized(c, "Unauthorized")
	}
	return principal, nil
}

// Create creates a new finance
// @Summary Create finance
// @Description Create a vehicle financing record owned by the authenticated user
// @Tags Finances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateFinanceInput true "Finance data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /finances [post]
func (h *FinanceHandler) Create(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	var input services.CreateFinanceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	finance, err := h.financeService.Create(c.Context(), principal, input)
	if err != nil {
		return financeError(c, err)
	}

	return response.Created(c, "Finance created successfully", fiber.Map{
		"finance": finance.ToResponse(),
	})
}

// List lists the authenticated user's finances
// @Summary List finances
// @Description List the authenticated user's financing records
// @Tags Finances
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param brand query string false "Filter by brand"
// @Param deleted query bool false "Include soft-deleted records"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finances [get]
func (h *FinanceHandler) List(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	params := pagination.GetParams(c)
	filter := repositories.FinanceFilter{
		Status:         c.Query("status"),
		Brand:          c.Query("brand"),
		IncludeDeleted: c.QueryBool("deleted", false),
	}

	finances, total, err := h.financeService.ListByUser(c.Context(), principal, filter, params.Offset, params.Limit)
	if err != nil {
		return financeError(c, err)
	}

	items := make([]interface{}, 0, len(finances))
	for _, f := range finances {
		items = append(items, f.ToResponse())
	}

	return response.Success(c, "Finances retrieved successfully", fiber.Map{
		"finances": items,
		"meta":     pagination.GetMeta(params, total),
	})
}

// GetByID fetches one finance
// @Summary Get finance
// @Description Fetch one financing record owned by the authenticated user
// @Tags Finances
// @Produce json
// @Security BearerAuth
// @Param id path string true "Finance ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finances/{id} [get]
func (h *FinanceHandler) GetByID(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if id == "" {
		return response.BadRequest(c, "Finance ID is required")
	}

	finance, err := h.financeService.GetByID(c.Context(), principal, id)
	if err != nil {
		return financeError(c, err)
	}

	return response.Success(c, "Finance retrieved successfully", fiber.Map{
		"finance": finance.ToResponse(),
	})
}

// Update applies a full or partial update
// @Summary Update finance
// @Description Update a financing record owned by the authenticated user. Status and ownership changes are rejected.
// @Tags Finances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Finance ID"
// @Param body body services.UpdateFinanceInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finances/{id} [put]
func (h *FinanceHandler) Update(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if id == "" {
		return response.BadRequest(c, "Finance ID is required")
	}

	var input services.UpdateFinanceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	finance, err := h.financeService.Update(c.Context(), principal, id, input)
	if err != nil {
		return financeError(c, err)
	}

	return response.Success(c, "Finance updated successfully", fiber.Map{
		"finance": finance.ToResponse(),
	})
}

// Delete soft-deletes a finance
// @Summary Delete finance
// @Description Soft-delete a financing record owned by the authenticated user
// @Tags Finances
// @Produce json
// @Security BearerAuth
// @Param id path string true "Finance ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finances/{id} [delete]
func (h *FinanceHandler) Delete(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if id == "" {
		return response.BadRequest(c, "Finance ID is required")
	}

	if err := h.financeService.Delete(c.Context(), principal, id); err != nil {
		return financeError(c, err)
	}

	return response.Success(c, "Finance deleted successfully", nil)
}

// Restore clears the soft-delete flag
// @Summary Restore finance
// @Description Restore a soft-deleted financing record. Succeeds even if the record was never deleted.
// @Tags Finances
// @Produce json
// @Security BearerAuth
// @Param id path string true "Finance ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finances/{id}/restore [patch]
func (h *FinanceHandler) Restore(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if id == "" {
		return response.BadRequest(c, "Finance ID is required")
	}

	if err := h.financeService.Restore(c.Context(), principal, id); err != nil {
		return financeError(c, err)
	}

	return response.Success(c, "Finance restored successfully", nil)
}

// SetStatusRequest represents the admin status change payload
type SetStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus moves the finance lifecycle status (admin only)
// @Summary Change finance status
// @Description Move a finance to a new lifecycle status. Administrators only.
// @Tags Finances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Finance ID"
// @Param body body SetStatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finances/{id}/status [patch]
func (h *FinanceHandler) SetStatus(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if id == "" {
		return response.BadRequest(c, "Finance ID is required")
	}

	var req SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Status == "" {
		return response.BadRequest(c, "Status is required")
	}

	finance, err := h.financeService.SetStatus(c.Context(), principal, id, req.Status)
	if err != nil {
		return financeError(c, err)
	}

	return response.Success(c, "Finance status updated successfully", fiber.Map{
		"finance": finance.ToResponse(),
	})
}

// Schedule returns the amortization table of a finance
// @Summary Amortization schedule
// @Description Month-by-month amortization table for a financing record owned by the authenticated user
// @Tags Finances
// @Produce json
// @Security BearerAuth
// @Param id path string true "Finance ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finances/{id}/schedule [get]
func (h *FinanceHandler) Schedule(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if id == "" {
		return response.BadRequest(c, "Finance ID is required")
	}

	schedule, err := h.financeService.Schedule(c.Context(), principal, id)
	if err != nil {
		return financeError(c, err)
	}

	return response.Success(c, "Amortization schedule computed successfully", schedule)
}
