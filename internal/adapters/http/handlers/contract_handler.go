package handlers

import (
	"fintech-financing/internal/core/services"
	"fintech-financing/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ContractHandler handles contract endpoints
type ContractHandler struct {
	contractService *services.ContractService
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractService *services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// Sign signs the contract of an approved finance
// @Summary Sign contract
// @Description Sign the contract of an approved finance owned by the authenticated user. Moves the finance to in_progress.
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Finance ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /finances/{id}/sign-contract [post]
func (h *ContractHandler) Sign(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if id == "" {
		return response.BadRequest(c, "Finance ID is required")
	}

	result, err := h.contractService.Sign(c.Context(), principal, id)
	if err != nil {
		return financeError(c, err)
	}

	return response.Success(c, "Contract signed successfully", fiber.Map{
		"finance": result,
	})
}
