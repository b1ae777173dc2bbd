package handlers

import (
	"elibrary-backend/internal/core/services"
	"elibrary-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles admin panel endpoints
type AdminHandler struct {
	catalogService *services.CatalogService
	borrowService  *services.BorrowService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	catalogService *services.CatalogService,
	borrowService *services.BorrowService,
) *AdminHandler {
	return &AdminHandler{
		catalogService: catalogService,
		borrowService:  borrowService,
	}
}

// Panel returns the full catalog plus all active loans
// @Summary Admin panel
// @Description Full catalog and all active loans in one view
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/panel [get]
func (h *AdminHandler) Panel(c *fiber.Ctx) error {
	books, err := h.catalogService.ListAll(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load catalog")
	}

	loans, err := h.borrowService.ListActiveLoans(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load active loans")
	}

	return response.Success(c, "Admin panel retrieved successfully", fiber.Map{
		"books":        books,
		"active_loans": toLoanResponses(loans),
	})
}

// OverdueLoans lists active loans past their due date
// @Summary Overdue loans
// @Description List all active loans past their due date
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/loans/overdue [get]
func (h *AdminHandler) OverdueLoans(c *fiber.Ctx) error {
	loans, err := h.borrowService.ListOverdueLoans(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load overdue loans")
	}

	return response.Success(c, "Overdue loans retrieved successfully", fiber.Map{
		"loans": toLoanResponses(loans),
	})
}
