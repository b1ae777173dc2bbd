package handlers

import (
	"errors"

	"elibrary-backend/internal/adapters/persistence/models"
	"elibrary-backend/internal/core/services"
	"elibrary-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles borrow/return endpoints
type LoanHandler struct {
	borrowService *services.BorrowService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(borrowService *services.BorrowService) *LoanHandler {
	return &LoanHandler{
		borrowService: borrowService,
	}
}

// toLoanResponses converts borrow records to DTOs
func toLoanResponses(records []*models.BorrowRecord) []*models.BorrowRecordResponse {
	resp := make([]*models.BorrowRecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, r.ToResponse())
	}
	return resp
}

// Borrow checks a book out to the caller
// @Summary Borrow book
// @Description Borrow an available book; opens a 14-day loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books/{id}/borrow [post]
func (h *LoanHandler) Borrow(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	bookID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	record, err := h.borrowService.Borrow(c.Context(), userID, bookID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, services.ErrBookUnavailable):
			return response.Conflict(c, "Book is currently unavailable")
		case errors.Is(err, services.ErrAlreadyBorrowed):
			return response.Conflict(c, "You have already borrowed this book")
		default:
			return response.InternalServerError(c, "Failed to borrow book")
		}
	}

	return response.Created(c, "Book borrowed successfully", fiber.Map{
		"loan": record.ToResponse(),
	})
}

// Return closes one of the caller's loans
// @Summary Return book
// @Description Return a borrowed book and close the loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/return [post]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	loanID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	record, err := h.borrowService.Return(c.Context(), loanID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, services.ErrNotLoanOwner):
			return response.Forbidden(c, "This loan belongs to another user")
		case errors.Is(err, services.ErrLoanAlreadyClosed):
			return response.Conflict(c, "Loan is already closed")
		default:
			return response.InternalServerError(c, "Failed to return book")
		}
	}

	return response.Success(c, "Book returned successfully", fiber.Map{
		"loan": record.ToResponse(),
	})
}

// MyLoans lists the caller's active loans
// @Summary My borrowed books
// @Description List the caller's active loans with book details
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /loans/my [get]
func (h *LoanHandler) MyLoans(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	records, err := h.borrowService.ListMyLoans(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", fiber.Map{
		"loans": toLoanResponses(records),
	})
}
