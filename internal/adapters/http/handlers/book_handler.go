package handlers

import (
	"errors"
	"strconv"

	"elibrary-backend/internal/core/services"
	"elibrary-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	catalogService *services.CatalogService
}

// NewBookHandler creates a new book handler
func NewBookHandler(catalogService *services.CatalogService) *BookHandler {
	return &BookHandler{
		catalogService: catalogService,
	}
}

// AddBookRequest represents add book request
type AddBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn,omitempty"`
	DigitalLink string `json:"digital_link"`
}

// parseIDParam parses a numeric path parameter
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// ListAvailable lists borrowable books (the reader dashboard)
// @Summary List available books
// @Description List all books currently available for borrowing
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /books [get]
func (h *BookHandler) ListAvailable(c *fiber.Ctx) error {
	books, err := h.catalogService.ListAvailable(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	return response.Success(c, "Books retrieved successfully", fiber.Map{
		"books": books,
	})
}

// Get gets a single book
// @Summary Get book
// @Description Get a book by ID
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.catalogService.Get(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		default:
			return response.InternalServerError(c, "Failed to get book")
		}
	}

	return response.Success(c, "Book retrieved successfully", fiber.Map{
		"book": book,
	})
}

// Add adds a book to the catalog (admin only)
// @Summary Add book
// @Description Add a new book to the catalog
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddBookRequest true "Book data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/books [post]
func (h *BookHandler) Add(c *fiber.Ctx) error {
	var req AddBookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Title == "" {
		return response.BadRequest(c, "Title is required")
	}
	if req.Author == "" {
		return response.BadRequest(c, "Author is required")
	}
	if req.DigitalLink == "" {
		return response.BadRequest(c, "Digital link is required")
	}

	input := &services.AddBookInput{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		DigitalLink: req.DigitalLink,
	}

	book, err := h.catalogService.Add(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateISBN):
			return response.Conflict(c, "A book with this ISBN already exists")
		default:
			return response.InternalServerError(c, "Failed to add book")
		}
	}

	return response.Created(c, "Book added successfully", fiber.Map{
		"book": book,
	})
}

// Delete removes a book from the catalog (admin only)
// @Summary Delete book
// @Description Remove a book from the catalog; blocked while the book is on loan
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/books/{id} [delete]
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	if err := h.catalogService.Remove(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, services.ErrBookHasActiveLoans):
			return response.Conflict(c, "Book cannot be deleted while it is on loan")
		default:
			return response.InternalServerError(c, "Failed to delete book")
		}
	}

	return response.Success(c, "Book deleted successfully", nil)
}
