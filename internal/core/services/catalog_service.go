package services

import (
	"context"
	"errors"
	"log"

	"elibrary-backend/internal/adapters/persistence/models"
	"elibrary-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Catalog errors
var (
	ErrBookNotFound       = errors.New("book not found")
	ErrDuplicateISBN      = errors.New("isbn already exists")
	ErrBookHasActiveLoans = errors.New("book has active loans")
)

// CatalogService handles book catalog management
type CatalogService struct {
	db         *gorm.DB
	bookRepo   repositories.BookRepository
	borrowRepo repositories.BorrowRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	db *gorm.DB,
	bookRepo repositories.BookRepository,
	borrowRepo repositories.BorrowRepository,
) *CatalogService {
	return &CatalogService{
		db:         db,
		bookRepo:   bookRepo,
		borrowRepo: borrowRepo,
	}
}

// AddBookInput represents add book input
type AddBookInput struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	ISBN        string `json:"isbn,omitempty"`
	DigitalLink string `json:"digital_link" validate:"required"`
}

// ListAvailable lists books that can currently be borrowed (the dashboard view)
func (s *CatalogService) ListAvailable(ctx context.Context) ([]*models.Book, error) {
	return s.bookRepo.ListAvailable(ctx)
}

// ListAll lists the full catalog (admin view)
func (s *CatalogService) ListAll(ctx context.Context) ([]*models.Book, error) {
	return s.bookRepo.List(ctx)
}

// Get gets a book by ID
func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// Add adds a new book to the catalog. Titles and authors may repeat freely;
// the ISBN, when given, must be unique.
func (s *CatalogService) Add(ctx context.Context, input *AddBookInput) (*models.Book, error) {
	book := &models.Book{
		Title:       input.Title,
		Author:      input.Author,
		DigitalLink: input.DigitalLink,
		Available:   true,
	}

	if input.ISBN != "" {
		exists, err := s.bookRepo.ExistsByISBN(ctx, input.ISBN)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateISBN
		}
		isbn := input.ISBN
		book.ISBN = &isbn
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		// A concurrent add can slip past the existence check; the unique
		// index on isbn is the final arbiter
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateISBN
		}
		return nil, err
	}

	log.Printf("✅ Book added to catalog: %q by %s (ID: %d)", book.Title, book.Author, book.ID)
	return book, nil
}

// Remove deletes a book from the catalog. The active-loan check and the
// delete run in one transaction so a borrow committed in between cannot
// orphan a loan record.
func (s *CatalogService) Remove(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookRepo := s.bookRepo.WithTx(tx)
		borrowRepo := s.borrowRepo.WithTx(tx)

		if _, err := bookRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		active, err := borrowRepo.CountActiveByBook(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrBookHasActiveLoans
		}

		return bookRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Printf("✅ Book removed from catalog (ID: %d)", id)
	return nil
}
