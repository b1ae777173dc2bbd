package repositories

import (
	"context"

	"elibrary-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// bookRepository implements BookRepository interface
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// WithTx returns a book repository bound to the given transaction
func (r *bookRepository) WithTx(tx *gorm.DB) BookRepository {
	return &bookRepository{db: tx}
}

// Create creates a new book
func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID gets a book by ID
func (r *bookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List lists all books
func (r *bookRepository) List(ctx context.Context) ([]*models.Book, error) {
	var books []*models.Book
	err := r.db.WithContext(ctx).Order("id").Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

// ListAvailable lists books that can currently be borrowed
func (r *bookRepository) ListAvailable(ctx context.Context) ([]*models.Book, error) {
	var books []*models.Book
	err := r.db.WithContext(ctx).Where("available = ?", true).Order("id").Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

// ExistsByISBN checks if a book with the given ISBN exists
func (r *bookRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Book{}).Where("isbn = ?", isbn).Count(&count).Error
	return count > 0, err
}

// Delete soft deletes a book. The ISBN is released first: the unique index
// only governs live rows, so a future copy can reuse it.
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Update("isbn", nil).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Book{}, id).Error
}

// MarkBorrowed flips availability off. The WHERE guard on the current value
// makes the write a compare-and-set: under concurrent borrows of the same
// copy, exactly one caller sees one affected row.
func (r *bookRepository) MarkBorrowed(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Where("available = ?", true).
		Update("available", false)
	return res.RowsAffected, res.Error
}

// MarkReturned flips availability back on
func (r *bookRepository) MarkReturned(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Where("available = ?", false).
		Update("available", true)
	return res.RowsAffected, res.Error
}
