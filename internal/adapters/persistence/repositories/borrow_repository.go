package repositories

import (
	"context"
	"errors"
	"time"

	"elibrary-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// borrowRepository implements BorrowRepository interface
type borrowRepository struct {
	db *gorm.DB
}

// NewBorrowRepository creates a new borrow record repository
func NewBorrowRepository(db *gorm.DB) BorrowRepository {
	return &borrowRepository{db: db}
}

// WithTx returns a borrow repository bound to the given transaction
func (r *borrowRepository) WithTx(tx *gorm.DB) BorrowRepository {
	return &borrowRepository{db: tx}
}

// Create creates a new borrow record
func (r *borrowRepository) Create(ctx context.Context, record *models.BorrowRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID gets a borrow record by ID
func (r *borrowRepository) GetByID(ctx context.Context, id uint) (*models.BorrowRecord, error) {
	var record models.BorrowRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindActive finds the active loan for a (user, book) pair, nil if none
func (r *borrowRepository) FindActive(ctx context.Context, userID, bookID uint) (*models.BorrowRecord, error) {
	var record models.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("book_id = ?", bookID).
		Where("is_active = ?", true).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListActiveByUser lists a user's active loans with their books
func (r *borrowRepository) ListActiveByUser(ctx context.Context, userID uint) ([]*models.BorrowRecord, error) {
	var records []*models.BorrowRecord
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Where("is_active = ?", true).
		Order("borrow_date").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListActive lists all active loans (admin view)
func (r *borrowRepository) ListActive(ctx context.Context) ([]*models.BorrowRecord, error) {
	var records []*models.BorrowRecord
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("User").
		Where("is_active = ?", true).
		Order("borrow_date").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListOverdue lists active loans past their due date
func (r *borrowRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*models.BorrowRecord, error) {
	var records []*models.BorrowRecord
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("User").
		Where("is_active = ?", true).
		Where("due_date < ?", asOf).
		Order("due_date").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// CountActiveByBook counts active loans referencing a book
func (r *borrowRepository) CountActiveByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("book_id = ?", bookID).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

// Close marks a loan returned. The is_active guard makes a double return a
// zero-row update rather than a second state change.
func (r *borrowRepository) Close(ctx context.Context, id uint, returnedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("id = ?", id).
		Where("is_active = ?", true).
		Updates(map[string]interface{}{
			"is_active":   false,
			"return_date": returnedAt,
		})
	return res.RowsAffected, res.Error
}
