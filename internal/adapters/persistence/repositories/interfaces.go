package repositories

import (
	"context"
	"time"

	"elibrary-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	CountAdmins(ctx context.Context) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// BookRepository defines catalog repository interface.
// WithTx returns a copy bound to the given transaction so the borrowing
// workflow can keep availability writes and loan writes in one unit of work.
type BookRepository interface {
	WithTx(tx *gorm.DB) BookRepository
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	List(ctx context.Context) ([]*models.Book, error)
	ListAvailable(ctx context.Context) ([]*models.Book, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	Delete(ctx context.Context, id uint) error
	// MarkBorrowed flips available to false only if it is currently true and
	// reports how many rows changed. Zero rows means the book was taken by a
	// concurrent borrower.
	MarkBorrowed(ctx context.Context, id uint) (int64, error)
	MarkReturned(ctx context.Context, id uint) (int64, error)
}

// BorrowRepository defines the loan ledger interface
type BorrowRepository interface {
	WithTx(tx *gorm.DB) BorrowRepository
	Create(ctx context.Context, record *models.BorrowRecord) error
	GetByID(ctx context.Context, id uint) (*models.BorrowRecord, error)
	FindActive(ctx context.Context, userID, bookID uint) (*models.BorrowRecord, error)
	ListActiveByUser(ctx context.Context, userID uint) ([]*models.BorrowRecord, error)
	ListActive(ctx context.Context) ([]*models.BorrowRecord, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*models.BorrowRecord, error)
	CountActiveByBook(ctx context.Context, bookID uint) (int64, error)
	// Close marks the record returned only if it is still active and reports
	// how many rows changed.
	Close(ctx context.Context, id uint, returnedAt time.Time) (int64, error)
}
