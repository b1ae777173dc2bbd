package services

import (
	"context"
	"errors"
	"log"
	"time"

	"elibrary-backend/internal/adapters/persistence/models"
	"elibrary-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// LoanPeriod is how long a borrowed book is held before it is due back.
const LoanPeriod = 14 * 24 * time.Hour

// Borrowing workflow errors
var (
	ErrBookUnavailable   = errors.New("book is not available")
	ErrAlreadyBorrowed   = errors.New("book already borrowed by this user")
	ErrLoanNotFound      = errors.New("loan not found")
	ErrNotLoanOwner      = errors.New("loan belongs to another user")
	ErrLoanAlreadyClosed = errors.New("loan already closed")
)

// BorrowService implements the borrow/return workflow. Each operation runs
// as a single database transaction: the borrow record and the book's
// availability flag always change together or not at all.
type BorrowService struct {
	db         *gorm.DB
	bookRepo   repositories.BookRepository
	borrowRepo repositories.BorrowRepository
}

// NewBorrowService creates a new borrow service
func NewBorrowService(
	db *gorm.DB,
	bookRepo repositories.BookRepository,
	borrowRepo repositories.BorrowRepository,
) *BorrowService {
	return &BorrowService{
		db:         db,
		bookRepo:   bookRepo,
		borrowRepo: borrowRepo,
	}
}

// Borrow checks a book out to a user and opens the loan record.
func (s *BorrowService) Borrow(ctx context.Context, userID, bookID uint) (*models.BorrowRecord, error) {
	var record *models.BorrowRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookRepo := s.bookRepo.WithTx(tx)
		borrowRepo := s.borrowRepo.WithTx(tx)

		// 1. Load book
		book, err := bookRepo.GetByID(ctx, bookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		// 2. Availability check
		if !book.Available {
			return ErrBookUnavailable
		}

		// 3. Guard against a stale availability flag: the loan ledger is the
		//    system of record
		active, err := borrowRepo.FindActive(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrAlreadyBorrowed
		}

		// 4. Claim the copy. Zero affected rows means a concurrent borrower
		//    got there first.
		rows, err := bookRepo.MarkBorrowed(ctx, bookID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrBookUnavailable
		}

		// 5. Open the loan
		now := time.Now()
		record = &models.BorrowRecord{
			UserID:     userID,
			BookID:     bookID,
			BorrowDate: now,
			DueDate:    now.Add(LoanPeriod),
			IsActive:   true,
		}
		return borrowRepo.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Book borrowed: book %d by user %d (loan %d)", bookID, userID, record.ID)
	return record, nil
}

// Return closes a loan and makes the book available again. Only the user
// who opened the loan may return it.
func (s *BorrowService) Return(ctx context.Context, loanID, callerUserID uint) (*models.BorrowRecord, error) {
	var record *models.BorrowRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookRepo := s.bookRepo.WithTx(tx)
		borrowRepo := s.borrowRepo.WithTx(tx)

		// 1. Load loan
		loan, err := borrowRepo.GetByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return err
		}

		// 2. Ownership check
		if loan.UserID != callerUserID {
			return ErrNotLoanOwner
		}

		// 3. State check
		if !loan.IsActive {
			return ErrLoanAlreadyClosed
		}

		// 4. Close the loan; the is_active guard catches a racing return
		now := time.Now()
		rows, err := borrowRepo.Close(ctx, loan.ID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrLoanAlreadyClosed
		}

		// 5. Restore availability
		if _, err := bookRepo.MarkReturned(ctx, loan.BookID); err != nil {
			return err
		}

		loan.IsActive = false
		loan.ReturnDate = &now
		record = loan
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Book returned: loan %d by user %d", loanID, callerUserID)
	return record, nil
}

// ListMyLoans lists the caller's active loans with book details
func (s *BorrowService) ListMyLoans(ctx context.Context, userID uint) ([]*models.BorrowRecord, error) {
	return s.borrowRepo.ListActiveByUser(ctx, userID)
}

// ListActiveLoans lists all active loans (admin view)
func (s *BorrowService) ListActiveLoans(ctx context.Context) ([]*models.BorrowRecord, error) {
	return s.borrowRepo.ListActive(ctx)
}

// ListOverdueLoans lists active loans past their due date (admin view)
func (s *BorrowService) ListOverdueLoans(ctx context.Context) ([]*models.BorrowRecord, error) {
	return s.borrowRepo.ListOverdue(ctx, time.Now())
}
