package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"elibrary-backend/internal/adapters/persistence/models"
	"elibrary-backend/internal/adapters/persistence/repositories"
	"elibrary-backend/internal/config"
	"elibrary-backend/internal/core/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database. A single pooled connection
// keeps concurrent transactions serialized the way the production store's
// isolation does.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		Port:    "3000",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Cookie: config.CookieConfig{SameSite: "lax"},
	}
}

// newLendingFixture wires the catalog and borrowing services over one database
func newLendingFixture(t *testing.T) (*gorm.DB, *services.CatalogService, *services.BorrowService) {
	t.Helper()

	db := newTestDB(t)
	bookRepo := repositories.NewBookRepository(db)
	borrowRepo := repositories.NewBorrowRepository(db)

	catalog := services.NewCatalogService(db, bookRepo, borrowRepo)
	borrow := services.NewBorrowService(db, bookRepo, borrowRepo)
	return db, catalog, borrow
}

// createUser inserts a user directly; the stored hash is irrelevant for
// lending tests
func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func addBook(t *testing.T, catalog *services.CatalogService, title, isbn string) *models.Book {
	t.Helper()

	book, err := catalog.Add(context.Background(), &services.AddBookInput{
		Title:       title,
		Author:      "Test Author",
		ISBN:        isbn,
		DigitalLink: "https://files.example.edu/" + uuid.NewString(),
	})
	require.NoError(t, err)
	return book
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// requireAvailabilityInvariant asserts that available == false exactly when
// an active loan references the book
func requireAvailabilityInvariant(t *testing.T, db *gorm.DB) {
	t.Helper()

	var books []*models.Book
	require.NoError(t, db.Find(&books).Error)

	for _, book := range books {
		var active int64
		require.NoError(t, db.Model(&models.BorrowRecord{}).
			Where("book_id = ?", book.ID).
			Where("is_active = ?", true).
			Count(&active).Error)

		if book.Available {
			require.Zero(t, active, "book %d is available but has %d active loan(s)", book.ID, active)
		} else {
			require.Equal(t, int64(1), active, "book %d is unavailable but has %d active loan(s)", book.ID, active)
		}
	}
}
