package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"elibrary-backend/internal/adapters/http/middleware"
	"elibrary-backend/internal/adapters/http/routes"
	"elibrary-backend/internal/adapters/persistence/models"
	"elibrary-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp wires the full HTTP stack over an in-memory database
func newTestApp(t *testing.T) *fiber.App {
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
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
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
	config.AppConfig = cfg

	require.NoError(t, config.NewSeeder(db).Run())

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.CustomErrorHandler,
	})
	middleware.Setup(app, cfg)
	routes.Setup(app, db, cfg)
	return app
}

type apiResponse struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message"`
	Data    map[string]json.RawMessage `json:"data"`
	Error   string                     `json:"error"`
}

// doJSON issues a request against the app with the given session cookies
func doJSON(t *testing.T, app *fiber.App, method, path string, body any, cookies []*http.Cookie) (*http.Response, *apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, 10000)
	require.NoError(t, err)

	parsed := &apiResponse{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, parsed)
	}
	return resp, parsed
}

func login(t *testing.T, app *fiber.App, username, pass string) []*http.Cookie {
	t.Helper()

	resp, parsed := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", fiber.Map{
		"username": username,
		"password": pass,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "login failed: %s", parsed.Error)
	require.True(t, parsed.Success)

	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func unmarshalData[T any](t *testing.T, parsed *apiResponse, key string) T {
	t.Helper()

	var out T
	raw, ok := parsed.Data[key]
	require.True(t, ok, "response data missing %q", key)
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestLendingFlowEndToEnd(t *testing.T) {
	app := newTestApp(t)

	// Registration redirects the reader to login, no session yet
	resp, parsed := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", fiber.Map{
		"username": "alice",
		"password": "s3cret-pass",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, parsed.Success)
	require.Empty(t, resp.Cookies())

	alice := login(t, app, "alice", "s3cret-pass")
	admin := login(t, app, config.DefaultAdminUsername, config.DefaultAdminPassword)

	// Admin stocks the catalog
	resp, parsed = doJSON(t, app, http.MethodPost, "/api/v1/admin/books", fiber.Map{
		"title":        "The Go Programming Language",
		"author":       "Donovan and Kernighan",
		"isbn":         "9780134190440",
		"digital_link": "https://files.example.edu/gopl.pdf",
	}, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	book := unmarshalData[models.Book](t, parsed, "book")
	require.NotZero(t, book.ID)

	// The reader sees it on the dashboard
	resp, parsed = doJSON(t, app, http.MethodGet, "/api/v1/books", nil, alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	books := unmarshalData[[]models.Book](t, parsed, "books")
	require.Len(t, books, 1)

	// Borrow it
	resp, parsed = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/books/%d/borrow", book.ID), nil, alice)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	loan := unmarshalData[models.BorrowRecordResponse](t, parsed, "loan")
	require.True(t, loan.IsActive)
	require.Equal(t, book.ID, loan.BookID)

	// Borrowed books drop off the dashboard
	resp, parsed = doJSON(t, app, http.MethodGet, "/api/v1/books", nil, alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	books = unmarshalData[[]models.Book](t, parsed, "books")
	require.Empty(t, books)

	// And show up under the reader's loans with the download link
	resp, parsed = doJSON(t, app, http.MethodGet, "/api/v1/loans/my", nil, alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loans := unmarshalData[[]models.BorrowRecordResponse](t, parsed, "loans")
	require.Len(t, loans, 1)
	require.Equal(t, "The Go Programming Language", loans[0].BookTitle)
	require.NotEmpty(t, loans[0].DigitalLink)

	// The admin panel shows the full catalog and the active loan
	resp, parsed = doJSON(t, app, http.MethodGet, "/api/v1/admin/panel", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	panelBooks := unmarshalData[[]models.Book](t, parsed, "books")
	require.Len(t, panelBooks, 1)
	activeLoans := unmarshalData[[]models.BorrowRecordResponse](t, parsed, "active_loans")
	require.Len(t, activeLoans, 1)
	require.Equal(t, "alice", activeLoans[0].Username)

	// Nothing is overdue on a fresh loan
	resp, parsed = doJSON(t, app, http.MethodGet, "/api/v1/admin/loans/overdue", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	overdue := unmarshalData[[]models.BorrowRecordResponse](t, parsed, "loans")
	require.Empty(t, overdue)

	// Deleting a book that is on loan is blocked
	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/admin/books/%d", book.ID), nil, admin)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Return it
	resp, parsed = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/loans/%d/return", loan.ID), nil, alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	returned := unmarshalData[models.BorrowRecordResponse](t, parsed, "loan")
	require.False(t, returned.IsActive)
	require.NotNil(t, returned.ReturnDate)

	// Returning twice is rejected
	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/loans/%d/return", loan.ID), nil, alice)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// The book is back on the dashboard
	resp, parsed = doJSON(t, app, http.MethodGet, "/api/v1/books", nil, alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	books = unmarshalData[[]models.Book](t, parsed, "books")
	require.Len(t, books, 1)
}

func TestAdminRoutesForbiddenForReaders(t *testing.T) {
	app := newTestApp(t)

	resp, parsed := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", fiber.Map{
		"username": "bob",
		"password": "s3cret-pass",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register failed: %s", parsed.Error)

	bob := login(t, app, "bob", "s3cret-pass")

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/admin/panel"},
		{http.MethodGet, "/api/v1/admin/loans/overdue"},
		{http.MethodPost, "/api/v1/admin/books"},
		{http.MethodDelete, "/api/v1/admin/books/1"},
	} {
		resp, _ := doJSON(t, app, route.method, route.path, nil, bob)
		require.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s", route.method, route.path)
	}
}

func TestRoutesRequireAuthentication(t *testing.T) {
	app := newTestApp(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/books"},
		{http.MethodGet, "/api/v1/loans/my"},
		{http.MethodPost, "/api/v1/books/1/borrow"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/admin/panel"},
	} {
		resp, _ := doJSON(t, app, route.method, route.path, nil, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	admin := login(t, app, config.DefaultAdminUsername, config.DefaultAdminPassword)

	// The session cookie authenticates /auth/me
	resp, parsed := doJSON(t, app, http.MethodGet, "/api/v1/auth/me", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := unmarshalData[models.UserResponse](t, parsed, "user")
	require.Equal(t, config.DefaultAdminUsername, user.Username)
	require.True(t, user.IsAdmin)

	// Refresh rotates the pair and keeps the session alive
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := resp.Cookies()
	require.NotEmpty(t, rotated)

	// The pre-rotation refresh token is dead
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", nil, admin)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Logout destroys the rotated session
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", nil, rotated)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", nil, rotated)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRootAndHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
