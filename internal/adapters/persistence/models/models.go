package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth tables
// ============================================================

// User represents users table
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table.
// A row is the durable session record: created at login, revoked at logout.
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Catalog & lending tables
// ============================================================

// Book represents books table.
// Available is a cache of "no active borrow record references this book";
// it is only ever written inside the same transaction as the borrow record.
type Book struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:120;not null" json:"title"`
	Author      string         `gorm:"size:100;not null" json:"author"`
	ISBN        *string        `gorm:"column:isbn;size:20;uniqueIndex" json:"isbn"`
	DigitalLink string         `gorm:"size:500;not null" json:"digital_link"`
	Available   bool           `gorm:"default:true" json:"available"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// BorrowRecord represents borrow_records table
type BorrowRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	BookID     uint       `gorm:"index;not null" json:"book_id"`
	BorrowDate time.Time  `gorm:"not null" json:"borrow_date"`
	DueDate    time.Time  `gorm:"not null" json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
	IsActive   bool       `gorm:"default:true;index" json:"is_active"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (BorrowRecord) TableName() string {
	return "borrow_records"
}

// IsOverdue reports whether an active loan has passed its due date.
func (br *BorrowRecord) IsOverdue(now time.Time) bool {
	return br.IsActive && now.After(br.DueDate)
}

// BorrowRecordResponse DTO
type BorrowRecordResponse struct {
	ID          uint       `json:"id"`
	BookID      uint       `json:"book_id"`
	BookTitle   string     `json:"book_title,omitempty"`
	BookAuthor  string     `json:"book_author,omitempty"`
	DigitalLink string     `json:"digital_link,omitempty"`
	Username    string     `json:"username,omitempty"`
	BorrowDate  time.Time  `json:"borrow_date"`
	DueDate     time.Time  `json:"due_date"`
	ReturnDate  *time.Time `json:"return_date"`
	IsActive    bool       `json:"is_active"`
	Overdue     bool       `json:"overdue"`
}

func (br *BorrowRecord) ToResponse() *BorrowRecordResponse {
	resp := &BorrowRecordResponse{
		ID:         br.ID,
		BookID:     br.BookID,
		BorrowDate: br.BorrowDate,
		DueDate:    br.DueDate,
		ReturnDate: br.ReturnDate,
		IsActive:   br.IsActive,
		Overdue:    br.IsOverdue(time.Now()),
	}

	if br.Book != nil {
		resp.BookTitle = br.Book.Title
		resp.BookAuthor = br.Book.Author
		resp.DigitalLink = br.Book.DigitalLink
	}
	if br.User != nil {
		resp.Username = br.User.Username
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Book{},
		&BorrowRecord{},
	)
}
