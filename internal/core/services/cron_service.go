package services

import (
	"context"
	"log"
	"time"

	"elibrary-backend/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs the daily overdue-loan report
type CronService struct {
	cron             *cron.Cron
	borrowRepo       repositories.BorrowRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service
func NewCronService(
	borrowRepo repositories.BorrowRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *CronService {
	return &CronService{
		cron:             cron.New(),
		borrowRepo:       borrowRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// Start schedules the jobs and starts the scheduler
func (s *CronService) Start() {
	// Overdue report at 08:30 daily
	_, err := s.cron.AddFunc("30 8 * * *", s.ReportOverdueLoans)
	if err != nil {
		log.Printf("⚠️ Failed to schedule overdue report: %v", err)
	}

	// Expired session cleanup at 03:00 daily
	_, err = s.cron.AddFunc("0 3 * * *", s.CleanupExpiredSessions)
	if err != nil {
		log.Printf("⚠️ Failed to schedule session cleanup: %v", err)
	}

	s.cron.Start()
	log.Println("✅ Cron service started")
}

// Stop stops the scheduler
func (s *CronService) Stop() {
	s.cron.Stop()
	log.Println("🛑 Cron service stopped")
}

// ReportOverdueLoans logs every active loan past its due date
func (s *CronService) ReportOverdueLoans() {
	ctx := context.Background()

	loans, err := s.borrowRepo.ListOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("⚠️ Overdue report failed: %v", err)
		return
	}

	if len(loans) == 0 {
		log.Println("✅ Overdue report: no overdue loans")
		return
	}

	log.Printf("⚠️ Overdue report: %d loan(s) past due", len(loans))
	for _, loan := range loans {
		title := ""
		username := ""
		if loan.Book != nil {
			title = loan.Book.Title
		}
		if loan.User != nil {
			username = loan.User.Username
		}
		log.Printf("   loan %d: %q held by %s, due %s",
			loan.ID, title, username, loan.DueDate.Format("2006-01-02"))
	}
}

// CleanupExpiredSessions deletes expired refresh tokens
func (s *CronService) CleanupExpiredSessions() {
	if err := s.refreshTokenRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("⚠️ Session cleanup failed: %v", err)
		return
	}
	log.Println("✅ Expired sessions cleaned up")
}
