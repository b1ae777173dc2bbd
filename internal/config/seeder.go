package config

import (
	"context"
	"log"

	"elibrary-backend/internal/adapters/persistence/models"
	"elibrary-backend/internal/adapters/persistence/repositories"
	"elibrary-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// Default admin credentials, created only when no admin exists yet.
// Development convenience, not a security feature: change the password
// immediately on any real deployment.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "adminpass"
)

// Seeder handles database seeding
type Seeder struct {
	userRepo repositories.UserRepository
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		userRepo: repositories.NewUserRepository(db),
	}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(context.Background()); err != nil {
		return err
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser bootstraps the well-known admin account on first startup
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	count, err := s.userRepo.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash(DefaultAdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: DefaultAdminUsername,
		Password: hashedPassword,
		IsAdmin:  true,
	}

	if err := s.userRepo.Create(ctx, admin); err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	log.Println("⚠️ Admin account uses the default password - change it before going to production")
	return nil
}
