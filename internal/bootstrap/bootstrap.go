package bootstrap

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuskit/coursedesk/internal/auth"
	"github.com/campuskit/coursedesk/internal/config"
	"github.com/campuskit/coursedesk/internal/domain"
	"github.com/campuskit/coursedesk/internal/repository"
)

const (
	markInitialAdmin = "initial-admin"
	markSampleData   = "sample-data"
)

// Dependencies bundles the repositories the seeding steps write through.
type Dependencies struct {
	Marks   repository.BootstrapMarkRepository
	Users   repository.UserRepository
	Courses repository.CourseRepository
}

// Run performs idempotent startup seeding. Every step claims a marker row
// first, so a restarted or concurrently started instance never seeds twice.
func Run(ctx context.Context, cfg config.Config, deps Dependencies, logger *zap.Logger) error {
	if err := ensureInitialAdmin(ctx, cfg, deps, logger); err != nil {
		return err
	}
	if cfg.Bootstrap.SeedSampleData {
		if err := seedSampleData(ctx, cfg, deps, logger); err != nil {
			return err
		}
	}
	return nil
}

func ensureInitialAdmin(ctx context.Context, cfg config.Config, deps Dependencies, logger *zap.Logger) error {
	if cfg.Bootstrap.AdminEmail == "" || cfg.Bootstrap.AdminPassword == "" {
		logger.Warn("no initial admin configured, skipping")
		return nil
	}

	claimed, err := deps.Marks.Claim(ctx, markInitialAdmin)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	hash, err := auth.HashPassword(cfg.Bootstrap.AdminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Name:         cfg.Bootstrap.AdminName,
		Email:        cfg.Bootstrap.AdminEmail,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
	}
	if err := deps.Users.Create(ctx, admin); err != nil {
		return err
	}
	logger.Info("created initial admin", zap.String("email", admin.Email))
	return nil
}

// seedSampleData populates a small working set for local development: one
// author, one tutor, one student and a course wired to them. Accounts are
// created inactive and must be activated through the regular flow.
func seedSampleData(ctx context.Context, cfg config.Config, deps Dependencies, logger *zap.Logger) error {
	claimed, err := deps.Marks.Claim(ctx, markSampleData)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	users := []*domain.User{
		{Name: "Sample Author", Email: "author@example.org", Role: domain.RoleAuthor},
		{Name: "Sample Tutor", Email: "tutor@example.org", Role: domain.RoleTutor},
		{Name: "Sample Student", Email: "student@example.org", Role: domain.RoleStudent},
	}
	for _, user := range users {
		user.ActivationCode = uuid.NewString()
		if err := deps.Users.Create(ctx, user); err != nil {
			return err
		}
	}

	course := &domain.Course{
		Code:     "GO101",
		Title:    "Introduction to Programming",
		AuthorID: users[0].ID,
		TutorID:  users[1].ID,
		Active:   true,
	}
	if err := deps.Courses.Create(ctx, course); err != nil {
		return err
	}
	logger.Info("seeded sample data", zap.String("course", course.Code))
	return nil
}
