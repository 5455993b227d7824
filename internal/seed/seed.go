package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/app/repositories"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
	"github.com/dkaradag/tamatch/internal/pkg/auth"
)

const (
	defaultAdminEmail    = "admin@tamatch.app"
	defaultAdminUNI      = "adm0001"
	defaultAdminPassword = "ChangeMe123!"
)

// CreateDefaultData provisions the default admin account on first start.
// Courses arrive through the CSV import, so nothing else is seeded.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := repositories.NewUserRepository(dbPool)

	_, err := userRepo.GetByEmail(ctx, defaultAdminEmail)
	if err == nil {
		lgr.Debug().Msg("Admin account already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	lgr.Info().Msg("Creating default admin account...")

	hashedPassword, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:    defaultAdminEmail,
		UNI:      defaultAdminUNI,
		Password: hashedPassword,
		RoleType: models.RoleAdmin,
		IsActive: true,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		// Lost a race against a concurrent instance, that's fine
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) || errors.Is(err, apperrors.ErrUNIAlreadyExists) {
			return nil
		}
		return err
	}

	lgr.Info().Int64("adminId", admin.ID).Msg("Default admin account created, change its password")
	return nil
}
