package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/dkaradag/tamatch/internal/app/controllers"
	appMigrations "github.com/dkaradag/tamatch/internal/app/migrations"
	appRepos "github.com/dkaradag/tamatch/internal/app/repositories"
	appRoutes "github.com/dkaradag/tamatch/internal/app/routes"
	appServices "github.com/dkaradag/tamatch/internal/app/services"
	"github.com/dkaradag/tamatch/internal/config"
	"github.com/dkaradag/tamatch/internal/db"
	appMiddleware "github.com/dkaradag/tamatch/internal/middleware"
	pkgAuth "github.com/dkaradag/tamatch/internal/pkg/auth"
	"github.com/dkaradag/tamatch/internal/pkg/helpers"
	"github.com/dkaradag/tamatch/internal/pkg/logger"
	"github.com/dkaradag/tamatch/internal/pkg/matchengine"
	"github.com/dkaradag/tamatch/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos *appRepos.Repositories

	JWTService *pkgAuth.JWTService

	AuthService       *appServices.AuthService
	StudentService    *appServices.StudentService
	CourseService     *appServices.CourseService
	PreferenceService *appServices.PreferenceService
	LedgerService     *appServices.LedgerService
	MatchingService   *appServices.MatchingService
	AssignmentService *appServices.AssignmentService
	FeedbackService   *appServices.FeedbackService

	AuthController       *appControllers.AuthController
	StudentController    *appControllers.StudentController
	PreferenceController *appControllers.PreferenceController
	CourseController     *appControllers.CourseController
	ProfessorController  *appControllers.ProfessorController
	FeedbackController   *appControllers.FeedbackController
	AdminController      *appControllers.AdminController

	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to seed default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		lgr,
	)
	deps.StudentService = appServices.NewStudentService(deps.Repos.StudentRepository, lgr)
	deps.LedgerService = appServices.NewLedgerService(database, deps.Repos.AssignmentRepository, lgr)
	deps.CourseService = appServices.NewCourseService(deps.Repos.CourseRepository, deps.LedgerService, lgr)
	deps.PreferenceService = appServices.NewPreferenceService(
		deps.Repos.PreferenceRepository,
		deps.Repos.StudentRepository,
		deps.Repos.CourseRepository,
		deps.Repos.AssignmentRepository,
		database,
		lgr,
	)
	deps.MatchingService = appServices.NewMatchingService(
		deps.Repos.StudentRepository,
		deps.Repos.CourseRepository,
		deps.Repos.PreferenceRepository,
		deps.Repos.AssignmentRepository,
		deps.LedgerService,
		matchengine.Weights{
			Rank:    cfg.Matching.RankWeight,
			Track:   cfg.Matching.TrackWeight,
			Profile: cfg.Matching.ProfileWeight,
		},
		lgr,
	)
	deps.AssignmentService = appServices.NewAssignmentService(
		deps.Repos.AssignmentRepository,
		deps.Repos.PreferenceRepository,
		deps.Repos.StudentRepository,
		deps.Repos.CourseRepository,
		deps.LedgerService,
		lgr,
	)
	deps.FeedbackService = appServices.NewFeedbackService(
		deps.Repos.FeedbackRepository,
		deps.Repos.AssignmentRepository,
		deps.Repos.CourseRepository,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.PreferenceController = appControllers.NewPreferenceController(deps.PreferenceService)
	deps.CourseController = appControllers.NewCourseController(deps.CourseService)
	deps.ProfessorController = appControllers.NewProfessorController(
		deps.CourseService,
		deps.PreferenceService,
		deps.AssignmentService,
		deps.StudentService,
	)
	deps.FeedbackController = appControllers.NewFeedbackController(deps.FeedbackService)
	deps.AdminController = appControllers.NewAdminController(
		deps.MatchingService,
		deps.AssignmentService,
		deps.StudentService,
		deps.AuthService,
	)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.StudentController,
		deps.PreferenceController,
		deps.CourseController,
		deps.ProfessorController,
		deps.FeedbackController,
		deps.AdminController,
		deps.AuthMiddleware,
	)

	return router
}
