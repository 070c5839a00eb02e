package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/coursebot/internal/app/controllers"
	"github.com/yigit/coursebot/internal/app/intents"
	appRepos "github.com/yigit/coursebot/internal/app/repositories"
	appRoutes "github.com/yigit/coursebot/internal/app/routes"
	appServices "github.com/yigit/coursebot/internal/app/services"
	"github.com/yigit/coursebot/internal/config"
	"github.com/yigit/coursebot/internal/db"
	appMiddleware "github.com/yigit/coursebot/internal/middleware"
	"github.com/yigit/coursebot/internal/pkg/helpers"
	"github.com/yigit/coursebot/internal/pkg/logger"
	"github.com/yigit/coursebot/internal/seed"
)

const defaultRequestTimeout = 5 * time.Second

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos               *appRepos.Repositories
	RegistrationService appServices.RegistrationService
	Dispatcher          *intents.Dispatcher
	LexController       *appControllers.LexController
	CourseController    *appControllers.CourseController
	Logger              zerolog.Logger
}

// Store is an opened record store together with the function releasing it
type Store struct {
	Repos *appRepos.Repositories
	Close func() error
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the record store selected by database.driver
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		lgr.Info().Str("host", cfg.Database.Host).Msg("Establishing database connection...")
		pool, err := db.NewPostgresPool(ctx, cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}
		lgr.Info().Msg("Database connection successfully established.")
		return &Store{
			Repos: appRepos.NewRepositories(pool),
			Close: func() error {
				pool.Close()
				return nil
			},
		}, nil

	case config.DriverBadger:
		lgr.Info().Str("path", cfg.Database.BadgerPath).Bool("inMemory", cfg.Database.InMemory).Msg("Opening embedded store...")
		database, err := db.NewBadgerDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to open embedded store")
			return nil, err
		}
		repos := appRepos.NewBadgerRepositories(database, cfg.Dispatcher.StoreRetryAttempts)
		if cfg.Database.SeedFile != "" {
			if err := loadCatalogue(ctx, cfg.Database.SeedFile, repos, lgr); err != nil {
				_ = database.Close()
				return nil, err
			}
		}
		return &Store{
			Repos: repos,
			Close: database.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// loadCatalogue adds the courses of the seed file that the embedded store lacks.
func loadCatalogue(ctx context.Context, path string, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	adder, ok := repos.Courses.(seed.CourseAdder)
	if !ok {
		return fmt.Errorf("course store %T cannot load a seed file", repos.Courses)
	}

	courses, err := seed.LoadCourseFile(path)
	if err != nil {
		lgr.Error().Err(err).Str("seedFile", path).Msg("Failed to read course catalogue")
		return err
	}
	if _, err := seed.CreateCourses(ctx, adder, courses, lgr); err != nil {
		return fmt.Errorf("failed to load course catalogue: %w", err)
	}
	return nil
}

// BuildDependencies initializes the service, the dispatcher and the controllers.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{
		Repos:  repos,
		Logger: lgr,
	}

	deps.RegistrationService = appServices.NewRegistrationService(repos.Courses, repos.Registrations, lgr)
	deps.Dispatcher = intents.NewDispatcher(deps.RegistrationService, lgr)

	requestTimeout := helpers.ParseDuration(cfg.Dispatcher.RequestTimeout, defaultRequestTimeout)
	deps.LexController = appControllers.NewLexController(deps.Dispatcher, requestTimeout, lgr)
	deps.CourseController = appControllers.NewCourseController(deps.RegistrationService)

	return deps
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

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router, deps.LexController, deps.CourseController)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
