package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/stoicjournal/stoic/internal/config"
	"github.com/stoicjournal/stoic/internal/db"
	"github.com/stoicjournal/stoic/internal/llm"
	"github.com/stoicjournal/stoic/internal/repository"
	"github.com/stoicjournal/stoic/internal/service"
	"github.com/stoicjournal/stoic/internal/storage"
)

type App struct {
	Cfg           *config.Config
	DB            *sqlx.DB
	AuthService   *service.AuthService
	EmailService  *service.EmailService
	EntryService  *service.EntryService
	ExportService *service.ExportService // nil without S3
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	entryRepository := repository.NewEntryRepository(database)

	// LLM
	llmClient, err := llm.NewClient(cfg.OpenRouterAPIKey,
		llm.WithBaseURL(cfg.OpenRouterBaseURL),
		llm.WithModel(cfg.OpenRouterModel),
		llm.WithTimeout(cfg.LLMTimeout),
		llm.WithSiteInfo(cfg.OpenRouterSiteURL, cfg.OpenRouterSiteName),
	)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize llm client: %w", err)
	}

	// Storage (optional)
	var exportService *service.ExportService
	if cfg.HasStorage() {
		exportStorage, err := storage.New(ctx, cfg)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		exportService = service.NewExportService(exportStorage, cfg.S3PresignExpiry)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		userRepository,
		profileRepository,
		tokenRepository,
		emailService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.TokenPasswordResetExpiry,
	)
	generator := service.NewReflectionGenerator(llmClient, service.GeneratorOptions{
		Model:       cfg.OpenRouterModel,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		JSONSchema:  cfg.LLMJSONSchema,
	})
	entryService := service.NewEntryService(entryRepository, generator)

	return &App{
		Cfg:           cfg,
		DB:            database,
		AuthService:   authService,
		EmailService:  emailService,
		EntryService:  entryService,
		ExportService: exportService,
	}, nil
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
