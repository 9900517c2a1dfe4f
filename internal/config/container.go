package config

import (
	"time"

	"inkforge-server/internal/domain"
	"inkforge-server/internal/repository"
	"inkforge-server/internal/service"
	"inkforge-server/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient

	StoryRepository   domain.StoryRepository
	UsageRepository   domain.UsageRepository
	AccountRepository domain.AccountRepository

	AuthService       domain.AuthService
	StoryService      domain.StoryService
	UsageService      domain.UsageService
	GenerationService domain.GenerationService
	BillingService    domain.BillingService
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	cfg := NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel())

	supabaseClient := repository.NewSupabaseClient(cfg, appLogger)

	storyRepo := repository.NewSupabaseStoryRepository(supabaseClient, appLogger)
	usageRepo := repository.NewSupabaseUsageRepository(supabaseClient, appLogger)
	accountRepo := repository.NewSupabaseAccountRepository(supabaseClient, appLogger)

	loc, err := time.LoadLocation(cfg.GetQuotaTimezone())
	if err != nil {
		appLogger.Warn("Unknown quota timezone, falling back to UTC", "timezone", cfg.GetQuotaTimezone())
		loc = time.UTC
	}

	authService := service.NewAuthService(supabaseClient, appLogger)
	usageService := service.NewUsageService(usageRepo, accountRepo, appLogger, cfg.GetFreeDailyLimit(), loc)
	storyService := service.NewStoryService(storyRepo, appLogger)
	generationService := service.NewGenerationService(
		usageService,
		storyService,
		appLogger,
		cfg.GetEngineURL(),
		cfg.GetEngineModel(),
		cfg.GetEngineTimeout(),
	)
	billingService := service.NewBillingService(usageService, appLogger, cfg)

	return &Container{
		Config:            cfg,
		Logger:            appLogger,
		SupabaseClient:    supabaseClient,
		StoryRepository:   storyRepo,
		UsageRepository:   usageRepo,
		AccountRepository: accountRepo,
		AuthService:       authService,
		StoryService:      storyService,
		UsageService:      usageService,
		GenerationService: generationService,
		BillingService:    billingService,
	}
}
