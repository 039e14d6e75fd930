package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/xlfilecreator/internal/config"
	"github.com/locvowork/xlfilecreator/internal/handler"
	"github.com/locvowork/xlfilecreator/internal/logger"
	"github.com/locvowork/xlfilecreator/internal/service"
	"github.com/locvowork/xlfilecreator/pkg/xlsource"
)

type App struct {
	Echo    *echo.Echo
	Service *service.GenerationService
	closer  io.Closer
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	return &App{Echo: e}
}

// Initialize loads the environment unless already loaded, opens the ledger
// and wires the routes.
func (a *App) Initialize(ctx context.Context) error {
	if config.DefaultEnvConfig == nil {
		if err := config.LoadEnvConfig(); err != nil {
			return fmt.Errorf("failed to load env config: %w", err)
		}
	}

	cfg := config.DefaultEnvConfig
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	ledger, err := OpenLedger(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	a.closer = ledger

	a.Service = service.NewGenerationService(ServiceOptions(cfg), ledger.Repository)
	a.RegisterMiddlewares()
	a.RegisterRoutes(handler.NewGenerationHandler(a.Service))
	return nil
}

// ServiceOptions maps the environment onto generator settings.
func ServiceOptions(cfg *config.EnvConfig) service.Options {
	return service.Options{
		OutputDir:         cfg.OUTPUT_DIR,
		Encryptor:         cfg.ENCRYPTOR,
		MSOfficeCryptPath: cfg.MSOFFICE_CRYPT_PATH,
		ExtraRowCount:     cfg.EXTRA_ROW_COUNT,
		EncryptWorkers:    cfg.ENCRYPT_WORKERS,
		EncryptRetries:    cfg.ENCRYPT_RETRIES,
		Google: xlsource.GoogleAuth{
			APIKey:          cfg.GOOGLE_API_KEY,
			CredentialsFile: cfg.GOOGLE_CREDENTIALS_FILE,
		},
	}
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.RequestID())
	a.Echo.Use(logger.EchoMiddleware())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
	a.Echo.Use(middleware.BodyLimit("32M"))
}

func (a *App) RegisterRoutes(h *handler.GenerationHandler) {
	a.Echo.GET("/healthz", handler.HealthHandler)

	api := a.Echo.Group("/api/v1")
	api.POST("/render", h.RenderHandler)
	api.POST("/batches", h.CreateBatchHandler)
	api.GET("/projects/:project/files", h.ListFilesHandler)
	api.DELETE("/projects/:project/files", h.PurgeFilesHandler)
	api.GET("/projects/:project/report", h.FileReportHandler)
}

func (a *App) Run() error {
	defer a.Close()
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}

// Close releases the ledger connection.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
