// -----------------------------------------------------------------------
// Application wiring - storage, services and handlers
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/common"
	"github.com/ternarybob/rogo/internal/handlers"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/services/chat"
	"github.com/ternarybob/rogo/internal/services/documents"
	"github.com/ternarybob/rogo/internal/services/embeddings"
	"github.com/ternarybob/rogo/internal/services/events"
	"github.com/ternarybob/rogo/internal/services/export"
	"github.com/ternarybob/rogo/internal/services/ingest"
	"github.com/ternarybob/rogo/internal/services/llm"
	"github.com/ternarybob/rogo/internal/services/loader"
	"github.com/ternarybob/rogo/internal/services/retrieval"
	"github.com/ternarybob/rogo/internal/services/settings"
	"github.com/ternarybob/rogo/internal/storage/badger"
	"github.com/ternarybob/rogo/internal/storage/index"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	ctx       context.Context
	cancelCtx context.CancelFunc

	StorageManager interfaces.StorageManager
	IndexStorage   interfaces.IndexStorage

	// Core services
	EventService     interfaces.EventService
	LLMService       interfaces.LLMService
	EmbeddingService interfaces.EmbeddingService
	LoaderService    interfaces.Loader
	SettingsService  *settings.Service
	IngestService    interfaces.IngestService
	ReconcileService interfaces.ReconcileService
	DocumentService  *documents.Service
	ComposerService  interfaces.RetrieverComposer
	ChatService      interfaces.ChatService
	ExportService    *export.Service

	// HTTP handlers
	StatusHandler   *handlers.StatusHandler
	DocumentHandler *handlers.DocumentHandler
	ChatHandler     *handlers.ChatHandler
	SettingsHandler *handlers.SettingsHandler
	WSHandler       *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       ctx,
		cancelCtx: cancel,
	}

	if err := app.initStorage(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := app.initServices(); err != nil {
		cancel()
		app.StorageManager.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.initHandlers()

	return app, nil
}

func (a *App) initStorage() error {
	manager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.StorageManager = manager

	indexStore, err := index.NewStore(a.Config.Storage.Indices, a.Logger)
	if err != nil {
		manager.Close()
		return err
	}
	a.IndexStorage = indexStore

	return nil
}

func (a *App) initServices() error {
	a.EventService = events.NewService(a.Logger)

	llmService, err := llm.NewService(a.ctx, a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM service: %w", err)
	}
	a.LLMService = llmService

	a.EmbeddingService = embeddings.NewService(a.LLMService, a.Logger)
	a.LoaderService = loader.NewService(a.Logger)
	a.SettingsService = settings.NewService(a.StorageManager.SettingsStorage(), a.Logger)

	ingestService, err := ingest.NewService(
		a.Config,
		a.StorageManager.DocumentStorage(),
		a.StorageManager.SettingsStorage(),
		a.StorageManager.QueueStorage(),
		a.IndexStorage,
		a.LoaderService,
		a.EmbeddingService,
		a.EventService,
		a.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create ingest service: %w", err)
	}
	a.IngestService = ingestService

	a.ReconcileService = ingest.NewReconciler(
		a.Config.Reconcile.Schedule,
		a.StorageManager.DocumentStorage(),
		a.IndexStorage,
		a.IngestService,
		a.Logger,
	)

	a.DocumentService, err = documents.NewService(
		a.Config.Storage.Documents,
		a.StorageManager.DocumentStorage(),
		a.IndexStorage,
		a.IngestService,
		a.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create documents service: %w", err)
	}

	a.ComposerService = retrieval.NewComposer(a.IndexStorage, a.EmbeddingService, a.Logger)
	a.ChatService = chat.NewService(
		a.StorageManager.DocumentStorage(),
		a.StorageManager.ChatStorage(),
		a.StorageManager.SettingsStorage(),
		a.ComposerService,
		a.EmbeddingService,
		a.LLMService,
		a.Config.Chat.FallbackRules,
		a.Logger,
	)
	a.ExportService = export.NewService(a.Logger)

	return nil
}

func (a *App) initHandlers() {
	a.StatusHandler = handlers.NewStatusHandler(
		a.StorageManager.DocumentStorage(),
		a.StorageManager.QueueStorage(),
		a.LLMService,
		a.Logger,
	)
	a.DocumentHandler = handlers.NewDocumentHandler(a.DocumentService, a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.StorageManager.ChatStorage(), a.ExportService, a.Logger)
	a.SettingsHandler = handlers.NewSettingsHandler(a.SettingsService, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, a.Logger)
}

// Start launches the background services: the ingestion worker pool, the
// reconciliation sweep and the websocket event bridge.
func (a *App) Start() error {
	a.WSHandler.Start()

	if err := a.IngestService.Start(a.ctx); err != nil {
		return fmt.Errorf("failed to start ingest service: %w", err)
	}

	if a.Config.Reconcile.Enabled {
		if err := a.ReconcileService.Start(); err != nil {
			return fmt.Errorf("failed to start reconcile service: %w", err)
		}
	}

	a.Logger.Info().Msg("Application services started")
	return nil
}

// Close stops background services and releases all resources
func (a *App) Close() error {
	a.Logger.Info().Msg("Shutting down application services")

	if a.Config.Reconcile.Enabled && a.ReconcileService != nil {
		a.ReconcileService.Stop()
	}
	if a.IngestService != nil {
		a.IngestService.Stop()
	}
	if a.WSHandler != nil {
		a.WSHandler.Stop()
	}

	a.cancelCtx()

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application shut down")
	return nil
}
