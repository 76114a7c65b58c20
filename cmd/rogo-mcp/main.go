package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/rogo/internal/common"
	"github.com/ternarybob/rogo/internal/services/chat"
	"github.com/ternarybob/rogo/internal/services/embeddings"
	"github.com/ternarybob/rogo/internal/services/llm"
	"github.com/ternarybob/rogo/internal/services/retrieval"
	"github.com/ternarybob/rogo/internal/storage/badger"
	"github.com/ternarybob/rogo/internal/storage/index"
)

func main() {
	configPath := os.Getenv("ROGO_CONFIG")
	if configPath == "" {
		configPath = "rogo.toml"
	}
	if _, err := os.Stat(configPath); err != nil {
		// Run on defaults plus env credentials when no config file exists
		configPath = ""
	}

	config, err := common.LoadFromFiles(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
		os.Exit(1)
	}
	defer storageManager.Close()

	indexStore, err := index.NewStore(config.Storage.Indices, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open index storage")
		os.Exit(1)
	}

	ctx := context.Background()
	llmService, err := llm.NewService(ctx, config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize LLM service")
		os.Exit(1)
	}
	defer llmService.Close()

	embedder := embeddings.NewService(llmService, logger)
	composer := retrieval.NewComposer(indexStore, embedder, logger)
	chatService := chat.NewService(
		storageManager.DocumentStorage(),
		storageManager.ChatStorage(),
		storageManager.SettingsStorage(),
		composer,
		embedder,
		llmService,
		config.Chat.FallbackRules,
		logger,
	)

	mcpServer := server.NewMCPServer(
		"rogo",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createAskDocumentsTool(), handleAskDocuments(chatService, logger))
	mcpServer.AddTool(createListDocumentsTool(), handleListDocuments(storageManager.DocumentStorage(), logger))
	mcpServer.AddTool(createGetDocumentTool(), handleGetDocument(storageManager.DocumentStorage(), logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
