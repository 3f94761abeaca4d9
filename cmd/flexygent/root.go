package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/flexygent/flexygent/chatllm"
	"github.com/flexygent/flexygent/config"
	"github.com/flexygent/flexygent/memstore"
	"github.com/flexygent/flexygent/rag"
	"github.com/flexygent/flexygent/tooling"
	"github.com/flexygent/flexygent/tooling/builtin"
)

var (
	flagConfig string
	flagQuiet  bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flexygent",
		Short:         "LLM agent with tool calling, memory, and local retrieval",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "flexygent.yaml", "path to config file")
	root.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress progress output")

	root.AddCommand(newChatCmd())
	root.AddCommand(newToolsCmd())
	return root
}

// app bundles the wired-up runtime pieces shared by commands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	client   *chatllm.Client
	registry *tooling.Registry
	memory   memstore.Store
}

func buildApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	memory, err := openMemory(cfg.Memory)
	if err != nil {
		return nil, err
	}

	registry := tooling.NewRegistry()
	if err := builtin.RegisterAll(registry); err != nil {
		return nil, fmt.Errorf("register builtin tools: %w", err)
	}
	if err := builtin.RegisterMemory(registry, memory); err != nil {
		return nil, fmt.Errorf("register memory tools: %w", err)
	}
	if key := embeddingKey(cfg.RAG); key != "" {
		m := rag.NewManager(rag.OpenAIEmbedding(key))
		if err := rag.RegisterTools(registry, m); err != nil {
			return nil, fmt.Errorf("register rag tools: %w", err)
		}
	} else {
		logger.Debug("rag tools disabled, no embedding API key")
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		client:   chatllm.NewClientFromEnv(),
		registry: registry,
		memory:   memory,
	}, nil
}

func openMemory(cfg config.MemoryConfig) (memstore.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return memstore.NewMemoryStore(), nil
	case "file":
		path := cfg.Path
		if path == "" {
			path = "flexygent-memory.json"
		}
		return memstore.NewFileStore(path)
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "flexygent.db"
		}
		return memstore.NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown memory backend %q", cfg.Backend)
	}
}

func embeddingKey(cfg config.RAGConfig) string {
	if cfg.EmbeddingAPIKey != "" {
		return cfg.EmbeddingAPIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}
