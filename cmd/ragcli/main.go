//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

// Command ragcli assembles a retrieval pipeline from a YAML config and
// exposes its operations on the command line:
//
//	ragcli -agent demo ingest handbook.pdf
//	ragcli -agent demo search "refund policy"
//	ragcli -agent demo ask "How do refunds work?"
//	ragcli -agent demo reembed
//	ragcli -agent demo delete <document-id>
//
// Credentials are read from the environment (a .env file is honored);
// the config file names which variables to use.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/netvexa/rag-go/cache"
	cacheinmemory "github.com/netvexa/rag-go/cache/inmemory"
	cacheredis "github.com/netvexa/rag-go/cache/redis"
	"github.com/netvexa/rag-go/chunking"
	"github.com/netvexa/rag-go/completion"
	completiongemini "github.com/netvexa/rag-go/completion/gemini"
	completionopenai "github.com/netvexa/rag-go/completion/openai"
	"github.com/netvexa/rag-go/config"
	"github.com/netvexa/rag-go/embedding"
	"github.com/netvexa/rag-go/embedding/cached"
	embeddingopenai "github.com/netvexa/rag-go/embedding/openai"
	"github.com/netvexa/rag-go/log"
	"github.com/netvexa/rag-go/rag"
	"github.com/netvexa/rag-go/vectorstore"
	storeinmemory "github.com/netvexa/rag-go/vectorstore/inmemory"
	"github.com/netvexa/rag-go/vectorstore/pgvector"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		agentID string
		convID  string
		topK    int
	)
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	flag.StringVar(&agentID, "agent", "", "agent identifier scoping all operations")
	flag.StringVar(&convID, "conversation", "", "conversation identifier for ask")
	flag.IntVar(&topK, "k", 0, "number of results (overrides config)")
	flag.Parse()

	args := flag.Args()
	if agentID == "" || len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(err)
	}
	if topK > 0 {
		cfg.Engine.TopK = topK
	}

	ctx := context.Background()
	engine, cleanup, err := buildEngine(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	switch cmd, rest := args[0], args[1:]; cmd {
	case "ingest":
		err = runIngest(ctx, engine, agentID, rest)
	case "search":
		err = runSearch(ctx, engine, agentID, cfg.Engine.TopK, rest)
	case "ask":
		err = runAsk(ctx, engine, agentID, convID, rest)
	case "reembed":
		err = runReembed(ctx, engine, agentID)
	case "delete":
		err = runDelete(ctx, engine, agentID, rest)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: ragcli -agent <id> [-config config.yaml] <ingest|search|ask|reembed|delete> [args]")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "ragcli:", err)
	os.Exit(1)
}

// buildEngine assembles the pipeline the config describes. The
// returned cleanup closes every component that holds a connection.
func buildEngine(ctx context.Context, cfg *config.Config) (*rag.Engine, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	c, err := buildCache(cfg)
	if err != nil {
		return nil, cleanup, err
	}
	if rc, ok := c.(*cacheredis.Cache); ok {
		closers = append(closers, func() { _ = rc.Close() })
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	if pg, ok := store.(*pgvector.Store); ok {
		closers = append(closers, func() { _ = pg.Close() })
	}

	embedder, err := buildEmbedder(cfg, c)
	if err != nil {
		return nil, cleanup, err
	}

	completer, err := buildCompletion(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}

	engine, err := rag.New(
		rag.WithEmbedder(embedder),
		rag.WithStore(store),
		rag.WithCompletionProvider(completer),
		rag.WithCache(c),
		rag.WithTopK(cfg.Engine.TopK),
		rag.WithContextBudget(cfg.Engine.ContextBudget),
		rag.WithWorkers(cfg.Engine.Workers),
		rag.WithChunkingOptions(
			chunking.WithChunkSize(cfg.Chunking.ChunkSize),
			chunking.WithOverlap(cfg.Chunking.Overlap),
			chunking.WithMinChunkSize(cfg.Chunking.MinChunkSize),
		),
	)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, engine.Close)
	return engine, cleanup, nil
}

func buildCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Type {
	case "memory", "":
		return cacheinmemory.New(), nil
	case "redis":
		url := config.Secret(cfg.Cache.URLEnv)
		if url == "" {
			return nil, fmt.Errorf("cache: %s is not set", cfg.Cache.URLEnv)
		}
		return cacheredis.New(cacheredis.WithURL(url))
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Cache.Type)
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.Store.Type {
	case "memory", "":
		return storeinmemory.New(), nil
	case "pgvector":
		dsn := config.Secret(cfg.Store.DSNEnv)
		if dsn == "" {
			return nil, fmt.Errorf("store: %s is not set", cfg.Store.DSNEnv)
		}
		opts := []pgvector.Option{
			pgvector.WithDSN(dsn),
			pgvector.WithDimensions(cfg.Embedder.Dimensions),
		}
		if cfg.Store.Table != "" {
			opts = append(opts, pgvector.WithTable(cfg.Store.Table))
		}
		store, err := pgvector.New(opts...)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

func buildEmbedder(cfg *config.Config, c cache.Cache) (embedding.Embedder, error) {
	switch cfg.Embedder.Provider {
	case "openai", "":
		opts := []embeddingopenai.Option{
			embeddingopenai.WithModel(cfg.Embedder.Model),
			embeddingopenai.WithDimensions(cfg.Embedder.Dimensions),
			embeddingopenai.WithAPIKey(config.Secret(cfg.Embedder.APIKeyEnv)),
		}
		if cfg.Embedder.BaseURL != "" {
			opts = append(opts, embeddingopenai.WithBaseURL(cfg.Embedder.BaseURL))
		}
		inner := embeddingopenai.New(opts...)

		cachedOpts := []cached.Option{cached.WithProviderName(cfg.Embedder.Model)}
		if cfg.Embedder.CacheTTL != "" {
			ttl, err := time.ParseDuration(cfg.Embedder.CacheTTL)
			if err != nil {
				return nil, fmt.Errorf("embedder: bad cache_ttl: %w", err)
			}
			cachedOpts = append(cachedOpts, cached.WithTTL(ttl))
		}
		return cached.New(inner, c, cachedOpts...), nil
	default:
		return nil, fmt.Errorf("unknown embedder provider %q", cfg.Embedder.Provider)
	}
}

func buildCompletion(ctx context.Context, cfg *config.Config) (completion.Provider, error) {
	var providers []completion.Provider
	for _, pc := range cfg.Completion {
		switch pc.Type {
		case "openai":
			opts := []completionopenai.Option{
				completionopenai.WithAPIKey(config.Secret(pc.APIKeyEnv)),
			}
			if pc.Model != "" {
				opts = append(opts, completionopenai.WithModel(pc.Model))
			}
			if pc.BaseURL != "" {
				opts = append(opts, completionopenai.WithBaseURL(pc.BaseURL))
			}
			providers = append(providers, completionopenai.New(opts...))
		case "gemini":
			opts := []completiongemini.Option{
				completiongemini.WithAPIKey(config.Secret(pc.APIKeyEnv)),
			}
			if pc.Model != "" {
				opts = append(opts, completiongemini.WithModel(pc.Model))
			}
			p, err := completiongemini.New(ctx, opts...)
			if err != nil {
				return nil, fmt.Errorf("gemini provider: %w", err)
			}
			providers = append(providers, p)
		default:
			return nil, fmt.Errorf("unknown completion provider %q", pc.Type)
		}
	}
	if len(providers) == 1 {
		return providers[0], nil
	}
	return completion.NewChain(providers...), nil
}

func runIngest(ctx context.Context, engine *rag.Engine, agentID string, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("ingest: no files given")
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		result, err := engine.Ingest(ctx, &rag.IngestRequest{
			AgentID:  agentID,
			FileName: filepath.Base(path),
			Data:     data,
		})
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		fmt.Printf("%s: document %s, %d chunks (%d embedded, %d failed) in %s\n",
			path, result.DocumentID, result.TotalChunks,
			result.EmbeddedChunks, result.FailedChunks, result.Elapsed.Round(time.Millisecond))
		if result.FailedChunks > 0 {
			log.Warnf("some chunks were stored without embeddings; run `ragcli reembed` once the provider recovers")
		}
	}
	return nil
}

func runSearch(ctx context.Context, engine *rag.Engine, agentID string, k int, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("search: no query given")
	}
	results, err := engine.Search(ctx, agentID, args[0], k)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s\n", i+1, r.Score, r.Chunk.ID)
		if r.Chunk.SectionTitle != "" {
			fmt.Printf("   section: %s\n", r.Chunk.SectionTitle)
		}
		for _, h := range r.Highlights {
			fmt.Printf("   %s\n", h)
		}
	}
	return nil
}

func runAsk(ctx context.Context, engine *rag.Engine, agentID, convID string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("ask: no question given")
	}
	answer := engine.Answer(ctx, &rag.AnswerRequest{
		AgentID:        agentID,
		ConversationID: convID,
		Query:          args[0],
	})
	fmt.Println(answer.Content)
	if len(answer.SourceIDs) > 0 {
		fmt.Println("\nSources:")
		for i, id := range answer.SourceIDs {
			fmt.Printf("  [%d] %s\n", i+1, id)
		}
	}
	return answer.Err
}

func runReembed(ctx context.Context, engine *rag.Engine, agentID string) error {
	result, err := engine.ReembedMissing(ctx, agentID)
	if err != nil {
		return err
	}
	fmt.Printf("reembedded %d of %d chunks (%d failed) in %s\n",
		result.UpdatedChunks, result.TotalChunks, result.FailedChunks,
		result.Elapsed.Round(time.Millisecond))
	return nil
}

func runDelete(ctx context.Context, engine *rag.Engine, agentID string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("delete: no document id given")
	}
	if err := engine.DeleteDocument(ctx, agentID, args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted document %s\n", args[0])
	return nil
}
