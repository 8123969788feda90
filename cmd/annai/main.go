// Package main is the Annai CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/config"
	"github.com/hyperjump/annai/internal/diagram"
	"github.com/hyperjump/annai/internal/docs"
	"github.com/hyperjump/annai/internal/embedding"
	"github.com/hyperjump/annai/internal/indexer"
	"github.com/hyperjump/annai/internal/ingest"
	"github.com/hyperjump/annai/internal/keyword"
	"github.com/hyperjump/annai/internal/llm"
	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/qa"
	"github.com/hyperjump/annai/internal/server"
	"github.com/hyperjump/annai/internal/session"
	"github.com/hyperjump/annai/internal/snapshot"
	"github.com/hyperjump/annai/internal/storage"
	"github.com/hyperjump/annai/internal/vector"
	"github.com/hyperjump/annai/internal/watcher"
	"github.com/hyperjump/annai/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/annai/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory wins, so running from a project dir picks up the
// project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "analyze":
		runAnalyze()
	case "docs":
		runDocs()
	case "ask":
		runAsk()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("annai version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func setup(configPath string, debugFlag bool) (*config.Config, *zap.Logger) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolvedPath))
	return cfg, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()

	var watch *watcher.Watcher
	sessionOpts := []session.Option{}
	if cfg.Watch.Enabled {
		// onChange is bound after components exist; the watcher only
		// needs the callback at fire time.
		var mgr *session.Manager
		watch = watcher.New(func(root string) {
			sess, ok := mgr.GetByRoot(root)
			if !ok {
				return
			}
			logger.Info("tree changed, reindexing", zap.String("repo", sess.RepoID))
			if err := mgr.Reindex(context.Background(), sess); err != nil {
				logger.Warn("reindex failed", zap.String("repo", sess.RepoID), zap.Error(err))
			}
		},
			watcher.WithLogger(logger),
			watcher.WithDebounce(time.Duration(cfg.Watch.Debounce)*time.Millisecond))
		sessionOpts = append(sessionOpts, session.WithAnalyzedHook(func(sess *models.Session) {
			// Only locally analyzed directories are watched; cached
			// clones change only through analyze itself.
			if info, err := os.Stat(sess.URL); err != nil || !info.IsDir() {
				return
			}
			if err := watch.AddRepo(sess.Snapshot.Root); err != nil {
				logger.Warn("watch repo failed", zap.String("root", sess.Snapshot.Root), zap.Error(err))
			}
		}))
		defer func() {
			if watch != nil {
				watch.Stop()
			}
		}()

		components, err := initializeComponents(cfg, logger, sessionOpts...)
		if err != nil {
			logger.Fatal("Failed to initialize components", zap.Error(err))
		}
		defer components.Close()
		mgr = components.Sessions

		if err := watch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		serveAndWait(components, cfg, logger)
		return
	}

	components, err := initializeComponents(cfg, logger, sessionOpts...)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()
	serveAndWait(components, cfg, logger)
}

func serveAndWait(components *Components, cfg *config.Config, logger *zap.Logger) {
	srv := server.NewServer(
		components.Sessions,
		components.Engine,
		components.Docs,
		components.Diagrams,
		components.Keywords,
		components.Store,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	showTree := fs.Bool("tree", false, "print the filtered file tree")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: annai analyze [flags] <repo-url-or-path>")
		os.Exit(1)
	}
	source := fs.Arg(0)

	cfg, logger := setup(*configPath, false)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	sess, err := components.Sessions.Analyze(context.Background(), source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(sess)
		return
	}

	fmt.Printf("repo:     %s\n", sess.RepoID)
	fmt.Printf("label:    %s\n", sess.Classification.Label)
	fmt.Printf("files:    %d\n", len(sess.Snapshot.Files))
	fmt.Printf("chunks:   %d\n", sess.Chunks)
	if len(sess.Classification.EntryFiles) > 0 {
		fmt.Printf("entries:  %s\n", strings.Join(sess.Classification.EntryFiles, ", "))
	}
	if len(sess.Classification.RunCommands) > 0 {
		fmt.Printf("run:      %s\n", strings.Join(sess.Classification.RunCommands, ", "))
	}
	for _, note := range sess.Classification.Notes {
		fmt.Printf("note:     %s\n", note)
	}
	if *showTree {
		fmt.Println()
		fmt.Println(snapshot.RenderTree(sess.Snapshot))
	}
}

func runDocs() {
	fs := flag.NewFlagSet("docs", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outDir := fs.String("out", "", "output directory (default: storage.output_dir from config)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: annai docs [flags] <repo-url-or-path>")
		os.Exit(1)
	}
	source := fs.Arg(0)

	cfg, logger := setup(*configPath, false)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	sess, err := components.Sessions.Analyze(context.Background(), source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	set, err := components.Docs.Generate(sess.Snapshot, sess.Classification)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Doc generation failed: %v\n", err)
		os.Exit(1)
	}
	dest := *outDir
	if dest == "" {
		dest = cfg.Storage.OutputDir
	}
	dir, err := components.Docs.Write(dest, sess.RepoID, set)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Writing docs failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %d document(s) in %s\n", len(set), dir)
	for _, name := range set.Names() {
		fmt.Printf("  %s\n", name)
	}
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = answer locally)")
	topK := fs.Int("top-k", 0, "number of chunks to retrieve (default from config)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 2 {
		fmt.Println("Usage: annai ask [flags] <repo-id> <question>")
		os.Exit(1)
	}
	repoID := fs.Arg(0)
	question := strings.TrimSpace(strings.Join(fs.Args()[1:], " "))
	req := &models.AskRequest{Question: question, TopK: *topK}

	if *serverURL != "" {
		resp, err := askViaHTTP(*serverURL, repoID, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		printAnswer(resp)
		return
	}

	cfg, logger := setup(*configPath, false)
	defer logger.Sync()
	if req.TopK == 0 {
		req.TopK = cfg.Index.TopK
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	if _, err := components.Sessions.LoadStored(ctx, repoID); err != nil {
		fmt.Fprintf(os.Stderr, "%v (run \"annai analyze\" first)\n", err)
		os.Exit(1)
	}
	resp, err := components.Engine.Ask(ctx, repoID, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	printAnswer(resp)
}

func printAnswer(resp *models.AskResponse) {
	fmt.Println(resp.Answer)
	if len(resp.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, c := range resp.Citations {
			fmt.Printf("  %s\n", c)
		}
	}
	fmt.Printf("\n[%s, %dms]\n", resp.Provider, resp.QueryTime)
}

func askViaHTTP(serverURL, repoID string, req *models.AskRequest) (*models.AskResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/sessions/"+repoID+"/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out models.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = search locally)")
	limit := fs.Int("limit", 10, "number of results")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 2 {
		fmt.Println("Usage: annai search [flags] <repo-id> <query>")
		os.Exit(1)
	}
	repoID := fs.Arg(0)
	query := strings.TrimSpace(strings.Join(fs.Args()[1:], " "))
	req := &models.SearchRequest{Query: query, Limit: *limit}

	var resp *models.SearchResponse
	if *serverURL != "" {
		var err error
		resp, err = searchViaHTTP(*serverURL, repoID, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, logger := setup(*configPath, false)
		defer logger.Sync()

		components, err := initializeComponents(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()

		ctx := context.Background()
		if _, err := components.Sessions.LoadStored(ctx, repoID); err != nil {
			fmt.Fprintf(os.Stderr, "%v (run \"annai analyze\" first)\n", err)
			os.Exit(1)
		}
		resp, err = localSearch(ctx, components, repoID, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	}

	if resp.Total == 0 {
		fmt.Println("No matches.")
		return
	}
	for _, r := range resp.Results {
		fmt.Printf("%2d. %-40s score %.3f\n", r.Rank, r.Chunk.Citation(), r.Score)
	}
	fmt.Printf("\n%d result(s) in %dms\n", resp.Total, resp.QueryTime)
}

func localSearch(ctx context.Context, components *Components, repoID string, req *models.SearchRequest) (*models.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	hits, err := components.Keywords.Search(repoID, req.Query, req.Limit)
	if err != nil {
		return nil, err
	}
	results := make([]*models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		chunk, err := components.Store.GetChunk(ctx, repoID, hit.ID)
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			continue
		}
		results = append(results, &models.SearchResult{Chunk: chunk, Score: hit.Score, Rank: len(results) + 1})
	}
	return &models.SearchResponse{
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
		Query:     req.Query,
	}, nil
}

func searchViaHTTP(serverURL, repoID string, req *models.SearchRequest) (*models.SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/sessions/"+repoID+"/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use local storage)")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		resp, err := http.Get(*serverURL + "/api/v1/status")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		_, _ = io.Copy(os.Stdout, resp.Body)
		fmt.Println()
		return
	}

	cfg, logger := setup(*configPath, false)
	defer logger.Sync()

	store, err := storage.NewStore(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	repos, err := store.ListRepos(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "List repos failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("database:  %s\n", cfg.Storage.DatabasePath)
	fmt.Printf("repos:     %d\n", len(repos))
	for _, r := range repos {
		count, err := store.CountChunks(context.Background(), r.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count chunks failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  %-30s %-16s %5d chunks\n", r.ID, r.Label, count)
	}
}

// Components holds initialized services.
type Components struct {
	Store    *storage.Store
	Embedder embedding.Embedder
	Vectors  vector.Index
	Keywords *keyword.Index
	Indexer  *indexer.Indexer
	Sessions *session.Manager
	Engine   *qa.Engine
	Diagrams *diagram.Generator
	Docs     *docs.Generator
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Vectors != nil {
		c.Vectors.Close()
	}
	if c.Keywords != nil {
		_ = c.Keywords.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, sessionOpts ...session.Option) (*Components, error) {
	store, err := storage.NewStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var embedder embedding.Embedder
	embedder, err = embedding.New(cfg.Embedding)
	if err != nil {
		logger.Warn("embedding provider unavailable, falling back to mock embeddings",
			zap.String("provider", cfg.Embedding.Provider),
			zap.Error(err))
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	}
	embedder = embedding.NewCachedEmbedder(embedder, 0)

	ctx := context.Background()
	vecIdx, err := vector.New(ctx, cfg.Vector, embedder.Dimensions())
	if err != nil {
		if cfg.Vector.Backend != "memory" && cfg.Vector.Backend != "" {
			logger.Warn("vector backend unavailable, falling back to memory",
				zap.String("backend", cfg.Vector.Backend),
				zap.Error(err))
			vecIdx, err = vector.NewMemoryIndex(embedder.Dimensions())
		}
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vector index: %w", err)
		}
	}

	keywords, err := keyword.NewIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	completer, err := llm.New(cfg.Completion)
	if err != nil {
		logger.Warn("completion provider unavailable, answers fall back to retrieved chunks",
			zap.String("provider", cfg.Completion.Provider),
			zap.Error(err))
		completer = nil
	}

	ix := indexer.New(store, vecIdx, embedder, cfg.Index,
		indexer.WithLogger(logger),
		indexer.WithKeywordIndexer(keywords))
	ing := ingest.NewIngestor(cfg.Storage.RepoCacheDir, logger)

	sessionOpts = append([]session.Option{
		session.WithLogger(logger),
		session.WithKeywordIndexer(keywords),
	}, sessionOpts...)
	sessions := session.NewManager(ing, ix, store, vecIdx, sessionOpts...)

	engine := qa.NewEngine(store, vecIdx, embedder, completer, qa.WithLogger(logger))
	diagrams := diagram.NewGenerator(logger)
	docGen := docs.NewGenerator(diagrams, logger)

	return &Components{
		Store:    store,
		Embedder: embedder,
		Vectors:  vecIdx,
		Keywords: keywords,
		Indexer:  ix,
		Sessions: sessions,
		Engine:   engine,
		Diagrams: diagrams,
		Docs:     docGen,
	}, nil
}

func printUsage() {
	fmt.Println(`annai - repository onboarding assistant

Usage:
  annai analyze [flags] <repo-url-or-path>   Clone/scan a repo, classify it, and index it
  annai docs [flags] <repo-url-or-path>      Analyze a repo and generate onboarding docs
  annai ask [flags] <repo-id> <question>     Ask a question about an analyzed repo
  annai search [flags] <repo-id> <query>     Keyword-search an analyzed repo's code
  annai server [flags]                       Start the HTTP server
  annai status [flags]                       Show analyzed repos and index state
  annai version                              Show version
  annai help                                 Show this help

Analyze Flags:
  --config string    Config file path (default: /usr/local/etc/annai/config.yaml)
  --tree             Print the filtered file tree
  --output string    Output format: text or json (default: text)

Docs Flags:
  --config string    Config file path
  --out string       Output directory (default: storage.output_dir from config)

Ask Flags:
  --config string    Config file path
  --server string    Server URL; empty answers locally (default: empty)
  --top-k int        Number of chunks to retrieve

Search Flags:
  --config string    Config file path
  --server string    Server URL; empty searches locally (default: empty)
  --limit int        Number of results (default: 10)

Server Flags:
  --config string    Config file path
  --debug            Enable debug logging

Status Flags:
  --config string    Config file path
  --server string    Server URL (default: http://localhost:8080). Use --server "" for local storage.

Examples:
  annai analyze https://github.com/pallets/flask
  annai analyze --tree ./my-project
  annai docs ./my-project
  annai ask flask "how are blueprints registered?"
  annai search flask blueprint
  annai server --debug
  annai status --server ""`)
}
