package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"

	"chatmirror/clients/discord"
	"chatmirror/clients/openai"
	"chatmirror/clients/pinecone"
	"chatmirror/config"
	"chatmirror/db"
	"chatmirror/middleware"
	"chatmirror/services/embedcost"
	"chatmirror/services/identity"
	messagessvc "chatmirror/services/messages"
	"chatmirror/usecases/indexing"
	syncuc "chatmirror/usecases/sync"
)

func main() {
	app := &cli.App{
		Name:  "chatmirror",
		Usage: "mirrors a Discord community into Postgres and per-channel vector indexes",
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "run one full backfill over every visible server",
				Action: runSyncCommand,
			},
			{
				Name:   "update",
				Usage:  "run one incremental update over stored channels",
				Action: runUpdateCommand,
			},
			{
				Name:   "index",
				Usage:  "embed stored messages and publish per-channel vector indexes",
				Action: runIndexCommand,
			},
			{
				Name:   "watch",
				Usage:  "run incremental updates on an interval with a status endpoint",
				Action: runWatchCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

// application bundles the configuration, database wiring and services shared
// by every command.
type application struct {
	cfg             *config.AppConfig
	dbConn          *sqlx.DB
	alertMiddleware *middleware.ErrorAlertMiddleware

	identityService  *identity.IdentityService
	messagesService  *messagessvc.MessagesService
	embedCostService *embedcost.EmbedCostService
}

func newApplication() (*application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.WebhookAlertConfig{
		WebhookURL:  cfg.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "chatmirror",
		LogsURL:     cfg.LogsURL,
	})

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Initialize repositories with shared connection
	organizationsRepo := db.NewPostgresOrganizationsRepository(dbConn, cfg.DatabaseSchema)
	serversRepo := db.NewPostgresServersRepository(dbConn, cfg.DatabaseSchema)
	channelsRepo := db.NewPostgresChannelsRepository(dbConn, cfg.DatabaseSchema)
	threadsRepo := db.NewPostgresThreadsRepository(dbConn, cfg.DatabaseSchema)
	usersRepo := db.NewPostgresUsersRepository(dbConn, cfg.DatabaseSchema)
	rolesRepo := db.NewPostgresRolesRepository(dbConn, cfg.DatabaseSchema)
	channelUsersRepo := db.NewPostgresChannelUsersRepository(dbConn, cfg.DatabaseSchema)
	messagesRepo := db.NewPostgresMessagesRepository(dbConn, cfg.DatabaseSchema)
	attachmentsRepo := db.NewPostgresAttachmentsRepository(dbConn, cfg.DatabaseSchema)
	reactionsRepo := db.NewPostgresReactionsRepository(dbConn, cfg.DatabaseSchema)
	mentionsRepo := db.NewPostgresMentionsRepository(dbConn, cfg.DatabaseSchema)
	indexingCostsRepo := db.NewPostgresIndexingCostsRepository(dbConn, cfg.DatabaseSchema)

	identityService := identity.NewIdentityService(
		organizationsRepo,
		serversRepo,
		channelsRepo,
		threadsRepo,
		usersRepo,
		rolesRepo,
		channelUsersRepo,
	)
	messagesService := messagessvc.NewMessagesService(
		messagesRepo,
		channelsRepo,
		attachmentsRepo,
		reactionsRepo,
		mentionsRepo,
	)
	embedCostService := embedcost.NewEmbedCostService(indexingCostsRepo)

	return &application{
		cfg:              cfg,
		dbConn:           dbConn,
		alertMiddleware:  alertMiddleware,
		identityService:  identityService,
		messagesService:  messagesService,
		embedCostService: embedCostService,
	}, nil
}

func (a *application) Close() {
	if err := a.dbConn.Close(); err != nil {
		log.Printf("❌ Failed to close database connection: %v", err)
	}
}

func (a *application) buildSyncUseCase() (*syncuc.SyncUseCase, error) {
	if !a.cfg.DiscordConfig.IsConfigured() {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is not set")
	}
	discordClient, err := discord.NewDiscordClient(a.cfg.DiscordConfig.BotToken)
	if err != nil {
		return nil, err
	}
	return syncuc.NewSyncUseCase(discordClient, a.identityService, a.messagesService, syncuc.Config{
		OrganizationName:  a.cfg.OrganizationName,
		MessageBatchLimit: a.cfg.MessageBatchLimit,
		FetchTimeout:      a.cfg.FetchTimeout,
		PersistWorkers:    a.cfg.PersistWorkers,
	})
}

func (a *application) buildIndexingUseCase() (*indexing.IndexingUseCase, error) {
	if !a.cfg.OpenAIConfig.IsConfigured() {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if !a.cfg.PineconeConfig.IsConfigured() {
		return nil, fmt.Errorf("PINECONE_API_KEY is not set")
	}
	embedder, err := openai.NewOpenAIEmbeddingClient(a.cfg.OpenAIConfig)
	if err != nil {
		return nil, err
	}
	store, err := pinecone.NewPineconeClient(a.cfg.PineconeConfig)
	if err != nil {
		return nil, err
	}
	return indexing.NewIndexingUseCase(embedder, store, a.messagesService, a.embedCostService), nil
}

func runSyncCommand(c *cli.Context) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.Close()

	u, err := app.buildSyncUseCase()
	if err != nil {
		return err
	}
	defer u.Close()

	return app.alertMiddleware.WrapPipelineRun("FullSync", func() error {
		return u.RunSync(c.Context)
	})()
}

func runUpdateCommand(c *cli.Context) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.Close()

	u, err := app.buildSyncUseCase()
	if err != nil {
		return err
	}
	defer u.Close()

	return app.alertMiddleware.WrapPipelineRun("IncrementalUpdate", func() error {
		return u.RunUpdate(c.Context)
	})()
}

func runIndexCommand(c *cli.Context) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.Close()

	u, err := app.buildIndexingUseCase()
	if err != nil {
		return err
	}

	return app.alertMiddleware.WrapPipelineRun("Indexing", func() error {
		return u.RunIndexing(c.Context)
	})()
}

// watchStatus tracks the outcome of the most recent update run for the status
// endpoint.
type watchStatus struct {
	mu            sync.RWMutex
	lastRunAt     time.Time
	lastError     string
	runsCompleted int
}

func (s *watchStatus) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRunAt = time.Now()
	s.runsCompleted++
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
}

func (s *watchStatus) snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"last_run_at":    s.lastRunAt,
		"last_error":     s.lastError,
		"runs_completed": s.runsCompleted,
	}
}

func runWatchCommand(c *cli.Context) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.Close()

	u, err := app.buildSyncUseCase()
	if err != nil {
		return err
	}
	defer u.Close()

	status := &watchStatus{}
	runUpdate := app.alertMiddleware.WrapPipelineRun("IncrementalUpdate", func() error {
		return u.RunUpdate(c.Context)
	})

	// First update immediately, then on every tick
	updateTicker := time.NewTicker(app.cfg.UpdateInterval)
	defer updateTicker.Stop()
	go func() {
		status.record(runUpdate())
		for range updateTicker.C {
			status.record(runUpdate())
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")
	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status.snapshot()); err != nil {
			log.Printf("❌ Failed to write status response: %v", err)
		}
	}).Methods("GET")

	allowedOrigins := strings.Split(app.cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	server := &http.Server{
		Addr:              ":" + app.cfg.Port,
		Handler:           app.alertMiddleware.HTTPMiddleware(corsHandler.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
