package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-admin/internal/config"
	"recipe-admin/internal/database"
	"recipe-admin/internal/event"
	"recipe-admin/internal/gateway"
	"recipe-admin/internal/handler"
	"recipe-admin/internal/middleware"
	"recipe-admin/internal/repository"
	"recipe-admin/internal/router"
	"recipe-admin/internal/service"
	"recipe-admin/internal/session"
	"recipe-admin/internal/storage"
	"recipe-admin/internal/store"
)

const inboxCapacity = 100

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	cleanup := []func(){cancel}
	fail := func(err error) (*App, error) {
		for _, fn := range cleanup {
			fn()
		}
		return nil, err
	}

	db, persister, err := openPersister(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	if db != nil {
		cleanup = append(cleanup, db.Close)
	}

	bus := event.NewBus()
	notifier := event.NewNotifier(bus)
	inbox := event.NewInbox(inboxCapacity)
	go inbox.Run(ctx, bus)

	sessionStore := session.NewStore(ctx, session.Seal(persister, cfg.SessionSecret), session.WithBus(bus))
	go sessionStore.StartExpiryTicker(ctx, cfg.SessionCheckInterval)

	gw := gateway.New(cfg.APIURL, cfg.APITimeout, sessionStore, gateway.WithNavigator(notifier.Navigate))

	objects, err := storage.New(cfg.StorageRoot, cfg.StoragePublicURL, cfg.MaxUploadSize)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize storage: %w", err))
	}

	recipes := store.NewRecipeStore()
	users := store.NewUserStore()

	recipeList := service.NewRecipeList(gw, recipes, notifier, service.ListOptions{
		PageLimit:     cfg.PageLimit,
		Debounce:      cfg.SearchDebounce,
		Location:      time.Local,
		SearchTimeout: cfg.APITimeout,
	})
	cleanup = append(cleanup, recipeList.Close)

	editor := service.NewRecipeEditor(objects, notifier, cfg.MaxUploadSize, recipeList.Submit)
	comments := service.NewCommentPanel(gw, sessionStore, notifier, time.Local)
	userAdmin := service.NewUserAdmin(gw, users, notifier, time.Local)
	authService := service.NewAuthService(gw, sessionStore, notifier)

	pageHandler, err := handler.NewPageHandler(authService, sessionStore, recipeList, userAdmin)
	if err != nil {
		return fail(fmt.Errorf("failed to load page templates: %w", err))
	}

	appRouter := router.New(cfg, middleware.NewSessionGuard(sessionStore), router.Handlers{
		Pages:         pageHandler,
		Auth:          handler.NewAuthHandler(authService, sessionStore, gw),
		Recipes:       handler.NewRecipeHandler(recipeList, recipes),
		Editor:        handler.NewEditorHandler(editor, recipes, gw, cfg.MaxUploadSize),
		Comments:      handler.NewCommentHandler(comments),
		Users:         handler.NewUserHandler(userAdmin),
		Notifications: handler.NewNotificationHandler(inbox),
		Storage:       handler.NewStorageHandler(objects),
	}, db.Health)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	slog.Info("console ready", "api_url", cfg.APIURL, "session_backend", cfg.SessionBackend, "authenticated", sessionStore.IsAuthenticated())

	return &App{
		server:       server,
		db:           db,
		cleanupFuncs: cleanup,
	}, nil
}

// openPersister picks where the client state lives. The postgres backend
// also returns the pool so it can be closed on shutdown.
func openPersister(ctx context.Context, cfg *config.Config) (*database.DB, session.Persister, error) {
	if cfg.SessionBackend != config.SessionBackendPostgres {
		persister, err := session.NewFilePersister(cfg.SessionFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session file: %w", err)
		}
		return nil, persister, nil
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	return db, repository.NewStateRepository(db.Pool), nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Close stops background work and releases the database pool, most recently
// registered first.
func (a *App) Close() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.Close()

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
