package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soma-campus/soma-backend/internal/auth"
	"github.com/soma-campus/soma-backend/internal/config"
	"github.com/soma-campus/soma-backend/internal/db"
	"github.com/soma-campus/soma-backend/internal/mailer"
	"github.com/soma-campus/soma-backend/internal/media"
	"github.com/soma-campus/soma-backend/internal/middleware"
	"github.com/soma-campus/soma-backend/internal/parties"
	"github.com/soma-campus/soma-backend/internal/posts"
	"github.com/soma-campus/soma-backend/internal/stats"
)

const shutdownTimeout = 10 * time.Second

// Deps are the resources the HTTP surface is built from.
type Deps struct {
	DB       *gorm.DB
	Sender   mailer.Sender
	Pictures auth.PictureStore // nil keeps pictures inline
	Config   config.Config
	Log      *zap.Logger
}

// Server wraps the HTTP server and its database.
type Server struct {
	httpServer *http.Server
	db         *gorm.DB
	log        *zap.Logger
}

// New connects to the database, migrates, wires the mail and media backends
// and builds the router.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	d, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*Server, error) {
		_ = db.Close(d)
		return nil, err
	}
	if err := Migrate(d); err != nil {
		return fail(err)
	}

	sender, err := mailer.New(cfg.Mail, log)
	if err != nil {
		return fail(fmt.Errorf("mailer: %w", err))
	}

	deps := Deps{DB: d, Sender: sender, Config: cfg, Log: log}
	if cfg.Media.Endpoint != "" {
		client, err := media.NewMinioClient(cfg.Media)
		if err != nil {
			return fail(fmt.Errorf("media: %w", err))
		}
		store := media.NewStore(client, cfg.Media.PublicBaseURL)
		if err := store.EnsureBucket(ctx); err != nil {
			return fail(fmt.Errorf("media bucket: %w", err))
		}
		deps.Pictures = store
		log.Info("profile pictures stored in object storage", zap.String("bucket", client.Bucket()))
	}

	handler, err := NewHandler(deps)
	if err != nil {
		return fail(err)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		db:  d,
		log: log,
	}, nil
}

// NewHandler builds every service and mounts the API under /somaapp.
func NewHandler(deps Deps) (http.Handler, error) {
	log := deps.Log
	cfg := deps.Config

	tokens, err := auth.NewTokens(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	store := auth.NewStore(deps.DB)
	ledger := auth.NewLedger(store, deps.Sender, cfg.FrontendURL, log)
	authSvc := auth.NewService(store, ledger, tokens, deps.Sender, deps.Pictures, cfg.FrontendURL, log)
	partySvc := parties.NewService(deps.DB, log)
	postSvc := posts.NewService(deps.DB, store, log)
	statsSvc := stats.NewService(deps.DB, log)

	requireSession := middleware.SessionMiddleware(authSvc, log)

	r := chi.NewRouter()
	r.Use(
		chimiddleware.StripSlashes,
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		chimiddleware.Logger,
		chimiddleware.Timeout(60*time.Second),
		middleware.CORS(cfg.AllowedOrigins),
	)
	r.Get("/", rootHandler)
	r.Get("/healthz", healthz(deps.DB))

	r.Route("/somaapp", func(r chi.Router) {
		auth.RegisterRoutes(r, auth.NewHandler(authSvc, cfg.CookieSecure, log), requireSession)
		posts.RegisterRoutes(r, posts.NewHandler(postSvc, log), requireSession)
		parties.RegisterRoutes(r, parties.NewHandler(partySvc, log), requireSession)
		stats.RegisterRoutes(r, stats.NewHandler(statsSvc, log))
	})
	return r, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		_ = db.Close(s.db)
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(shutCtx)
	if cerr := db.Close(s.db); err == nil {
		err = cerr
	}
	return err
}

// Migrate creates or updates every table. Posts reference users and parties,
// so they come last.
func Migrate(d *gorm.DB) error {
	for _, initFn := range []func(*gorm.DB) error{auth.Init, parties.Init, posts.Init, stats.Init} {
		if err := initFn(d); err != nil {
			return err
		}
	}
	return nil
}

func rootHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintln(w, "Server is up!")
}

func healthz(d *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := d.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprintln(w, "ok")
	}
}
