package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/config"
	"adaptive-quiz-service/internal/infra/audit"
	"adaptive-quiz-service/internal/infra/memory"
	"adaptive-quiz-service/internal/infra/postgres"
	redisinfra "adaptive-quiz-service/internal/infra/redis"
	"adaptive-quiz-service/internal/infra/sqlite"
	transport "adaptive-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// storage bundles the persistence backends chosen from config.
type storage struct {
	users        app.UserRepository
	interactions app.InteractionRepository
	sessions     app.SessionRepository
	closers      []io.Closer
}

func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			log.Printf("close storage: %v", err)
		}
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	questions, err := loadBank(cfg.Quiz.BankPath)
	if err != nil {
		return err
	}
	if cfg.Quiz.BankPath == "" {
		log.Printf("no bank configured, serving the demo bank (%d questions)", questions.Len())
	} else {
		log.Printf("loaded %d questions from %s", questions.Len(), cfg.Quiz.BankPath)
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var auditor app.Auditor
	if cfg.Audit.Dir != "" {
		fileLog, err := audit.NewFileLog(cfg.Audit.Dir)
		if err != nil {
			return err
		}
		auditor = fileLog
	}

	auth := app.NewAuthService(store.users, store.sessions, auditor, app.WithEmailDomain(cfg.Auth.EmailDomain))
	quiz := app.NewQuizService(store.sessions, store.interactions, questions, auditor, app.WithMaxWeek(cfg.Quiz.MaxWeek))
	reports := app.NewReportService(store.users, store.interactions)

	api := transport.NewHandler(auth, quiz, reports, transport.CookieOptions{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.CookieSecure,
	})
	ws := transport.NewWSHandler(auth, quiz, cfg.Auth.CookieName, cfg.Server.AllowedOrigin)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(api, ws, cfg.Server.AllowedOrigin),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStorage picks postgres, then sqlite, then memory for users and
// interactions, and redis or memory for sessions. The seen-set cache sits in
// front of whichever interaction store was chosen.
func openStorage(ctx context.Context, cfg config.Config) (*storage, error) {
	s := &storage{}
	seenTTL := config.TTLDuration(cfg.Quiz.SeenTTL, 10*time.Minute)

	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, closerFunc(func() error { pool.Close(); return nil }))
		s.users = postgres.NewUserRepository(pool)
		s.interactions = postgres.NewInteractionRepository(pool)
		log.Printf("using postgres storage")
	case cfg.SQLite.Path != "":
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db)
		s.users = db.Users()
		s.interactions = db.Interactions()
		log.Printf("using sqlite storage at %s", cfg.SQLite.Path)
	default:
		users := memory.NewUserRepository()
		s.users = users
		s.interactions = memory.NewInteractionRepository(users)
		log.Printf("using in-memory storage; data is lost on restart")
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			s.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		s.closers = append(s.closers, client)
		s.sessions = redisinfra.NewSessionStore(client, config.TTLDuration(cfg.Redis.TTL, 12*time.Hour))
		s.interactions = redisinfra.NewSeenCache(client, s.interactions, seenTTL)
	} else {
		s.sessions = memory.NewSessionStore()
		s.interactions = memory.NewSeenCache(s.interactions, seenTTL)
	}
	return s, nil
}
