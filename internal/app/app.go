package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/oneshowhq/oneshow/internal/identity"
	"github.com/oneshowhq/oneshow/internal/mailer"
	"github.com/oneshowhq/oneshow/internal/metadata"
	"github.com/oneshowhq/oneshow/internal/payment"
	"github.com/oneshowhq/oneshow/internal/repository"
	appvalidator "github.com/oneshowhq/oneshow/internal/validator"
	"github.com/oneshowhq/oneshow/internal/vcs"
	"github.com/oneshowhq/oneshow/migrations"
	"github.com/redis/go-redis/v9"
)

var (
	version = vcs.Version()
)

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate
	mailer    mailer.Mailer
	tasks     *asynq.Client

	showRepo    domain.ShowRepository
	bookingRepo domain.BookingRepository
	movieRepo   domain.MovieRepository
	userRepo    domain.UserRepository

	paymentProvider  domain.PaymentProvider
	identityVerifier domain.IdentityVerifier
	metadataClient   domain.MovieMetadataClient

	wg sync.WaitGroup
}

type Config struct {
	Port        int
	Env         string
	AutoMigrate bool

	DB    DBConfig
	Redis RedisConfig

	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		Sender   string
	}

	Gateway struct {
		KeyID    string
		Secret   string
		Currency string
	}

	Metadata struct {
		BaseURL string
		APIKey  string
	}

	Identity struct {
		JWTSecret     string
		WebhookSecret string
	}
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")
	flag.BoolVar(&cfg.AutoMigrate, "automigrate", true, "Run database migrations on startup")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis address (host:port)")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "OneShow <no-reply@oneshow.example.com>", "SMTP sender")

	flag.StringVar(&cfg.Gateway.KeyID, "gateway-key-id", "", "Payment gateway key ID")
	flag.StringVar(&cfg.Gateway.Secret, "gateway-secret", "", "Payment gateway secret")
	flag.StringVar(&cfg.Gateway.Currency, "gateway-currency", "INR", "Payment currency")

	flag.StringVar(&cfg.Metadata.BaseURL, "metadata-base-url", "https://api.themoviedb.org/3", "Movie metadata source base URL")
	flag.StringVar(&cfg.Metadata.APIKey, "metadata-api-key", "", "Movie metadata source API key")

	flag.StringVar(&cfg.Identity.JWTSecret, "identity-jwt-secret", "", "Identity provider JWT signing secret")
	flag.StringVar(&cfg.Identity.WebhookSecret, "identity-webhook-secret", "", "Identity provider webhook secret")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.AutoMigrate {
		err = RunMigrations(cfg.DB.DSN)
		if err != nil {
			return err
		}

		logger.Info("database migrations applied")
	}

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	tasks := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.URL})
	defer tasks.Close()

	metadataClient := metadata.NewClient(
		cfg.Metadata.BaseURL,
		cfg.Metadata.APIKey,
		metadata.WithCache(redisClient),
		metadata.WithLogger(logger),
	)

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		tasks,
		repository.NewPostgresShowRepository(db),
		repository.NewPostgresBookingRepository(db),
		repository.NewPostgresMovieRepository(db),
		repository.NewPostgresUserRepository(db),
		payment.NewRazorpayProvider(cfg.Gateway.KeyID, cfg.Gateway.Secret),
		identity.NewJWTVerifier(cfg.Identity.JWTSecret),
		metadataClient,
	)

	return app.run()
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	mailer mailer.Mailer,
	tasks *asynq.Client,
	showRepo domain.ShowRepository,
	bookingRepo domain.BookingRepository,
	movieRepo domain.MovieRepository,
	userRepo domain.UserRepository,
	paymentProvider domain.PaymentProvider,
	identityVerifier domain.IdentityVerifier,
	metadataClient domain.MovieMetadataClient) *Application {

	return &Application{
		config:           cfg,
		logger:           logger,
		db:               db,
		redis:            redisClient,
		validator:        validator,
		mailer:           mailer,
		tasks:            tasks,
		showRepo:         showRepo,
		bookingRepo:      bookingRepo,
		movieRepo:        movieRepo,
		userRepo:         userRepo,
		paymentProvider:  paymentProvider,
		identityVerifier: identityVerifier,
		metadataClient:   metadataClient,
	}
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the embedded migrations against the given database.
func RunMigrations(dsn string) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	// golang-migrate's pgx/v5 driver registers the pgx5 URL scheme.
	url := strings.Replace(dsn, "postgres://", "pgx5://", 1)

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	redisOpt := asynq.RedisClientOpt{Addr: app.config.Redis.URL}

	taskServer := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Logger:      asynqLogger{app.logger},
	})

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: asynqLogger{app.logger},
	})

	err := app.registerPeriodicTasks(scheduler)
	if err != nil {
		return err
	}

	go func() {
		if err := taskServer.Run(app.taskRoutes()); err != nil {
			app.logger.Error("task server failed", "error", err)
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			app.logger.Error("task scheduler failed", "error", err)
		}
	}()

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
			return
		}

		scheduler.Shutdown()
		taskServer.Shutdown()

		// Wait for in-flight background work (confirmation emails).
		app.wg.Wait()

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

// Wait blocks until in-flight background work has finished.
func (app *Application) Wait() {
	app.wg.Wait()
}

// asynqLogger adapts slog to asynq's logger interface.
type asynqLogger struct {
	logger *slog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.logger.Error(fmt.Sprint(args...)) }
