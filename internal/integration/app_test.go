package integration_test

import (
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oneshowhq/oneshow/internal/app"
	"github.com/oneshowhq/oneshow/internal/identity"
	"github.com/oneshowhq/oneshow/internal/mailer"
	"github.com/oneshowhq/oneshow/internal/metadata"
	"github.com/oneshowhq/oneshow/internal/payment"
	"github.com/oneshowhq/oneshow/internal/repository"
	appvalidator "github.com/oneshowhq/oneshow/internal/validator"
)

const (
	jwtSecret     = "integration-jwt-secret"
	gatewaySecret = "integration-gateway-secret"
	webhookSecret = "integration-webhook-secret"
)

type TestApp struct {
	App     *app.Application
	DB      *pgxpool.Pool
	Mailer  *mailer.MockMailer
	Gateway *payment.MockProvider
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	validator := appvalidator.NewValidator()
	mockMailer := mailer.NewMockMailer()
	gateway := payment.NewMockProvider(cfg.Gateway.KeyID, cfg.Gateway.Secret)

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	metadataClient := metadata.NewClient("http://localhost:0", "unused",
		metadata.WithCache(redisClient),
		metadata.WithLogger(logger),
	)

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mockMailer,
		nil,
		repository.NewPostgresShowRepository(db),
		repository.NewPostgresBookingRepository(db),
		repository.NewPostgresMovieRepository(db),
		repository.NewPostgresUserRepository(db),
		gateway,
		identity.NewJWTVerifier(cfg.Identity.JWTSecret),
		metadataClient,
	)

	return &TestApp{
		App:     application,
		DB:      db,
		Mailer:  mockMailer,
		Gateway: gateway,
	}, nil
}
