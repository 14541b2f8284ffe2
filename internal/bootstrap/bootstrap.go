package bootstrap

import (
	"context"

	"github.com/Blessan-Corley/fixly-server/internal/audit"
	"github.com/Blessan-Corley/fixly-server/internal/config"
	"github.com/Blessan-Corley/fixly-server/internal/database"
	"github.com/Blessan-Corley/fixly-server/internal/googleauth"
	"github.com/Blessan-Corley/fixly-server/internal/handlers"
	"github.com/Blessan-Corley/fixly-server/internal/identity"
	"github.com/Blessan-Corley/fixly-server/internal/mailer"
	"github.com/Blessan-Corley/fixly-server/internal/ratelimit"
	"github.com/Blessan-Corley/fixly-server/internal/repository"
	"github.com/Blessan-Corley/fixly-server/internal/routes"
	"github.com/Blessan-Corley/fixly-server/internal/services"
	"github.com/Blessan-Corley/fixly-server/internal/utils"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AppContext holds everything main needs to serve and to shut down.
type AppContext struct {
	Cfg    *config.Config
	Logger *zap.Logger
	Deps   *routes.Deps

	mongoClient *mongo.Client
	redisClient *redis.Client
	auditor     *audit.Producer
}

// Init wires configuration, stores, clients and the service graph.
func Init(cfg *config.Config, logger *zap.Logger) (*AppContext, error) {
	sugar := logger.Sugar()

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo, sugar)
	if err != nil {
		return nil, err
	}
	rdb, err := database.ConnectRedis(cfg.Redis, sugar)
	if err != nil {
		return nil, err
	}

	var mail mailer.Mailer
	brevo := mailer.NewClient(cfg.Brevo.APIKey, cfg.Brevo.FromEmail, cfg.Brevo.FromName)
	if brevo.IsConfigured() {
		mail = brevo
		sugar.Info("Brevo mailer configured.")
	} else {
		mail = mailer.Noop{}
		sugar.Warn("Brevo mailer not configured. Emails will be skipped.")
	}

	google := googleauth.NewClient(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	if !google.IsConfigured() {
		sugar.Warn("Google OAuth not configured. Google sign-in will be unavailable.")
	}

	phoneIdentity := identity.NewProvider(cfg.Identity.Endpoint, cfg.Identity.APIKey)
	auditor := audit.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, logger)

	userRepo := repository.NewMongoUserRepo(db, cfg.User.Collection)
	jobRepo := repository.NewMongoJobRepo(db, cfg.User.JobsCollection)

	tokens := utils.NewTokenManager(cfg.App.JWT.Secret, cfg.App.JWT.SessionTTLHours)
	limiter := ratelimit.New(rdb, "fixly:rl")

	production := cfg.App.Production()
	authSvc := services.NewAuthService(userRepo, mail, tokens, logger, production, cfg.Security.PasswordHashCost)
	passwordSvc := services.NewPasswordResetService(userRepo, mail, logger, production,
		cfg.Security.PasswordHashCost, cfg.Security.ResetTokenTTLMinutes, cfg.Security.ResetMaxAttempts)
	otpSvc := services.NewOTPService(userRepo, phoneIdentity, tokens, logger)
	sessionSvc := services.NewSessionService(userRepo)
	profileSvc := services.NewProfileService(userRepo, logger)
	adminSvc := services.NewAdminService(userRepo, jobRepo, auditor, logger)

	h := handlers.New(authSvc, passwordSvc, otpSvc, sessionSvc, profileSvc, adminSvc, google, logger, !production)

	return &AppContext{
		Cfg:    cfg,
		Logger: logger,
		Deps: &routes.Deps{
			Handler: h,
			Tokens:  tokens,
			Limiter: limiter,
			Limits:  cfg.RateLimit,
			Mongo:   mongoClient,
			Redis:   rdb,
		},
		mongoClient: mongoClient,
		redisClient: rdb,
		auditor:     auditor,
	}, nil
}

// Close releases store connections and the audit producer.
func (a *AppContext) Close(ctx context.Context) {
	sugar := a.Logger.Sugar()
	if err := a.auditor.Close(); err != nil {
		sugar.Errorf("Audit producer close error: %v", err)
	}
	if err := a.mongoClient.Disconnect(ctx); err != nil {
		sugar.Errorf("MongoDB disconnect error: %v", err)
	}
	if err := a.redisClient.Close(); err != nil {
		sugar.Errorf("Redis client close error: %v", err)
	}
}
