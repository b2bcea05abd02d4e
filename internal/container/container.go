package container

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/wildhaven/parkops-backend/internal/api"
	"github.com/wildhaven/parkops-backend/internal/auth"
	"github.com/wildhaven/parkops-backend/internal/aws"
	"github.com/wildhaven/parkops-backend/internal/config"
	"github.com/wildhaven/parkops-backend/internal/database"
	"github.com/wildhaven/parkops-backend/internal/logging"
	"github.com/wildhaven/parkops-backend/internal/notifications"
	"github.com/wildhaven/parkops-backend/internal/queue"
	"github.com/wildhaven/parkops-backend/internal/rbac"
)

type Container struct {
	Config        *config.Config
	Database      *database.Database
	Queue         *queue.TaskQueue
	RedisClient   *redis.Client
	AuthService   *auth.AuthService
	Authenticator *auth.Authenticator
	SESService    *aws.SESService
	S3Service     *aws.S3Service
	Engine        *rbac.Engine
	Notifier      *notifications.NotificationDispatcher
	Server        *api.Server
	Worker        *queue.Worker
}

func New(cfg config.Config) (*Container, error) {
	ctx := context.Background()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	taskQueue, err := queue.NewQueue(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	// Two separate Redis connection pools are used: the asynq task
	// queue manages its own connection, and this client is used
	// for auth state (OTP hashes, refresh tokens).
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	jwtService, err := auth.NewJWTService([]byte(cfg.JWT.SigningKey), cfg.JWT.Issuer, cfg.JWT.Expiry)
	if err != nil {
		return nil, err
	}

	authService := auth.NewAuthService(redisClient, jwtService, db.Queries(), cfg.Auth)

	authenticator := auth.NewAuthenticator(jwtService, db.Queries())

	sesService, err := aws.NewSESService(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	// localstack-specific config (email identity not managed by app in prod)
	if cfg.AWS.EndpointURL != "" {
		if err := sesService.VerifyEmailIdentity(ctx); err != nil {
			logging.Error("Failed to verify email identity", "error", err)
		}
	}

	s3Service, err := aws.NewS3Service(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	// localstack-specific config (buckets are not managed by app in prod)
	if cfg.AWS.EndpointURL != "" {
		if err := s3Service.CreateBucket(ctx); err != nil {
			logging.Info("S3 bucket creation attempted", "bucket", cfg.AWS.Bucket, "result", err)
		}
	}

	catalog, err := rbac.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	engine := rbac.NewEngine(catalog)

	templates, err := notifications.DefaultTemplates()
	if err != nil {
		return nil, err
	}
	notificationSvc := notifications.NewNotificationService(db.Pool(), db.Queries())
	notifier := notifications.NewNotificationDispatcher(
		notificationSvc,
		taskQueue,
		templates,
		notifications.NewEmailLookupFunc(db.Queries()),
	)

	worker := queue.NewWorker(&cfg.Redis, sesService, db.Queries(), engine)

	server := api.NewServer(db, taskQueue, s3Service, authService, notifier, engine)

	logging.Info("Connected to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port)

	return &Container{
		Config:        &cfg,
		Database:      db,
		Queue:         taskQueue,
		RedisClient:   redisClient,
		AuthService:   authService,
		Authenticator: authenticator,
		SESService:    sesService,
		S3Service:     s3Service,
		Engine:        engine,
		Notifier:      notifier,
		Server:        server,
		Worker:        worker,
	}, nil
}

func (c *Container) Cleanup() {
	if c.Queue != nil {
		c.Queue.Close()
		logging.Info("Queue client closed")
	}
	if c.Worker != nil {
		c.Worker.Close()
		logging.Info("Worker closed")
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
		logging.Info("Redis client closed")
	}
	if c.Database != nil {
		c.Database.Close()
		logging.Info("Database connection closed")
	}
}
