package bootstrap

import (
	"context"
	"log"
	"time"

	"typst-collab-be/internal/collab"
	"typst-collab-be/internal/config"
	"typst-collab-be/internal/controller"
	"typst-collab-be/internal/handler"
	"typst-collab-be/internal/pkg/logger"
	"typst-collab-be/internal/pkg/mailer"
	"typst-collab-be/internal/repository/implementation"
	"typst-collab-be/internal/service"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	ProjectController controller.IProjectController

	// Background Services (Exposed for main.go to run)
	SnapshotConsumer service.ISnapshotConsumerService

	// WebSockets
	CollabHandler *handler.CollabHandler
	CollabHub     *collab.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Repositories
	userRepo := implementation.NewUserRepository(db)
	projectRepo := implementation.NewProjectRepository(db)

	// 4. Services
	authService := service.NewAuthService(userRepo)
	projectService := service.NewProjectService(projectRepo, userRepo, emailService, pubSub)
	compileService := service.NewCompileService(cfg.Compiler.BaseURL)
	snapshotConsumer := service.NewSnapshotConsumerService(pubSub, projectRepo, sysLogger)

	// 5. Collaboration Infrastructure
	// Redis is optional. Without it the hub still serves a single
	// instance, it just cannot bridge rooms across replicas.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	collabLogger := logger.NewIsolatedLogger(cfg.App.CollabLogFilePath)
	directory := collab.NewCachedDirectory(
		projectService,
		time.Duration(cfg.Collab.AccessCacheTTLSeconds)*time.Second,
	)
	hub := collab.NewHub(directory, rdb, collabLogger)

	// 6. Controllers & Handlers
	return &Container{
		AuthController:    controller.NewAuthController(authService),
		ProjectController: controller.NewProjectController(projectService, compileService),
		SnapshotConsumer:  snapshotConsumer,
		CollabHandler:     handler.NewCollabHandler(hub, collabLogger),
		CollabHub:         hub,
	}
}
