package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"montafacil/internal/config"
	"montafacil/internal/database"
	"montafacil/internal/geo"
	"montafacil/internal/middleware"
	"montafacil/internal/modules/auth"
	"montafacil/internal/modules/chat"
	"montafacil/internal/modules/lifecycle"
	"montafacil/internal/modules/payment"
	"montafacil/internal/modules/rating"
	"montafacil/internal/notification"
	jwtsvc "montafacil/internal/pkg/jwt"
	"montafacil/internal/repository"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("level=fatal msg=config load failed err=%v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal msg=database connect failed err=%v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("level=fatal msg=migration failed err=%v", err)
	}

	userRepo := repository.NewUserRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	assemblerRepo := repository.NewAssemblerRepository(db)
	bankAccountRepo := repository.NewBankAccountRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := notification.NewHub()
	defer hub.Close()
	notifService := notification.NewService(notificationRepo, hub)
	notifHandler := notification.NewHandler(notifService)
	wsHandler := notification.NewWSHandler(hub, j)

	geocoder := geo.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderTimeout)
	pixGateway := payment.NewGatewayClient(cfg.PixBaseURL, cfg.PixClientID, cfg.PixClientSecret, cfg.PixTimeout)

	authService := auth.NewService(userRepo, storeRepo, assemblerRepo, bankAccountRepo, registrationRepo, j)
	authHandler := auth.NewHandler(authService)

	lifecycleService := lifecycle.NewService(
		serviceRepo,
		applicationRepo,
		storeRepo,
		assemblerRepo,
		userRepo,
		messageRepo,
		notifService,
		geocoder,
	)
	lifecycleHandler := lifecycle.NewHandler(lifecycleService)

	chatService := chat.NewService(
		messageRepo,
		serviceRepo,
		storeRepo,
		assemblerRepo,
		applicationRepo,
		userRepo,
		notifService,
	)
	chatHandler := chat.NewHandler(chatService)

	paymentService := payment.NewService(
		serviceRepo,
		storeRepo,
		assemblerRepo,
		applicationRepo,
		bankAccountRepo,
		messageRepo,
		notifService,
		pixGateway,
		log.Printf,
	)
	paymentHandler := payment.NewHandler(paymentService)

	ratingService := rating.NewService(
		ratingRepo,
		serviceRepo,
		storeRepo,
		assemblerRepo,
		applicationRepo,
		notifService,
		log.Printf,
	)
	ratingHandler := rating.NewHandler(ratingService)

	if cfg.AppEnv == "prod" || cfg.AppEnv == "production" || cfg.AppEnv == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		paymentHandler.RegisterWebhookRoutes(v1)
		v1.GET("/ws", wsHandler.HandleWebSocket)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			lifecycleHandler.RegisterRoutes(protected)
			chatHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
			ratingHandler.RegisterRoutes(protected)
			notifHandler.RegisterRoutes(protected)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	log.Printf("level=info msg=listening addr=%s env=%s", addr, cfg.AppEnv)
	if err := r.Run(addr); err != nil {
		log.Fatalf("level=fatal msg=server stopped err=%v", err)
	}
}
