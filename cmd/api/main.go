package main

import (
	"log"

	"github.com/joho/godotenv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	infraauth "app/internal/infra/auth"
	"app/internal/infra/db"
	"app/internal/infra/payment"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"
)

func main() {
	// .envがなくても環境変数があれば動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Rating{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービス
	gateway := payment.NewStripeGateway(
		cfg.StripeSecretKey,
		cfg.StripeWebhookSecret,
		cfg.FEURL+"/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		cfg.FEURL+"/checkout/cancel",
	)
	googleVerifier := infraauth.NewGoogleVerifier(cfg.GoogleClientID)

	//Usecase生成
	authValidator := validator.NewAuthValidator(userRepo)
	authUC := usecase.NewAuthUsecase(userRepo, authValidator, googleVerifier, cfg.JWTSecret)
	productUC := usecase.NewProductUsecase(productRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager)
	paymentUC := usecase.NewPaymentUsecase(txManager, cartRepo, cartRepo, productRepo, gateway)
	ratingUC := usecase.NewRatingUsecase(txManager)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, orderRepo, orderItemRepo, auditRepo)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, auditRepo)
	adminAnalyticsUC := usecase.NewAdminAnalyticsUsecase(orderRepo, userRepo)

	//Handler生成とルート登録
	e := server.New(cfg)
	server.RegisterRoutes(e, cfg, server.Handlers{
		Auth:           handler.NewAuthHandler(authUC, cfg),
		Product:        handler.NewProductHandler(productUC),
		Cart:           handler.NewCartHandler(cartUC),
		Order:          handler.NewOrderHandler(orderUC),
		Payment:        handler.NewPaymentHandler(paymentUC),
		Rating:         handler.NewRatingHandler(ratingUC),
		AdminProduct:   handler.NewAdminProductHandler(productUC),
		AdminOrder:     handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:      handler.NewAdminUserHandler(adminUserUC),
		AdminAnalytics: handler.NewAdminAnalyticsHandler(adminAnalyticsUC),
	})

	//Server起動
	addr := ":8080"
	if cfg.Port != "" {
		if cfg.Port[0] != ':' {
			addr = ":" + cfg.Port
		} else {
			addr = cfg.Port
		}
	}

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
