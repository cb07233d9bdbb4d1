package main

import (
	"context"
	"log"
	"time"

	"contas/internal/domain/bill"
	"contas/internal/domain/card"
	"contas/internal/domain/category"
	"contas/internal/domain/charge"
	"contas/internal/domain/chat"
	"contas/internal/domain/notification"
	"contas/internal/domain/user"
	"contas/internal/infrastructure/firebase"
	"contas/internal/infrastructure/postgres"
	httphandlers "contas/internal/interfaces/http"
	"contas/internal/interfaces/scheduler"
	"contas/internal/shared/auth"
	"contas/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler         *httphandlers.AuthHandler
	CardHandler         *httphandlers.CardHandler
	ChargeHandler       *httphandlers.ChargeHandler
	BillHandler         *httphandlers.BillHandler
	CategoryHandler     *httphandlers.CategoryHandler
	ChatHandler         *httphandlers.ChatHandler
	NotificationHandler *httphandlers.NotificationHandler

	// Auth
	JWT *auth.JWT

	// For the due-bill reminder scheduler
	BillRepo      *postgres.BillRepository
	Notifications *notification.Service
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	log.Println("Database migrations applied")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	cardRepo := postgres.NewCardRepository(db)
	chargeRepo := postgres.NewChargeRepository(db)
	billRepo := postgres.NewBillRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Initialize domain services. Charge lifecycle operations run inside the
	// unit of work; the card ledger reads its usage from the charge rows.
	uow := postgres.NewUnitOfWork(db)
	userService := user.NewService(userRepo)
	cardService := card.NewService(postgres.NewCardUnitOfWork(db), cardRepo)
	chargeService := charge.NewService(uow, cardRepo, chargeRepo, billRepo)
	billService := bill.NewService(billRepo)
	paymentService := bill.NewPaymentService(billRepo, cardService)
	categoryService := category.NewService(categoryRepo)

	// Initialize push messaging if configured
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		fcm, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, notificationRepo.DeactivateToken)
		if err != nil {
			log.Printf("Warning: Firebase messaging disabled: %v", err)
		} else {
			messenger = fcm
			log.Println("Firebase messaging initialized")
		}
	} else {
		log.Println("Firebase messaging not configured, push notifications disabled")
	}
	notificationService := notification.NewService(notificationRepo, messenger)

	// Initialize auth components
	jwt := auth.NewJWT(cfg.JWT.Secret)

	return &Dependencies{
		DB:                  db,
		AuthHandler:         httphandlers.NewAuthHandler(userService, jwt),
		CardHandler:         httphandlers.NewCardHandler(cardService),
		ChargeHandler:       httphandlers.NewChargeHandler(chargeService),
		BillHandler:         httphandlers.NewBillHandler(billService, paymentService),
		CategoryHandler:     httphandlers.NewCategoryHandler(categoryService),
		ChatHandler:         httphandlers.NewChatHandler(chat.NewParser(), chargeService),
		NotificationHandler: httphandlers.NewNotificationHandler(notificationService),
		JWT:                 jwt,
		BillRepo:            billRepo,
		Notifications:       notificationService,
	}, nil
}

// NewScheduler builds the due-bill reminder scheduler from application config.
func (d *Dependencies) NewScheduler(cfg *config.Config) (*scheduler.Scheduler, error) {
	return scheduler.New(scheduler.Config{
		ScheduleTimes: cfg.Scheduler.ScheduleTimes,
		WorkerCount:   cfg.Scheduler.WorkerCount,
		JobDelay:      cfg.Scheduler.JobDelay,
		QueueSize:     cfg.Scheduler.QueueSize,
		RunOnStartup:  cfg.Scheduler.RunOnStartup,
		JobProvider:   scheduler.NewDueBillsProvider(d.BillRepo, d.Notifications, cfg.Notifications.DueSoonDays, time.Now),
	})
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
