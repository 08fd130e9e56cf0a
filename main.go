package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	api "schoolapp/cmd/api"
	authUsecase "schoolapp/internal/auth/usecase"
	"schoolapp/internal/device/permission"
	"schoolapp/internal/device/token"
	"schoolapp/internal/logout"
	"schoolapp/internal/notification/history"
	"schoolapp/internal/notification/inbound"
	"schoolapp/internal/notification/router"
	"schoolapp/internal/notification/scheduler"
	notificationUsecase "schoolapp/internal/notification/usecase"
	"schoolapp/internal/session"
	"schoolapp/pkg/backend"
	"schoolapp/pkg/config"
	"schoolapp/pkg/database"
	"schoolapp/pkg/fcm"
	"schoolapp/pkg/kvstore"
	"schoolapp/pkg/platform"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistent key-value store, in memory when Postgres is unavailable
	var store kvstore.Store
	db, err := database.NewPostgresConnection(cfg)
	if err == nil {
		store, err = kvstore.NewGormStore(db)
	}
	if err != nil {
		log.Printf("[WARN] Postgres key-value store unavailable, using in-memory store: %v", err)
		store = kvstore.NewMemoryStore()
	}

	// Platform collaborators
	messaging := platform.NewMessaging(cfg.Platform, cfg.DeviceToken, cfg.PermissionGranted)
	if initial, err := platform.ParseInitialMessage(cfg.InitialMessage); err != nil {
		log.Printf("[WARN] Ignoring INITIAL_MESSAGE: %v", err)
	} else {
		messaging.SetInitialMessage(initial)
	}
	navigator := &platform.Navigator{}
	badge := &platform.Badge{}

	// Repositories and device services
	sessions := session.NewRepository(store)
	historyStore := history.NewStore(store)
	tokens := token.NewManager(messaging, store)
	flow := permission.NewFlow(messaging, platform.Dialog{Accept: cfg.AutoAcceptPrompt}, tokens, store)

	// Local notification presenter: FCM to this installation when configured
	var presenter scheduler.Presenter = platform.LogPresenter{}
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(cfg.FirebaseCredentials, tokens)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (notifications will be logged): %v", err)
		} else {
			presenter = fcmClient
		}
	} else {
		log.Printf("[DEBUG] No Firebase credentials configured, notifications will be logged")
	}

	notifScheduler := scheduler.NewScheduler(presenter, cfg.SchedulerInterval)
	notifScheduler.Start(ctx)
	defer notifScheduler.Stop()

	msgRouter := router.NewRouter(notifScheduler, historyStore, navigator, messaging)

	// Backend client
	backendClient := backend.NewClient(cfg.BackendBaseURL, nil)

	// Logout orchestrator and its teardown observers
	orchestrator := logout.NewOrchestrator(logout.Deps{
		Store:             store,
		Sessions:          sessions,
		History:           historyStore,
		Tokens:            tokens,
		Backend:           backendClient,
		Badge:             badge,
		DeregisterTimeout: cfg.DeregisterTimeout,
	})
	orchestrator.RegisterObserver(logout.Observer("scheduler", func(context.Context) error {
		n := notifScheduler.CancelAll()
		log.Printf("[Logout] Cancelled %d scheduled notifications", n)
		return nil
	}))

	// Inbound push messages over Pub/Sub
	if cfg.GoogleProjectID != "" {
		topicName := cfg.GooglePubSubTopic
		if parts := strings.Split(topicName, "/"); len(parts) > 1 {
			topicName = parts[len(parts)-1]
		}

		inboundService, err := inbound.NewService(cfg.GoogleProjectID, topicName, cfg.PubSubSubscription, msgRouter, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize inbound messages: %v", err)
		} else {
			orchestrator.RegisterObserver(logout.Observer("inbound", inboundService.Reset))
			go inboundService.Start(ctx)
			defer inboundService.Close()
		}
	} else {
		log.Printf("[WARN] GoogleProjectID not configured, inbound Pub/Sub messages disabled")
	}

	// Use cases (dependency injection)
	authUc := authUsecase.NewAuthUsecase(backendClient, tokens, sessions, orchestrator)
	remote := func(ctx context.Context, accessToken string) notificationUsecase.Remote {
		return backendClient.WithAccessToken(ctx, accessToken)
	}
	notificationUc := notificationUsecase.NewNotificationUsecase(historyStore, sessions, remote, msgRouter, badge)

	// Launch: permission flow, then the notification that opened the app
	result := flow.Run(ctx)
	log.Printf("[Permission] Flow finished: %s", result)
	if dest, ok := msgRouter.HandleColdStart(ctx); ok {
		log.Printf("[Router] Cold start routed to %s", dest)
	}

	// Initialize HTTP handler
	handler := api.NewHandler(authUc, notificationUc, notifScheduler, api.NewDeviceHandler(messaging, flow, tokens))

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := handler.Start(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
}
