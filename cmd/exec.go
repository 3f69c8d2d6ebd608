package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"conference-system/config"
	"conference-system/internal/events"
	"conference-system/internal/gateway/paystack"
	"conference-system/internal/handlers"
	"conference-system/internal/notify"
	"conference-system/internal/realtime"
	"conference-system/internal/services"
	pbstore "conference-system/internal/store/pb"
	"conference-system/security"
	"conference-system/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "conference-system/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event bus for post-purchase fan-out (email dispatch)
	wmLogger := watermill.NewSlogLogger(slog.Default())

	publisher, err := events.NewRedisPublisher(redisClient, wmLogger)
	if err != nil {
		return err
	}
	eventBus, err := events.NewEventBus(publisher, wmLogger)
	if err != nil {
		return err
	}

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return err
	}
	processor, err := events.NewEventProcessor(router, redisClient, "notifications", wmLogger)
	if err != nil {
		return err
	}

	mailer := notify.NewClient(&cfg.Resend)
	dispatcher := notify.NewDispatcher(mailer, cfg.EventName)

	if err := processor.AddHandlers(
		cqrs.NewEventHandler("SendPurchaseConfirmation", dispatcher.HandleOrderPaid),
	); err != nil {
		return err
	}

	go func() {
		if err := router.Run(ctx); err != nil {
			slog.Error("event router stopped", "error", err)
		}
	}()

	// Payment gateway
	gateway := paystack.NewClient(&cfg.Paystack)

	// Realtime push to checkout pages (optional)
	var realtimeNotifier services.RealtimeNotifier
	if cfg.PubNub.PublishKey != "" {
		realtimeNotifier = realtime.New(&cfg.PubNub)
	}

	// Initialize services
	orderStore := pbstore.NewStore(app)
	issuer := services.NewTicketIssuer(orderStore, services.EventInfo{
		Name:  cfg.EventName,
		Date:  cfg.EventDate,
		Venue: cfg.EventVenue,
	}, cfg.TicketNumberPrefix)
	purchaseService := services.NewPurchaseService(
		orderStore, gateway, issuer, eventBus, realtimeNotifier,
		cfg.ReferencePrefix, cfg.Currency,
	)

	// Initialize handlers
	purchaseHandler := handlers.NewPurchaseHandler(app, purchaseService, cfg.Currency)
	attendeeHandler := handlers.NewAttendeeHandler(app, dispatcher)
	adminHandler := handlers.NewAdminHandler(app)
	contentHandler := handlers.NewContentHandler(app)

	rateLimiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Setup graceful shutdown
	go handleShutdown(cancel)

	// Register routes
	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Purchase endpoints
		e.Router.POST("/api/purchase/initialize", purchaseHandler.InitializePurchase).
			BindFunc(rateLimiter.AntiBotMiddleware()).
			BindFunc(rateLimiter.PurchaseRateLimit(cfg.PurchaseRateLimit, cfg.PurchaseRateWindow))
		e.Router.POST("/api/purchase/verify", purchaseHandler.VerifyPurchase).
			BindFunc(rateLimiter.PurchaseRateLimit(cfg.PurchaseRateLimit, cfg.PurchaseRateWindow))

		// Gateway endpoints
		e.Router.POST("/api/payments/webhook", purchaseHandler.HandleWebhook)
		e.Router.GET("/api/payments/config", purchaseHandler.GatewayConfig)

		// Attendee endpoints
		e.Router.POST("/api/attendees", attendeeHandler.SubmitProfile)
		e.Router.GET("/api/tickets/{ticketNumber}", attendeeHandler.GetTicket)

		// Public content
		e.Router.GET("/api/content/events", contentHandler.ListEvents)
		e.Router.GET("/api/content/speakers", contentHandler.ListSpeakers)
		e.Router.GET("/api/content/ticket-types", contentHandler.ListTicketTypes)

		// Admin endpoints
		e.Router.GET("/api/admin/sales-dashboard", adminHandler.GetSalesDashboard).
			Bind(apis.RequireAuth())
		e.Router.GET("/api/admin/orders", adminHandler.ListOrders).
			Bind(apis.RequireAuth())
		e.Router.POST("/api/admin/check-in", adminHandler.CheckInTicket).
			Bind(apis.RequireAuth())

		// Monitoring
		if cfg.EnableMetrics {
			e.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))
		}

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	return app.Start()
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
