package main

import (
	"context"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/twilio/twilio-go"

	"github.com/estia/marketplace-service/internal/app"
	"github.com/estia/marketplace-service/internal/cache"
	"github.com/estia/marketplace-service/internal/config"
	"github.com/estia/marketplace-service/internal/controllers"
	"github.com/estia/marketplace-service/internal/events"
	"github.com/estia/marketplace-service/internal/middleware"
	"github.com/estia/marketplace-service/internal/notifications"
	"github.com/estia/marketplace-service/internal/repositories"
	"github.com/estia/marketplace-service/internal/routes"
	"github.com/estia/marketplace-service/internal/services"
	"github.com/estia/marketplace-service/internal/storage"
	"github.com/estia/marketplace-service/internal/utils"
)

const appName = "marketplace-service"

// moderationDigestSpec fires the pending-review digest every morning at 07:00 UTC.
const moderationDigestSpec = "0 7 * * *"

func main() {
	utils.InitLogger(appName)
	cfg := config.LoadConfig(appName)

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize marketplace-service:", err)
	}
	defer application.Close()

	// Repositories
	propRepo := repositories.NewPropertyRepository(application.DB)
	progressRepo := repositories.NewPropertyProgressRepository(application.DB)
	txRepo := repositories.NewTransactionRepository(application.DB)
	ticketRepo := repositories.NewSupportTicketRepository(application.DB)
	auditRepo := repositories.NewAdminAuditLogRepository(application.DB)
	userRepo := repositories.NewUserRepository(application.DB)

	// Infrastructure adapters. Redis, NATS and MinIO are optional in local
	// setups; the services degrade gracefully when they are absent.
	var listingCache services.ListingCache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewListingCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer rc.Close()
		listingCache = rc
	} else {
		utils.Logger.Warn("REDIS_ADDR not set; listing cache disabled")
	}

	var publisher services.EventPublisher
	if cfg.NatsURL != "" {
		np, err := events.NewPublisher(cfg.NatsURL)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to connect to NATS")
		}
		defer np.Close()
		publisher = np
	} else {
		utils.Logger.Warn("NATS_URL not set; status events disabled")
	}

	var media services.MediaUploader
	if cfg.MinioEndpoint != "" {
		store, err := storage.NewMediaStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to initialize MinIO media store")
		}
		media = store
	} else {
		utils.Logger.Warn("MINIO_ENDPOINT not set; image uploads disabled")
	}

	var sgClient *sendgrid.Client
	if cfg.SendgridAPIKey != "" {
		sgClient = sendgrid.NewSendClient(cfg.SendgridAPIKey)
	}
	var twClient *twilio.RestClient
	if cfg.TwilioAccountSID != "" {
		twClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}
	notifier := notifications.NewNotifier(sgClient, twClient, config.OrganizationName, cfg.SendgridFromEmail, cfg.TwilioFromPhone, cfg.OnCallPhone)

	// Services
	listingService := services.NewListingService(propRepo, progressRepo, listingCache, media)
	adminService := services.NewListingAdminService(propRepo, progressRepo, auditRepo, userRepo, listingCache, publisher, notifier)
	progressService := services.NewProgressService(progressRepo, auditRepo)
	txService := services.NewTransactionService(txRepo, propRepo, userRepo, auditRepo, publisher, notifier)
	ticketService := services.NewTicketService(ticketRepo, notifier)
	billingService := services.NewBillingService(cfg.StripeSecretKey, cfg.StripePriceIDs, cfg.StripeSuccessURL, cfg.StripeCancelURL)

	// Controllers
	healthController := controllers.NewHealthController(application)
	listingController := controllers.NewListingController(listingService)
	adminListingController := controllers.NewAdminListingController(adminService, progressService)
	txController := controllers.NewTransactionController(txService)
	ticketController := controllers.NewTicketController(ticketService)
	billingController := controllers.NewBillingController(billingService, userRepo)

	// Router setup
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Listings, listingController.ListPublicHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.ListingByID, listingController.GetPublicHandler).Methods(http.MethodGet)

	// Secured routes for sellers and buyers
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))
	secured.HandleFunc(routes.MyListings, listingController.SubmitHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.MyListings, listingController.ListMineHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.ListingImages, listingController.AttachImageHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ListingRemovalRequest, listingController.RequestRemovalHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ListingProgress, listingController.GetProgressHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Tickets, ticketController.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.MyTickets, ticketController.ListMineHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.TicketByID, ticketController.GetHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.TicketMessages, ticketController.PostMessageHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BillingCheckout, billingController.CreateCheckoutSessionHandler).Methods(http.MethodPost)

	// Admin routes
	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.AdminAuthMiddleware(cfg.RSAPublicKey))
	admin.HandleFunc(routes.AdminListings, adminListingController.ListHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminListingByID, adminListingController.GetHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminListingApprove, adminListingController.ApproveHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminListingReject, adminListingController.RejectHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminListingRequestInfo, adminListingController.RequestInfoHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminListingRemove, adminListingController.RemoveHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminListingRestore, adminListingController.RestoreHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminListingRemovalApprove, adminListingController.ApproveRemovalHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminListingRemovalCancel, adminListingController.CancelRemovalHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminListingProgress, adminListingController.GetProgressHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminListingProgress, adminListingController.UpdateProgressHandler).Methods(http.MethodPatch)
	admin.HandleFunc(routes.Transactions, txController.CreateHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.Transactions, txController.ListHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.TransactionByID, txController.GetHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.TransactionStage, txController.UpdateStageHandler).Methods(http.MethodPatch)
	admin.HandleFunc(routes.TransactionNotifications, txController.SendNotificationHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminTickets, ticketController.ListByStatusHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.TicketStatus, ticketController.SetStatusHandler).Methods(http.MethodPatch)

	// Cron job setup
	c := cron.New(cron.WithLocation(time.UTC))
	_, err = c.AddFunc(moderationDigestSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		utils.Logger.Info("Starting moderation digest cron job...")
		if err := adminService.SendModerationDigest(ctx); err != nil {
			utils.Logger.WithError(err).Error("Failed to send moderation digest")
		}
	})
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to schedule moderation digest cron")
	}
	c.Start()
	defer c.Stop()

	co := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("marketplace-service failed to start:", err)
	}
}
