package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nnhatnam05/pizza-dolce-staff-console/client"
	"github.com/nnhatnam05/pizza-dolce-staff-console/config"
	"github.com/nnhatnam05/pizza-dolce-staff-console/hub"
	"github.com/nnhatnam05/pizza-dolce-staff-console/router"
	"github.com/nnhatnam05/pizza-dolce-staff-console/services"
	"github.com/nnhatnam05/pizza-dolce-staff-console/store"
	"github.com/nnhatnam05/pizza-dolce-staff-console/utils"
)

func init() {
	// Load .env file di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	// Initialize logger
	utils.InfoLogger = logrus.New()
	utils.ErrorLogger = logrus.New()

	utils.InfoLogger.SetOutput(os.Stdout)
	utils.ErrorLogger.SetOutput(os.Stderr)

	utils.InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
	utils.ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	// Database preferensi lokal (token auth + bahasa UI)
	if _, err := utils.InitPrefs(cfg.DataDir); err != nil {
		utils.ErrorLogger.Fatalf("Failed to open preference store: %v", err)
	}

	// Token dari env menang; kalau kosong pakai yang dipersist
	tokenSource := func() string {
		if cfg.AuthToken != "" {
			return cfg.AuthToken
		}
		return utils.AuthToken()
	}

	// Set gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	st := store.NewStore()
	restClient := client.NewRestClient(cfg.APIBaseURL, tokenSource)

	// Setiap perubahan snapshot disiarkan ke browser staff
	st.Subscribe(func(snap *store.Snapshot) {
		hub.BroadcastStateSync(store.Project(snap))
	})

	reconciler := services.NewReconciler(restClient, st)
	reconciler.Interval = cfg.PollInterval
	reconciler.Start()
	defer reconciler.Stop()

	ingestor := services.NewEventIngestor(st)
	subscriber := client.NewSubscriber(cfg.WSURL, tokenSource, ingestor.Ingest)
	subscriber.OnReconnect = reconciler.Reconcile
	subscriber.Start()
	defer subscriber.Stop()

	paymentTimer := services.NewPaymentTimer(restClient, st)
	paymentTimer.Notify = hub.BroadcastStaffNotification
	paymentTimer.Start()
	defer paymentTimer.Stop()

	statusCtrl := services.NewStatusController(restClient, st, reconciler)

	r := router.SetupRouter(st, statusCtrl, reconciler)
	utils.InfoLogger.Printf("Staff console listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		utils.ErrorLogger.Fatalf("Server stopped: %v", err)
	}
}
