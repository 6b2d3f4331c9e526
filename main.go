package main

import (
	"github.com/cliphost/cliphost/config"
	"github.com/cliphost/cliphost/notify"
	"github.com/cliphost/cliphost/routes"
	"github.com/cliphost/cliphost/storage"
	"github.com/cliphost/cliphost/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	store, err := storage.New(cfg.UploadDir)
	if err != nil {
		utils.Sugar.Fatalf("storage init failed: %v", err)
	}

	notifier := notify.New(cfg.WebhookURL, cfg.WebhookSendLink)
	if cfg.WebhookURL == "" {
		utils.Sugar.Info("no webhook URL configured, upload notifications disabled")
	}

	r := routes.SetupRouter(store, notifier)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
