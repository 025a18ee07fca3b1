package main

import (
	"github.com/cppla/postboard/config"
	"github.com/cppla/postboard/gateway"
	"github.com/cppla/postboard/live"
	"github.com/cppla/postboard/metrics"
	"github.com/cppla/postboard/routes"
	"github.com/cppla/postboard/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync()

	gw := gateway.NewClient(gateway.Options{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.APITimeout(),
		Sentinel: cfg.Sentinel(),
		Logger:   utils.Logger,
	})
	hub := live.NewHub(cfg.SessionTTL(), cfg.ToastTTL(), utils.Logger)

	r := routes.SetupRouter(gw, hub, metrics.Registry())

	utils.Sugar.Infof("Starting server on port %s (graceful), remote API %s", cfg.AppPort, cfg.APIBaseURL)
	if err := utils.GraceServer(":"+cfg.AppPort, routes.Handler(r), hub.Close); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
