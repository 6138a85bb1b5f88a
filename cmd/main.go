package main

import (
	"context"
	"os"

	"wellness/cache"
	"wellness/config"
	"wellness/routes"
	"wellness/services"
	"wellness/utils"

	"go.uber.org/zap"
)

func main() {
	utils.InitLogger()
	defer utils.Logger.Sync()
	utils.InitMetrics()

	config.InitDB()
	if err := cache.InitRedis(utils.L()); err != nil {
		utils.L().Fatal("redis_init_failed", zap.Error(err))
	}
	defer cache.Close()

	services.InitNotifyDeps(config.DB)

	registry := services.NewClientRegistry(utils.L())

	push, err := services.NewSNSPushManager(utils.L())
	if err != nil {
		utils.L().Fatal("push_manager_init_failed", zap.Error(err))
	}

	version := os.Getenv("SW_CACHE_VERSION")
	if version == "" {
		version = services.DefaultCacheVersion
	}
	origin := os.Getenv("APP_ORIGIN")
	if origin == "" {
		origin = "http://localhost:8080"
	}

	worker := services.NewWorker(services.WorkerConfig{
		Version:    version,
		Origin:     origin,
		Cache:      &cache.RedisStore{C: cache.Client},
		Fetch:      services.NewHTTPFetcher(),
		Clients:    registry,
		Push:       push,
		OnRendered: services.RecordNotification,
		Log:        utils.L(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	platform := services.NewDevicePlatform(worker)
	gateway := services.NewNotificationGateway(
		platform,
		services.NewGormSubscriptionDirectory(config.DB),
		os.Getenv("VAPID_PUBLIC_KEY"),
		utils.L(),
	)

	scheduler := services.NewReminderScheduler(
		services.GormAccountLister(config.DB),
		func(accountID uint) *services.LocalStore {
			return services.NewLocalStore(services.NewGormDeviceStore(config.DB, accountID), utils.L())
		},
		worker,
		utils.L(),
	)
	scheduler.Start()
	defer scheduler.Stop()

	r := routes.SetupRouter(routes.Deps{
		Gateway:  gateway,
		Worker:   worker,
		Platform: platform,
		Registry: registry,
	})
	r.Run(":8080")
}
