package main

import (
	"ShopKeeper/internal/assets"
	"ShopKeeper/internal/config"
	"ShopKeeper/internal/handlers"
	"ShopKeeper/internal/middleware"
	"ShopKeeper/internal/repo"
	"ShopKeeper/internal/service"
	"net/http"
	"os"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	// корень файлового хранилища должен существовать и быть записываемым
	if err := os.MkdirAll(cfg.UploadRoot, 0o755); err != nil {
		sugar.Fatalw("failed to prepare upload root", "path", cfg.UploadRoot, "error", err)
	}

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	itemRepo := repo.NewItemRepository(gormDB)
	codeRepo := repo.NewCodeRepository(gormDB)

	layout := assets.NewLayout(cfg.UploadRoot, cfg.UploadPrefix, sugar)
	migrator := assets.NewMigrator(layout, sugar)
	sweeper := assets.NewSweeper(layout, sugar)

	userService := service.NewUserService(userRepo)
	itemService := service.NewItemService(itemRepo, codeRepo, layout, migrator, sweeper, sugar)

	h := handlers.NewHandler(userService, itemService, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"UploadRoot", cfg.UploadRoot,
		"UploadPrefix", cfg.UploadPrefix,
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}
