package handlers

import (
	"ShopKeeper/internal/config"
	"ShopKeeper/internal/middleware"
	"ShopKeeper/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	itemService *service.ItemService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	itemHandler := NewItemHandler(itemService, logger, config)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/test", userHandler.Status)

	// Item routes
	r.Post("/api/items", itemHandler.Create)
	r.Get("/api/items", itemHandler.List)
	r.Get("/api/items/{id}", itemHandler.Get)
	r.Put("/api/items/{id}", itemHandler.Update)
	r.Post("/api/items/{id}/duplicate", itemHandler.Duplicate)
	r.Delete("/api/items/{id}", itemHandler.Delete)

	return &Handler{Router: r}
}
