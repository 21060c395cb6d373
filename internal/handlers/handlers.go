package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"FindIt/internal/config"
	"FindIt/internal/middleware"
	"FindIt/internal/service"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров. rdb может быть nil, тогда лимит
// попыток ввода кода держится только на счётчике в БД.
func NewHandler(
	userService *service.UserService,
	itemService *service.ItemService,
	claimService *service.ClaimService,
	logger *zap.SugaredLogger,
	config *config.Config,
	rdb *redis.Client,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	itemHandler := NewItemHandler(itemService, logger)
	claimHandler := NewClaimHandler(claimService, logger)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Get("/api/user/me", userHandler.Me)

	// Items
	r.Post("/api/items", itemHandler.Report)
	r.Get("/api/items", itemHandler.ListMine)
	r.Get("/api/items/{itemID}", itemHandler.Get)

	// Claims
	r.Route("/api/claims", func(r chi.Router) {
		r.Post("/", claimHandler.Create)
		r.Get("/", claimHandler.List)
		r.Route("/{claimID}", func(r chi.Router) {
			r.Get("/", claimHandler.Get)
			r.Get("/messages", claimHandler.Thread)
			r.Post("/messages", claimHandler.PostMessage)
			r.Get("/view", claimHandler.View)
			r.Post("/identity/request", claimHandler.RequestIdentity)
			r.Post("/identity/submit", claimHandler.SubmitIdentity)
			r.Post("/handover/initiate", claimHandler.InitiateHandover)
			r.Post("/handover/code", claimHandler.StartCode)
			r.With(middleware.VerifyRateLimit(config.VerifyRateLimit(), rdb)).
				Post("/handover/verify", claimHandler.VerifyCode)
			r.Post("/reject", claimHandler.Reject)
		})
	})

	return &Handler{Router: r}
}
