package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/claritylabs/clarity/backend/internal/handler/chat"
	"github.com/claritylabs/clarity/backend/internal/handler/ws"
	"github.com/claritylabs/clarity/backend/internal/logger"
	middlewarePkg "github.com/claritylabs/clarity/backend/internal/middleware"
	chatService "github.com/claritylabs/clarity/backend/internal/service/chat"
	therapyService "github.com/claritylabs/clarity/backend/internal/service/therapy"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(therapySvc *therapyService.Service, chatSvc *chatService.Service, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(therapySvc, chatSvc)
	wsHandler := ws.New(therapySvc, log)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
