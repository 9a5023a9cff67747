// Package router wires the HTTP handlers onto a ServeMux.
package router

import (
	"net/http"

	_ "github.com/princekumarofficial/videos-service/docs"
	"github.com/princekumarofficial/videos-service/internal/events"
	"github.com/princekumarofficial/videos-service/internal/http/handlers/health"
	"github.com/princekumarofficial/videos-service/internal/http/handlers/videos"
	wsHandler "github.com/princekumarofficial/videos-service/internal/http/handlers/websocket"
	"github.com/princekumarofficial/videos-service/internal/http/middleware"
	"github.com/princekumarofficial/videos-service/internal/storage"
	"github.com/princekumarofficial/videos-service/internal/websocket"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Deps struct {
	Storage storage.Storage
	// Publisher defaults to events.Discard when nil.
	Publisher events.Publisher
	// Hub enables GET /ws when set.
	Hub *websocket.Hub
	// RateLimit guards write routes when set.
	RateLimit *middleware.RateLimitConfig
	// Swagger mounts the API docs UI under /swagger/.
	Swagger bool
}

func New(deps Deps) http.Handler {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.Discard{}
	}

	write := func(h http.HandlerFunc) http.Handler {
		if deps.RateLimit == nil {
			return h
		}
		return deps.RateLimit.RateLimitedHandler(middleware.ActionWrites, h)
	}

	router := http.NewServeMux()

	router.HandleFunc("GET /video/{id}", videos.Get(deps.Storage))
	router.Handle("PUT /video/{id}", write(videos.Put(deps.Storage, publisher)))
	router.Handle("PATCH /video/{id}", write(videos.Patch(deps.Storage, publisher)))
	router.Handle("DELETE /video/{id}", write(videos.Delete(deps.Storage, publisher)))

	router.HandleFunc("GET /healthz", health.Healthz(deps.Storage))

	if deps.Hub != nil {
		router.HandleFunc("GET /ws", wsHandler.WebSocketHandler(deps.Hub))
	}

	if deps.Swagger {
		router.Handle("GET /swagger/", httpSwagger.WrapHandler)
	}

	return middleware.RequestLogger(router)
}
