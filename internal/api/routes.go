package api

import (
	"github.com/bilgisen/pubserve/internal/middleware"
	"github.com/bilgisen/pubserve/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Route pairs a GET pattern with its handler.
type Route struct {
	Path    string
	Handler fiber.Handler
}

// Routes returns the routes in priority order. Fiber matches in
// registration order, so "/" must come before the wildcard, which also
// matches the empty path.
func (h *Handlers) Routes() []Route {
	return []Route{
		{Path: "/", Handler: h.Root},
		{Path: "/*", Handler: h.CatchAll},
	}
}

// SetupRoutes registers the public root routes on app.
func SetupRoutes(app *fiber.App, store *storage.Storage) {
	handlers := NewHandlers(store)

	// "/" first, then the wildcard
	for _, r := range handlers.Routes() {
		app.Get(r.Path, r.Handler)
	}
}

// NewApp creates the Fiber app serving store.
func NewApp(store *storage.Storage) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "pubserve",
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Global middleware. The access log wraps recover so a panicking
	// request is still logged with the 500 it produced.
	app.Use(middleware.RequestLogger())
	app.Use(recover.New())

	// Register routes
	SetupRoutes(app, store)

	return app
}
