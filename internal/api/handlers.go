package api

import (
	"errors"
	"io/fs"
	"net/url"

	"github.com/bilgisen/pubserve/internal/logger"
	"github.com/bilgisen/pubserve/internal/models"
	"github.com/bilgisen/pubserve/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	storage *storage.Storage
}

func NewHandlers(store *storage.Storage) *Handlers {
	return &Handlers{storage: store}
}

// Root handles GET /. There is no fallback beyond the index document.
func (h *Handlers) Root(c *fiber.Ctx) error {
	asset, err := h.storage.OpenIndex(c.UserContext())
	if err != nil {
		logMiss(c, err)
		// The error handler renders this as a plain "Not Found"
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return sendAsset(c, asset)
}

// CatchAll handles GET /* by serving the requested file from the public
// root, or the index document when the file cannot be served.
func (h *Handlers) CatchAll(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		logger.Get().Debug().
			Err(err).
			Str("path", c.Path()).
			Msg("Undecodable path, serving index")
		return h.Root(c)
	}

	asset, err := h.storage.Open(c.UserContext(), name)
	if err != nil {
		// Unknown paths belong to the client-side router
		logMiss(c, err)
		return h.Root(c)
	}

	return sendAsset(c, asset)
}

// sendAsset hands the open file to the response. Fasthttp closes the body
// stream once it has been written or when the response is reset.
func sendAsset(c *fiber.Ctx, asset *models.Asset) error {
	c.Set(fiber.HeaderContentType, asset.ContentType)
	return c.SendStream(asset.Body, int(asset.Size))
}

func logMiss(c *fiber.Ctx, err error) {
	event := logger.Get().Debug()
	if !errors.Is(err, fs.ErrNotExist) {
		// Permission problems and escape attempts end up here.
		event = logger.Get().Warn()
	}
	event.
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("Asset not served")
}
