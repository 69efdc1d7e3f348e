package handlers

import (
	"time"

	"media-stamp/internal/usecases"
	fe "media-stamp/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CleanupHandler struct {
	cleanupUC usecases.CleanupService
	maxAge    time.Duration
	log       *zap.Logger
}

func NewCleanupHandler(cleanupUC usecases.CleanupService, maxAge time.Duration, log *zap.Logger) *CleanupHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupHandler{
		cleanupUC: cleanupUC,
		maxAge:    maxAge,
		log:       log,
	}
}

// Cleanup is the manual trigger for the scheduled intermediate cleanup.
// ?max_age=1h overrides the configured age.
//
// @Summary      Delete stale intermediates
// @Description  Removes watermarked intermediates older than max_age from the image folders
// @Tags         Maintenance
// @Produce      json
// @Param        max_age  query     string  false  "Go duration, defaults to the configured retention"
// @Success      200      {object}  map[string]interface{}
// @Router       /cleanup [post]
func (h *CleanupHandler) Cleanup(c *fiber.Ctx) error {
	maxAge := h.maxAge
	if raw := c.Query("max_age"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			return fe.HandleError(c, h.log, fe.ErrInvalidInput("max_age must be a duration such as 30m"))
		}
		maxAge = parsed
	}

	removed, err := h.cleanupUC.CleanupIntermediates(maxAge)
	if err != nil {
		return fe.HandleError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"removed": removed})
}
