package errors

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func HandleError(c *fiber.Ctx, log *zap.Logger, err error) error {
	if err == nil {
		return nil
	}

	var me *MediaError
	if stderrors.As(err, &me) {
		if me.Err != nil {
			log.Warn("request failed", zap.String("code", me.Code), zap.Error(me.Err))
		}

		var status int
		switch me.Code {
		case CodeNotFound:
			status = fiber.StatusNotFound
		case CodeInvalidInput, CodeUnsupported:
			status = fiber.StatusBadRequest
		case CodeDecode, CodeToolFailed:
			status = fiber.StatusUnprocessableEntity
		default:
			status = fiber.StatusInternalServerError
		}

		return c.Status(status).JSON(fiber.Map{
			"error":   me.Code,
			"message": me.Message,
		})
	}

	log.Error("unexpected error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   CodeInternal,
		"message": "internal server error",
	})
}
