package handler

import (
	"net/http"

	"tipjar-backend/internal/apperr"
	"tipjar-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type CreatorHandler struct {
	creatorService service.CreatorService
}

func NewCreatorHandler(creatorService service.CreatorService) *CreatorHandler {
	return &CreatorHandler{
		creatorService: creatorService,
	}
}

func (h *CreatorHandler) Progress(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID := c.Param("id")
	if creatorID == "" {
		return apperr.Validation("creator id is required")
	}

	progress, err := h.creatorService.Progress(ctx, creatorID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, progress)
}

func (h *CreatorHandler) Donations(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID := c.Param("id")
	if creatorID == "" {
		return apperr.Validation("creator id is required")
	}

	donations, err := h.creatorService.Donations(ctx, creatorID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, donations)
}
