package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// AreasHandler manages area endpoints. The router restricts the whole group
// to SUPERADMIN.
type AreasHandler struct {
	areas *service.AreaService
}

// NewAreasHandler constructs handler.
func NewAreasHandler(areaService *service.AreaService) *AreasHandler {
	return &AreasHandler{areas: areaService}
}

// CreateArea POST /areas.
func (h *AreasHandler) CreateArea(c *fiber.Ctx) error {
	var req dto.AreaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	area, err := h.areas.CreateArea(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewAreaResponse(area))
}

// ListAreas GET /areas.
func (h *AreasHandler) ListAreas(c *fiber.Ctx) error {
	areas, err := h.areas.ListAreas(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.AreaResponse, 0, len(areas))
	for i := range areas {
		items = append(items, dto.NewAreaResponse(&areas[i]))
	}
	return c.JSON(items)
}

// GetArea GET /areas/:id.
func (h *AreasHandler) GetArea(c *fiber.Ctx) error {
	area, err := h.areas.GetArea(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAreaResponse(area))
}

// UpdateArea PUT /areas/:id.
func (h *AreasHandler) UpdateArea(c *fiber.Ctx) error {
	var req dto.AreaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	area, err := h.areas.UpdateArea(c.Context(), c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAreaResponse(area))
}

// DeleteArea DELETE /areas/:id.
func (h *AreasHandler) DeleteArea(c *fiber.Ctx) error {
	if err := h.areas.DeleteArea(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
