package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/granja-pro/internal/application/dto"
	appflock "github.com/tu-usuario/granja-pro/internal/application/flock"
	"github.com/tu-usuario/granja-pro/internal/domain/repository"
)

// FlockHandler maneja eventos de baja manuales y la consulta del estado
// sincronizado de una parvada.
type FlockHandler struct {
	events     *appflock.EventUseCase
	sync       *appflock.SyncUseCase
	flockRepo  repository.FlockRepository
	eventsRepo repository.DepletionEventRepository
}

// NewFlockHandler construye el handler.
func NewFlockHandler(events *appflock.EventUseCase, sync *appflock.SyncUseCase, flockRepo repository.FlockRepository, eventsRepo repository.DepletionEventRepository) *FlockHandler {
	return &FlockHandler{events: events, sync: sync, flockRepo: flockRepo, eventsRepo: eventsRepo}
}

// RegisterEvent crea un evento de baja manual y sincroniza la parvada.
// POST /api/flocks/events
func (h *FlockHandler) RegisterEvent(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.DepletionEventRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	event, err := h.events.RegisterEvent(c.Context(), actor, appflock.DepletionEventInput{
		FlockID:  in.FlockID,
		Type:     in.Type,
		Quantity: in.Quantity,
		Date:     in.Date,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// UpdateEvent corrige un evento existente y re-sincroniza.
// PUT /api/flocks/events/:id
func (h *FlockHandler) UpdateEvent(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.DepletionEventRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.events.UpdateEvent(c.Context(), actor, c.Params("id"), appflock.DepletionEventInput{
		FlockID:  in.FlockID,
		Type:     in.Type,
		Quantity: in.Quantity,
		Date:     in.Date,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "evento actualizado"})
}

// DeleteEvent elimina un evento y re-sincroniza la parvada.
// DELETE /api/flocks/events/:id
func (h *FlockHandler) DeleteEvent(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.events.DeleteEvent(c.Context(), actor, c.Params("id")); err != nil {
		return stockError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "evento eliminado"})
}

// ListEvents lista los eventos de baja de una parvada.
// GET /api/flocks/:id/events
func (h *FlockHandler) ListEvents(c *fiber.Ctx) error {
	events, err := h.eventsRepo.ListByFlock(c.Context(), c.Params("id"))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(events)
}

// GetState devuelve la proyección sincronizada de la parvada.
// GET /api/flocks/:id/state
func (h *FlockHandler) GetState(c *fiber.Ctx) error {
	state, err := h.flockRepo.GetState(c.Context(), c.Params("id"))
	if err != nil {
		return stockError(c, err)
	}
	if state == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "estado no sincronizado"})
	}
	return c.JSON(state)
}

// Sync fuerza la re-sincronización desde cero de la parvada.
// POST /api/flocks/:id/sync
func (h *FlockHandler) Sync(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.sync.SyncFlock(c.Context(), actor, c.Params("id")); err != nil {
		return stockError(c, err)
	}
	state, err := h.flockRepo.GetState(c.Context(), c.Params("id"))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(state)
}
