package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/granja-pro/internal/application/dto"
	appstock "github.com/tu-usuario/granja-pro/internal/application/stock"
	"github.com/tu-usuario/granja-pro/internal/domain"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del motor de stock (protegido).
type StockHandler struct {
	deplete *appstock.DepleteUseCase
	mutate  *appstock.MutateUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(deplete *appstock.DepleteUseCase, mutate *appstock.MutateUseCase) *StockHandler {
	return &StockHandler{deplete: deplete, mutate: mutate}
}

// Deplete consume stock FIFO de un (granja, ítem).
// POST /api/stock/deplete
func (h *StockHandler) Deplete(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.DepleteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.deplete.Deplete(c.Context(), actor, appstock.DepleteInput{
		FarmID:   in.FarmID,
		ItemID:   in.ItemID,
		Quantity: in.Quantity,
		Date:     in.Date,
	})
	if err != nil {
		return stockError(c, err)
	}

	out := dto.DepleteResponse{TotalConsumed: result.TotalConsumed}
	for _, consumed := range result.Consumed {
		out.Consumed = append(out.Consumed, dto.ConsumptionDTO{
			BatchID:  consumed.BatchID,
			Quantity: consumed.Quantity,
			UnitCost: consumed.UnitCost,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PreviewDeplete simula el consumo sin escribir nada.
// POST /api/stock/deplete/preview
func (h *StockHandler) PreviewDeplete(c *fiber.Ctx) error {
	if _, ok := requireActor(c); !ok {
		return unauthorized(c)
	}
	var in dto.PreviewDepleteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	preview, err := h.deplete.PreviewDeplete(c.Context(), in.FarmID, in.ItemID, in.Quantity)
	if err != nil {
		return stockError(c, err)
	}

	out := dto.PreviewDepleteResponse{
		CanProcess:     preview.CanProcess,
		TotalAvailable: preview.TotalAvailable,
		Shortfall:      preview.Shortfall,
	}
	for _, b := range preview.Batches {
		out.Batches = append(out.Batches, dto.BatchPreviewDTO{
			BatchID:   b.BatchID,
			EntryDate: b.EntryDate,
			Available: b.Available,
			Take:      b.Take,
		})
	}
	return c.JSON(out)
}

// Mutate traslada stock entre granjas (una sola familia por solicitud).
// POST /api/stock/mutations
func (h *StockHandler) Mutate(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.MutateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]appstock.MutateItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, appstock.MutateItemInput{ItemID: it.ItemID, Quantity: it.Quantity})
	}
	mutation, err := h.mutate.Mutate(c.Context(), actor, appstock.MutateInput{
		FromFarmID: in.FromFarmID,
		ToFarmID:   in.ToFarmID,
		Items:      items,
		Date:       in.Date,
		Notes:      in.Notes,
	})
	if err != nil {
		return stockError(c, err)
	}

	out := dto.MutationResponse{
		ID:         mutation.ID,
		FromFarmID: mutation.FromFarmID,
		ToFarmID:   mutation.ToFarmID,
		Date:       mutation.Date,
		Notes:      mutation.Notes,
	}
	for _, it := range mutation.Items {
		out.Items = append(out.Items, dto.MutationItemDTO{
			ItemID:        it.ItemID,
			SourceBatchID: it.SourceBatchID,
			DestBatchID:   it.DestBatchID,
			Quantity:      it.Quantity,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ReverseMutation deshace un traslado completo.
// DELETE /api/stock/mutations/:id
func (h *StockHandler) ReverseMutation(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.mutate.ReverseMutation(c.Context(), actor, c.Params("id")); err != nil {
		return stockError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "mutación revertida"})
}

// requireActor arma el Actor explícito desde los locals del auth middleware.
func requireActor(c *fiber.Ctx) (entity.Actor, bool) {
	userID := GetUserID(c)
	if userID == "" {
		return entity.Actor{}, false
	}
	return entity.NewActor(userID, time.Now()), true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

// stockError mapea los errores del dominio a códigos HTTP.
func stockError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"code":      "INSUFFICIENT_STOCK",
			"message":   "stock insuficiente",
			"item_id":   insufficient.ItemID,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
			"shortfall": insufficient.Shortfall,
		})
	}
	switch {
	case errors.Is(err, domain.ErrMixedCategory):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MIXED_CATEGORY", Message: "la mutación no puede mezclar familias de ítem"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrLockTimeout):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOCK_TIMEOUT", Message: "stock bloqueado por otra operación, reintente"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
