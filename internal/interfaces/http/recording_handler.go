package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/granja-pro/internal/application/dto"
	"github.com/tu-usuario/granja-pro/internal/application/recording"
)

// RecordingHandler maneja las peticiones HTTP de registros diarios (protegido).
type RecordingHandler struct {
	processor *recording.Processor
}

// NewRecordingHandler construye el handler.
func NewRecordingHandler(processor *recording.Processor) *RecordingHandler {
	return &RecordingHandler{processor: processor}
}

// Process procesa un registro diario de forma atómica.
// POST /api/recordings
func (h *RecordingHandler) Process(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RecordingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result := h.processor.ProcessRecording(c.Context(), actor, toRecordingInput(in))
	return c.Status(resultStatus(result.Success, fiber.StatusCreated)).JSON(result)
}

// ProcessBatch procesa N registros con aislamiento por entrada.
// POST /api/recordings/batch
func (h *RecordingHandler) ProcessBatch(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.BatchRecordingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Recordings) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "recordings vacío"})
	}
	inputs := make([]recording.RecordingInput, 0, len(in.Recordings))
	for _, r := range in.Recordings {
		inputs = append(inputs, toRecordingInput(r))
	}
	result := h.processor.ProcessBatchRecordings(c.Context(), actor, inputs)
	// Multi-status: el resultado detalla éxito/falla por entrada
	return c.JSON(result)
}

// ProcessAsync valida en línea y encola el procesamiento.
// POST /api/recordings/async
func (h *RecordingHandler) ProcessAsync(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RecordingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result := h.processor.ProcessRecordingAsync(c.Context(), actor, toRecordingInput(in))
	return c.Status(resultStatus(result.Success, fiber.StatusAccepted)).JSON(result)
}

// Rollback revierte un registro diario confirmado.
// DELETE /api/recordings/:id
func (h *RecordingHandler) Rollback(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return unauthorized(c)
	}
	result := h.processor.RollbackRecording(c.Context(), actor, c.Params("id"))
	return c.Status(resultStatus(result.Success, fiber.StatusOK)).JSON(result)
}

func resultStatus(success bool, okStatus int) int {
	if success {
		return okStatus
	}
	return fiber.StatusUnprocessableEntity
}

func toRecordingInput(in dto.RecordingRequest) recording.RecordingInput {
	input := recording.RecordingInput{
		FlockID:   in.FlockID,
		FarmID:    in.FarmID,
		Date:      in.Date,
		Mortality: in.Mortality,
		Culling:   in.Culling,
		Notes:     in.Notes,
	}
	for _, l := range in.FeedLines {
		input.FeedLines = append(input.FeedLines, recording.UsageLineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	for _, l := range in.SupplyLines {
		input.SupplyLines = append(input.SupplyLines, recording.UsageLineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return input
}
