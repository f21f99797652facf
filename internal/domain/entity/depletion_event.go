package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento de baja de aves.
const (
	DepletionMortality = "mortality" // mortalidad
	DepletionCulling   = "culling"   // descarte
)

// DepletionEvent es una baja de aves de la parvada (mortalidad o descarte).
// Cada escritura (create/update/delete) dispara la sincronización de agregados
// dentro de la misma transacción.
type DepletionEvent struct {
	ID          string
	FlockID     string
	Type        string // mortality | culling
	Quantity    decimal.Decimal
	Date        time.Time
	RecordingID string // registro diario que lo originó; vacío si fue manual
	CreatedAt   time.Time
	CreatedBy   string
}

// ValidDepletionType indica si el tipo de baja es conocido.
func ValidDepletionType(t string) bool {
	return t == DepletionMortality || t == DepletionCulling
}
