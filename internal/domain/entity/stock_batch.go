package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBatch representa un lote de stock (alimento o insumo) recibido en una
// granja en una fecha concreta. Es un libro mayor de solo-anexado: los campos
// QuantityUsed y QuantityMutated solo crecen; el lote nunca se borra (salvo la
// reversa explícita de una mutación con destino intacto).
// Invariante: QuantityUsed + QuantityMutated <= QuantityIn.
type StockBatch struct {
	ID              string
	FarmID          string
	ItemID          string
	OriginBatchID   string // lote origen si proviene de una mutación; vacío si es recepción directa
	EntryDate       time.Time
	CreatedOrder    int64 // secuencia de creación; desempate FIFO entre lotes del mismo día
	QuantityIn      decimal.Decimal
	QuantityUsed    decimal.Decimal
	QuantityMutated decimal.Decimal
	UnitCost        decimal.Decimal
	CreatedAt       time.Time
	CreatedBy       string
}

// Available devuelve la cantidad disponible del lote: in - used - mutated.
func (b *StockBatch) Available() decimal.Decimal {
	return b.QuantityIn.Sub(b.QuantityUsed).Sub(b.QuantityMutated)
}

// ConsumeUsed incrementa QuantityUsed en qty. Falla si excede el disponible,
// protegiendo el invariante del lote.
func (b *StockBatch) ConsumeUsed(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return errInvalidConsumption(qty)
	}
	if qty.GreaterThan(b.Available()) {
		return errOverConsumption(b.ID, qty, b.Available())
	}
	b.QuantityUsed = b.QuantityUsed.Add(qty)
	return nil
}

// ConsumeMutated incrementa QuantityMutated en qty (transferencia a otra granja).
// Falla si excede el disponible.
func (b *StockBatch) ConsumeMutated(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return errInvalidConsumption(qty)
	}
	if qty.GreaterThan(b.Available()) {
		return errOverConsumption(b.ID, qty, b.Available())
	}
	b.QuantityMutated = b.QuantityMutated.Add(qty)
	return nil
}

// ReleaseUsed revierte un consumo previo de QuantityUsed (reversa de un registro diario).
// Nunca deja el campo por debajo de cero.
func (b *StockBatch) ReleaseUsed(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return errInvalidConsumption(qty)
	}
	if qty.GreaterThan(b.QuantityUsed) {
		return errOverRelease(b.ID, qty, b.QuantityUsed)
	}
	b.QuantityUsed = b.QuantityUsed.Sub(qty)
	return nil
}

// ReleaseMutated revierte un incremento previo de QuantityMutated (reversa de mutación).
func (b *StockBatch) ReleaseMutated(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return errInvalidConsumption(qty)
	}
	if qty.GreaterThan(b.QuantityMutated) {
		return errOverRelease(b.ID, qty, b.QuantityMutated)
	}
	b.QuantityMutated = b.QuantityMutated.Sub(qty)
	return nil
}

// Untouched indica que el lote no ha sido consumido ni mutado (requisito para
// eliminarlo al revertir la mutación que lo creó).
func (b *StockBatch) Untouched() bool {
	return b.QuantityUsed.IsZero() && b.QuantityMutated.IsZero()
}
