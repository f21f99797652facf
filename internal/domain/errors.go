package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrMixedCategory     = errors.New("categorías de ítem mezcladas")
	ErrLockTimeout       = errors.New("tiempo de espera por bloqueo agotado")
)

// InsufficientStockError indica que los lotes disponibles no alcanzan para la
// cantidad solicitada. Shortfall es lo que faltó. Compatible con
// errors.Is(err, ErrInsufficientStock).
type InsufficientStockError struct {
	FarmID    string
	ItemID    string
	Requested decimal.Decimal
	Available decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: solicitado %s, disponible %s, faltante %s",
		e.Requested.String(), e.Available.String(), e.Shortfall.String())
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// MixedCategoryError indica que una mutación multi-ítem mezcla familias de ítem
// (alimento e insumo en la misma solicitud). Se rechaza antes de tocar lotes.
type MixedCategoryError struct {
	Categories []string
}

func (e *MixedCategoryError) Error() string {
	return fmt.Sprintf("mutación con categorías mezcladas: %v", e.Categories)
}

func (e *MixedCategoryError) Is(target error) bool {
	return target == ErrMixedCategory
}

// LockTimeoutError indica que no se pudo adquirir el bloqueo de filas dentro del
// lock_timeout configurado. El caller puede reintentar.
type LockTimeoutError struct {
	Resource string
	Err      error
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("bloqueo no adquirido sobre %s: %v", e.Resource, e.Err)
}

func (e *LockTimeoutError) Is(target error) bool {
	return target == ErrLockTimeout
}

func (e *LockTimeoutError) Unwrap() error {
	return e.Err
}
