package entity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/domain"
)

func errInvalidConsumption(qty decimal.Decimal) error {
	return fmt.Errorf("cantidad %s no positiva: %w", qty.String(), domain.ErrInvalidInput)
}

func errOverConsumption(batchID string, qty, available decimal.Decimal) error {
	return fmt.Errorf("lote %s: consumo %s excede disponible %s: %w",
		batchID, qty.String(), available.String(), domain.ErrConflict)
}

func errOverRelease(batchID string, qty, consumed decimal.Decimal) error {
	return fmt.Errorf("lote %s: reversa %s excede lo consumido %s: %w",
		batchID, qty.String(), consumed.String(), domain.ErrConflict)
}
