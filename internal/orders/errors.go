package orders

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrItemNotFound  = errors.New("order item not found")

	// ErrOrderNotEditable: status order di luar himpunan editable; mutasi item
	// ditolak sebelum menyentuh stok atau totals.
	ErrOrderNotEditable = errors.New("order is not editable in its current status")

	// ErrVersionConflict: predicate version di write totals tidak match,
	// ada edit konkuren. Caller retry dari read yang fresh.
	ErrVersionConflict = errors.New("order was modified concurrently")

	ErrInvalidItemInput = errors.New("invalid order item input")
)
