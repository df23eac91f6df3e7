package stock

import (
	"errors"
	"fmt"
)

// NotFoundError: product yang direferensikan item tidak ada. Fatal untuk
// reserve; di path deduct cuma di-warn + skip (lihat Ledger.DeductTx).
type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// InsufficientStockError bawa detail supaya caller bisa kasih pesan yang
// actionable (berapa yang diminta vs berapa yang tersedia).
type InsufficientStockError struct {
	ProductID   string
	VariationID string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	if e.VariationID != "" {
		return fmt.Sprintf("insufficient stock for product %s variant %s: requested %d, available %d",
			e.ProductID, e.VariationID, e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ConcurrentModificationError: jumlah row yang benar-benar berubah tidak sama
// dengan jumlah operasi yang dikirim. Artinya ada writer lain yang mengubah
// shape record di antara validasi dan write; caller harus retry dari read
// yang fresh.
type ConcurrentModificationError struct {
	Submitted int
	Modified  int64
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("concurrent modification: %d ops submitted, %d rows modified", e.Submitted, e.Modified)
}

func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

// InsufficientDetails bongkar error gabungan (errors.Join dari validasi batch)
// jadi daftar shortfall per item.
func InsufficientDetails(err error) []*InsufficientStockError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*InsufficientStockError
		for _, e := range joined.Unwrap() {
			out = append(out, InsufficientDetails(e)...)
		}
		return out
	}
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return []*InsufficientStockError{ise}
	}
	return nil
}

func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
