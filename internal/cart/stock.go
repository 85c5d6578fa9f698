package cart

import "github.com/five82/tote/internal/shop"

// LowStockThreshold is the stock level below which a line shows a hint.
const LowStockThreshold = 15

// SelectableSizes returns the product's sizes that are in stock, in catalog
// order.
func SelectableSizes(p shop.Product) []string {
	sizes := make([]string, 0, len(p.Stock))
	for _, s := range p.Stock {
		if s.Stock > 0 {
			sizes = append(sizes, s.Size)
		}
	}
	return sizes
}

// IsSelectable reports whether size is offered for p.
func IsSelectable(p shop.Product, size string) bool {
	for _, s := range SelectableSizes(p) {
		if s == size {
			return true
		}
	}
	return false
}

// MaxQuantity is min(MaxQuantityPerLine, stock for size).
func MaxQuantity(p shop.Product, size string) int {
	return min(shop.MaxQuantityPerLine, max(p.StockFor(size), 0))
}

// QuantityOptions lists the quantities offered for size. It is empty when the
// size is out of stock.
func QuantityOptions(p shop.Product, size string) []int {
	n := MaxQuantity(p, size)
	opts := make([]int, n)
	for i := range opts {
		opts[i] = i + 1
	}
	return opts
}

// ClampQuantity limits q to the ceiling for size, never going below one.
func ClampQuantity(p shop.Product, size string, q int) int {
	ceil := MaxQuantity(p, size)
	if q > ceil {
		q = ceil
	}
	if q < 1 {
		q = 1
	}
	return q
}

// nextSize returns the selectable size after current, wrapping around. step
// is +1 or -1.
func nextSize(p shop.Product, current string, step int) (string, bool) {
	sizes := SelectableSizes(p)
	if len(sizes) == 0 {
		return "", false
	}
	for i, s := range sizes {
		if s == current {
			return sizes[(i+step+len(sizes))%len(sizes)], true
		}
	}
	return sizes[0], true
}
