package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show secondary columns such
	// as brand and order dates.
	LayoutWideWidth = 120
)

// Column widths shared by the list views.
const (
	colProduct = 28
	colSize    = 6
	colQty     = 5
	colMoney   = 11
	colStatus  = 18
	colName    = 22
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// ToastTTL is how long a notification stays on screen.
	ToastTTL = 4 * time.Second
)

// maxToasts caps how many notifications are stacked at once.
const maxToasts = 3
