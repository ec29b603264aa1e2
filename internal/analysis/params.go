package analysis

import (
	"fmt"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/config"
)

// Params are the per-run analysis parameters.
type Params struct {
	// Percentile is the zone threshold percentile in [0, 100].
	Percentile float64 `json:"percentile" validate:"gte=0,lte=100"`

	// Percentiles is the trade-off list. Results keep this order.
	Percentiles []float64 `json:"percentiles,omitempty" validate:"dive,gte=0,lte=100"`

	// BinWidth is the orientation bin width in degrees; it must divide 180.
	BinWidth float64 `json:"bin_width" validate:"divides180"`

	// BufferDistances are fault buffer distances in grid length units.
	BufferDistances []float64 `json:"buffer_distances,omitempty" validate:"dive,gte=0"`

	// MaxCellBudget caps full-resolution work; 0 disables the cap.
	MaxCellBudget int `json:"max_cell_budget" validate:"gte=0"`

	// CellSizeOverride replaces the georeferenced cell size when positive.
	CellSizeOverride float64 `json:"cell_size_override,omitempty" validate:"gte=0"`

	// Workers bounds batch concurrency; 0 runs every entry at once.
	Workers int `json:"workers,omitempty" validate:"gte=0"`
}

// DefaultParams returns the parameters configured for the process.
func DefaultParams(cfg *config.Config) Params {
	return Params{
		Percentile:       cfg.Percentile,
		Percentiles:      append([]float64(nil), cfg.Percentiles...),
		BinWidth:         cfg.BinWidth,
		BufferDistances:  append([]float64(nil), cfg.BufferDistances...),
		MaxCellBudget:    cfg.MaxCellBudget,
		CellSizeOverride: cfg.CellSizeOverride,
		Workers:          cfg.Workers,
	}
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if err := config.Validate(p); err != nil {
		return fmt.Errorf("invalid analysis parameters: %w", err)
	}
	return nil
}
