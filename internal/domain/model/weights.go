package model

import (
	"fmt"
	"math"
	"time"
)

// WeightTolerance bounds how far a weight vector's sum may drift from 1.
const WeightTolerance = 1e-6

// WeightVector holds the proportions used to fuse layer scores into a final
// score. The most recently committed vector is current.
type WeightVector struct {
	ID         string             `json:"id,omitempty"`
	Version    int                `json:"version"`
	Screening  float64            `json:"screening"`
	Technical  float64            `json:"technical"`
	Behavioral float64            `json:"behavioral"`
	SubWeights map[string]float64 `json:"sub_weights,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// DefaultWeights returns the baseline vector used before any training run.
func DefaultWeights() WeightVector {
	return WeightVector{Screening: 0.30, Technical: 0.40, Behavioral: 0.30}
}

// Sum returns screening + technical + behavioral.
func (w WeightVector) Sum() float64 {
	return w.Screening + w.Technical + w.Behavioral
}

// Validate checks that no weight is negative and the triple sums to 1.
func (w WeightVector) Validate() error {
	for _, l := range Layers() {
		if v := w.Get(l); v < 0 {
			return fmt.Errorf("%w: %s=%.4f", ErrNegativeWeight, l, v)
		}
	}
	if math.Abs(w.Sum()-1) > WeightTolerance {
		return fmt.Errorf("%w: sum=%.8f", ErrWeightsNotNormalized, w.Sum())
	}
	return nil
}

// Normalize rescales the triple so it sums to exactly 1. Negative components
// are clamped to zero first; an all-zero vector becomes DefaultWeights.
func (w WeightVector) Normalize() WeightVector {
	w.Screening = math.Max(0, w.Screening)
	w.Technical = math.Max(0, w.Technical)
	w.Behavioral = math.Max(0, w.Behavioral)
	sum := w.Sum()
	if sum == 0 {
		d := DefaultWeights()
		w.Screening, w.Technical, w.Behavioral = d.Screening, d.Technical, d.Behavioral
		return w
	}
	w.Screening /= sum
	w.Technical /= sum
	// Assign the remainder so floating error never leaks into the sum.
	w.Behavioral = 1 - w.Screening - w.Technical
	return w
}

// Fuse combines three 0-100 layer scores into a 0-100 final score, rounded to
// the nearest integer.
func (w WeightVector) Fuse(screening, technical, behavioral float64) float64 {
	return math.Round(w.Screening*screening + w.Technical*technical + w.Behavioral*behavioral)
}

// Get returns the weight for a layer.
func (w WeightVector) Get(l Layer) float64 {
	switch l {
	case LayerScreening:
		return w.Screening
	case LayerTechnical:
		return w.Technical
	case LayerBehavioral:
		return w.Behavioral
	}
	return 0
}

// WeightDelta is the per-layer change applied by one training run.
type WeightDelta struct {
	Screening  float64 `json:"screening"`
	Technical  float64 `json:"technical"`
	Behavioral float64 `json:"behavioral"`
}

// Diff returns next minus w, layer by layer.
func (w WeightVector) Diff(next WeightVector) WeightDelta {
	return WeightDelta{
		Screening:  next.Screening - w.Screening,
		Technical:  next.Technical - w.Technical,
		Behavioral: next.Behavioral - w.Behavioral,
	}
}
