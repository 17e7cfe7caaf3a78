package store

import (
	"fmt"
	"strings"
)

type Dimension string

const (
	DimTrust      Dimension = "trust"
	DimRespect    Dimension = "respect"
	DimAffection  Dimension = "affection"
	DimFear       Dimension = "fear"
	DimResentment Dimension = "resentment"
	DimDebt       Dimension = "debt"
)

// AllDimensions lists the dimensions in column order.
var AllDimensions = []Dimension{DimTrust, DimRespect, DimAffection, DimFear, DimResentment, DimDebt}

func (d Dimension) Valid() bool {
	switch d {
	case DimTrust, DimRespect, DimAffection, DimFear, DimResentment, DimDebt:
		return true
	}
	return false
}

func ParseDimension(value string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(value)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown relationship dimension: %s", value)
	}
	return d, nil
}

// Default is the value a dimension holds before any relationship row exists.
func (d Dimension) Default() float64 {
	switch d {
	case DimTrust, DimRespect, DimAffection:
		return 0.5
	}
	return 0
}

type Dimensions struct {
	Trust      float64 `json:"trust"`
	Respect    float64 `json:"respect"`
	Affection  float64 `json:"affection"`
	Fear       float64 `json:"fear"`
	Resentment float64 `json:"resentment"`
	Debt       float64 `json:"debt"`
}

func DefaultDimensions() Dimensions {
	return Dimensions{
		Trust:      DimTrust.Default(),
		Respect:    DimRespect.Default(),
		Affection:  DimAffection.Default(),
		Fear:       DimFear.Default(),
		Resentment: DimResentment.Default(),
		Debt:       DimDebt.Default(),
	}
}

func (d Dimensions) Get(dim Dimension) float64 {
	switch dim {
	case DimTrust:
		return d.Trust
	case DimRespect:
		return d.Respect
	case DimAffection:
		return d.Affection
	case DimFear:
		return d.Fear
	case DimResentment:
		return d.Resentment
	case DimDebt:
		return d.Debt
	}
	return 0
}

// With returns a copy with dim set to the clamped value. Unknown dimensions
// leave the copy unchanged.
func (d Dimensions) With(dim Dimension, value float64) Dimensions {
	value = Clamp(value)
	switch dim {
	case DimTrust:
		d.Trust = value
	case DimRespect:
		d.Respect = value
	case DimAffection:
		d.Affection = value
	case DimFear:
		d.Fear = value
	case DimResentment:
		d.Resentment = value
	case DimDebt:
		d.Debt = value
	}
	return d
}

func (d Dimensions) Clamped() Dimensions {
	return Dimensions{
		Trust:      Clamp(d.Trust),
		Respect:    Clamp(d.Respect),
		Affection:  Clamp(d.Affection),
		Fear:       Clamp(d.Fear),
		Resentment: Clamp(d.Resentment),
		Debt:       Clamp(d.Debt),
	}
}

// Clamp saturates v into [0, 1]. NaN clamps to 0.
func Clamp(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
