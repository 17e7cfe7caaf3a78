package store

type EmergenceType string

const (
	EmergenceVillain EmergenceType = "villain"
	EmergenceAlly    EmergenceType = "ally"
)

// ContributingFactor records one dimension that fed into an emergence
// finding, with the threshold it was measured against.
type ContributingFactor struct {
	Dimension Dimension `json:"dimension"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
}

// Opportunity is an NPC found ready to surface as a villain or ally toward
// another entity. It is computed per event and never persisted.
type Opportunity struct {
	GameID              string               `json:"game_id"`
	EventID             string               `json:"event_id"`
	Turn                int                  `json:"turn"`
	Type                EmergenceType        `json:"type"`
	Entity              EntityRef            `json:"entity"`
	Toward              EntityRef            `json:"toward"`
	Confidence          float64              `json:"confidence"`
	Reason              string               `json:"reason"`
	ContributingFactors []ContributingFactor `json:"contributing_factors"`
	Dimensions          Dimensions           `json:"dimensions"`
}
