package evolution

import (
	"testing"

	"rolecraft/internal/store"
)

func TestComputeAggregateLabel(t *testing.T) {
	tests := []struct {
		name string
		dims store.Dimensions
		want Label
	}{
		{"devoted beats ally and friend", store.Dimensions{Trust: 0.8, Affection: 0.8, Respect: 0.7}, LabelDevoted},
		{"terrified beats enemy", store.Dimensions{Trust: 0.5, Respect: 0.5, Affection: 0.5, Fear: 0.8, Resentment: 0.7}, LabelTerrified},
		{"enemy", store.Dimensions{Trust: 0.5, Respect: 0.4, Affection: 0.5, Fear: 0.6, Resentment: 0.65}, LabelEnemy},
		{"rival", store.Dimensions{Trust: 0.5, Respect: 0.7, Affection: 0.5, Resentment: 0.55}, LabelRival},
		{"resentful", store.Dimensions{Trust: 0.5, Respect: 0.3, Affection: 0.5, Resentment: 0.7}, LabelResentful},
		{"ally", store.Dimensions{Trust: 0.7, Respect: 0.7, Affection: 0.3}, LabelAlly},
		{"friend", store.Dimensions{Trust: 0.55, Respect: 0.5, Affection: 0.65}, LabelFriend},
		{"indebted", store.Dimensions{Trust: 0.5, Respect: 0.5, Affection: 0.5, Debt: 0.7}, LabelIndebted},
		{"wary from low trust", store.Dimensions{Trust: 0.2, Respect: 0.5, Affection: 0.5}, LabelWary},
		{"wary from fear", store.Dimensions{Trust: 0.5, Respect: 0.5, Affection: 0.5, Fear: 0.45}, LabelWary},
		{"defaults are indifferent", store.DefaultDimensions(), LabelIndifferent},
		{"thresholds are strict", store.Dimensions{Trust: 0.7, Affection: 0.7, Respect: 0.6, Debt: 0.6, Fear: 0.4, Resentment: 0.5}, LabelFriend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeAggregateLabel(tt.dims); got != tt.want {
				t.Errorf("ComputeAggregateLabel(%+v) = %s, want %s", tt.dims, got, tt.want)
			}
		})
	}
}
