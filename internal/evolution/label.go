package evolution

import "rolecraft/internal/store"

type Label string

const (
	LabelDevoted     Label = "devoted"
	LabelTerrified   Label = "terrified"
	LabelEnemy       Label = "enemy"
	LabelRival       Label = "rival"
	LabelResentful   Label = "resentful"
	LabelAlly        Label = "ally"
	LabelFriend      Label = "friend"
	LabelIndebted    Label = "indebted"
	LabelWary        Label = "wary"
	LabelIndifferent Label = "indifferent"
)

// labelRules is a priority chain: the first matching rule wins, so the order
// is part of the contract.
var labelRules = []struct {
	label Label
	match func(d store.Dimensions) bool
}{
	{LabelDevoted, func(d store.Dimensions) bool { return d.Trust > 0.7 && d.Affection > 0.7 && d.Respect > 0.6 }},
	{LabelTerrified, func(d store.Dimensions) bool { return d.Fear > 0.7 && d.Resentment > 0.5 }},
	{LabelEnemy, func(d store.Dimensions) bool { return d.Fear > 0.5 && d.Resentment > 0.6 }},
	{LabelRival, func(d store.Dimensions) bool { return d.Respect > 0.5 && d.Resentment > 0.5 }},
	{LabelResentful, func(d store.Dimensions) bool { return d.Resentment > 0.6 }},
	{LabelAlly, func(d store.Dimensions) bool { return d.Trust > 0.6 && d.Respect > 0.6 }},
	{LabelFriend, func(d store.Dimensions) bool { return d.Affection > 0.6 && d.Trust > 0.5 }},
	{LabelIndebted, func(d store.Dimensions) bool { return d.Debt > 0.6 }},
	{LabelWary, func(d store.Dimensions) bool { return d.Trust < 0.3 || d.Fear > 0.4 }},
}

// ComputeAggregateLabel classifies a relationship into a single word.
func ComputeAggregateLabel(d store.Dimensions) Label {
	for _, rule := range labelRules {
		if rule.match(d) {
			return rule.label
		}
	}
	return LabelIndifferent
}
