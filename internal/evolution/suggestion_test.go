package evolution

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolecraft/internal/store"
)

func TestSuggestionInputDecodesVariants(t *testing.T) {
	raw := `[
		{"evolution_type": "trait_add", "entity": {"type": "npc", "id": "mira"}, "trait": " vengeful ", "reason": "betrayed"},
		{"evolution_type": "trait_remove", "entity": {"type": "npc", "id": "mira"}, "trait": "hopeful"},
		{"evolution_type": "relationship_change", "entity": {"type": "npc", "id": "mira"},
		 "target": {"type": "player", "id": "party"}, "dimension": "Trust", "change": -0.25}
	]`

	var inputs []SuggestionInput
	require.NoError(t, json.Unmarshal([]byte(raw), &inputs))

	suggestions, err := ParseSuggestions(inputs)
	require.NoError(t, err)
	require.Len(t, suggestions, 3)

	add, ok := suggestions[0].(TraitAdd)
	require.True(t, ok)
	assert.Equal(t, "vengeful", add.Trait)
	assert.Equal(t, store.EvolutionTraitAdd, add.Kind())

	_, ok = suggestions[1].(TraitRemove)
	assert.True(t, ok)

	change, ok := suggestions[2].(RelationshipChange)
	require.True(t, ok)
	assert.Equal(t, store.DimTrust, change.Dimension)
	assert.Equal(t, -0.25, change.Change)
	assert.Equal(t, store.EntityRef{Type: store.EntityPlayer, ID: "party"}, change.Target)
}

func TestSuggestionInputRejectsUnknownShapes(t *testing.T) {
	_, err := SuggestionInput{EvolutionType: "trait_swap", Entity: store.EntityRef{Type: store.EntityNPC, ID: "mira"}}.Suggestion()
	assert.Error(t, err)

	_, err = SuggestionInput{EvolutionType: "trait_add", Entity: store.EntityRef{Type: "ghost", ID: "mira"}}.Suggestion()
	assert.Error(t, err)

	_, err = ParseSuggestions([]SuggestionInput{
		{EvolutionType: "trait_add", Entity: store.EntityRef{Type: store.EntityNPC, ID: "mira"}, Trait: "x"},
		{EvolutionType: "trait_add"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suggestion 1")
}
