package store

import (
	"fmt"
	"strings"
	"time"
)

type EntityType string

const (
	EntityPlayer    EntityType = "player"
	EntityCharacter EntityType = "character"
	EntityNPC       EntityType = "npc"
	EntityLocation  EntityType = "location"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityPlayer, EntityCharacter, EntityNPC, EntityLocation:
		return true
	}
	return false
}

// EntityRef identifies a participant. It is a lookup value, not an owned row.
type EntityRef struct {
	Type EntityType `json:"type"`
	ID   string     `json:"id"`
}

func (e EntityRef) String() string {
	return string(e.Type) + ":" + e.ID
}

func (e EntityRef) IsZero() bool {
	return e.Type == "" && e.ID == ""
}

// ParseEntityRef parses the "type:id" form used on the command line and in
// lore frontmatter.
func ParseEntityRef(value string) (EntityRef, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 || parts[0] == "" || strings.TrimSpace(parts[1]) == "" {
		return EntityRef{}, fmt.Errorf("invalid entity reference %q: expected type:id", value)
	}
	ref := EntityRef{Type: EntityType(strings.ToLower(parts[0])), ID: strings.TrimSpace(parts[1])}
	if !ref.Type.Valid() {
		return EntityRef{}, fmt.Errorf("invalid entity reference %q: unknown type %s", value, parts[0])
	}
	return ref, nil
}

type Relationship struct {
	GameID      string     `json:"game_id"`
	From        EntityRef  `json:"from"`
	To          EntityRef  `json:"to"`
	Dimensions  Dimensions `json:"dimensions"`
	UpdatedTurn int        `json:"updated_turn"`
}

// Other returns the endpoint of the relationship that is not e.
func (r Relationship) Other(e EntityRef) EntityRef {
	if r.From == e {
		return r.To
	}
	return r.From
}

type TraitStatus string

const (
	TraitActive  TraitStatus = "active"
	TraitFaded   TraitStatus = "faded"
	TraitRemoved TraitStatus = "removed"
)

type Trait struct {
	GameID        string      `json:"game_id"`
	Entity        EntityRef   `json:"entity"`
	Trait         string      `json:"trait"`
	AcquiredTurn  int         `json:"acquired_turn"`
	SourceEventID string      `json:"source_event_id,omitempty"`
	Status        TraitStatus `json:"status"`
}

type EvolutionType string

const (
	EvolutionTraitAdd           EvolutionType = "trait_add"
	EvolutionTraitRemove        EvolutionType = "trait_remove"
	EvolutionRelationshipChange EvolutionType = "relationship_change"
)

func (t EvolutionType) Valid() bool {
	switch t {
	case EvolutionTraitAdd, EvolutionTraitRemove, EvolutionRelationshipChange:
		return true
	}
	return false
}

type EvolutionStatus string

const (
	EvolutionPending  EvolutionStatus = "pending"
	EvolutionApproved EvolutionStatus = "approved"
	EvolutionEdited   EvolutionStatus = "edited"
	EvolutionRefused  EvolutionStatus = "refused"
)

// PendingEvolution is a proposed trait or relationship change awaiting
// review. Optional fields are nil/empty depending on EvolutionType.
type PendingEvolution struct {
	ID            string          `json:"id"`
	GameID        string          `json:"game_id"`
	Turn          int             `json:"turn"`
	SourceEventID string          `json:"source_event_id,omitempty"`
	EvolutionType EvolutionType   `json:"evolution_type"`
	Entity        EntityRef       `json:"entity"`
	Trait         string          `json:"trait,omitempty"`
	Target        *EntityRef      `json:"target,omitempty"`
	Dimension     Dimension       `json:"dimension,omitempty"`
	OldValue      *float64        `json:"old_value,omitempty"`
	NewValue      *float64        `json:"new_value,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Status        EvolutionStatus `json:"status"`
	DMNotes       string          `json:"dm_notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ResolvedAt    *time.Time      `json:"resolved_at,omitempty"`
}

type SceneStatus string

const (
	SceneActive    SceneStatus = "active"
	SceneCompleted SceneStatus = "completed"
	SceneAbandoned SceneStatus = "abandoned"
)

func (s SceneStatus) Terminal() bool {
	return s == SceneCompleted || s == SceneAbandoned
}

type Scene struct {
	ID            string      `json:"id"`
	GameID        string      `json:"game_id"`
	Name          string      `json:"name,omitempty"`
	Description   string      `json:"description,omitempty"`
	SceneType     string      `json:"scene_type,omitempty"`
	LocationID    string      `json:"location_id,omitempty"`
	Mood          string      `json:"mood,omitempty"`
	Stakes        string      `json:"stakes,omitempty"`
	Status        SceneStatus `json:"status"`
	StartedTurn   int         `json:"started_turn"`
	CompletedTurn *int        `json:"completed_turn,omitempty"`
}

type SceneAvailability struct {
	GameID       string `json:"game_id"`
	SceneID      string `json:"scene_id"`
	Unlocked     bool   `json:"unlocked"`
	UnlockedTurn *int   `json:"unlocked_turn,omitempty"`
	UnlockedBy   string `json:"unlocked_by,omitempty"`
}

type ConnectionType string

const (
	ConnectionPath        ConnectionType = "path"
	ConnectionConditional ConnectionType = "conditional"
	ConnectionHidden      ConnectionType = "hidden"
	ConnectionOneWay      ConnectionType = "one-way"
	ConnectionTeleport    ConnectionType = "teleport"
)

func (t ConnectionType) Valid() bool {
	switch t {
	case ConnectionPath, ConnectionConditional, ConnectionHidden, ConnectionOneWay, ConnectionTeleport:
		return true
	}
	return false
}

type SceneConnection struct {
	GameID         string         `json:"game_id"`
	FromSceneID    string         `json:"from_scene_id"`
	ToSceneID      string         `json:"to_scene_id"`
	ConnectionType ConnectionType `json:"connection_type"`
	Requirements   string         `json:"requirements,omitempty"`
	Description    string         `json:"description,omitempty"`
}

// ConnectedScene is a reachable destination together with the edge that
// leads to it.
type ConnectedScene struct {
	Scene        Scene           `json:"scene"`
	Connection   SceneConnection `json:"connection"`
	UnlockedTurn *int            `json:"unlocked_turn,omitempty"`
}

type Game struct {
	ID             string    `json:"id"`
	Name           string    `json:"name,omitempty"`
	CurrentSceneID string    `json:"current_scene_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Event is a committed narrative action as recorded by the surrounding game
// loop.
type Event struct {
	ID         string `json:"id"`
	GameID     string `json:"game_id"`
	Turn       int    `json:"turn"`
	EventType  string `json:"event_type,omitempty"`
	ActorType  string `json:"actor_type,omitempty"`
	ActorID    string `json:"actor_id,omitempty"`
	TargetType string `json:"target_type,omitempty"`
	TargetID   string `json:"target_id,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// Actor returns the actor reference when the actor type is a known entity
// type.
func (e Event) Actor() (EntityRef, bool) {
	ref := EntityRef{Type: EntityType(e.ActorType), ID: e.ActorID}
	if !ref.Type.Valid() || strings.TrimSpace(ref.ID) == "" {
		return EntityRef{}, false
	}
	return ref, true
}

func (e Event) Target() (EntityRef, bool) {
	ref := EntityRef{Type: EntityType(e.TargetType), ID: e.TargetID}
	if !ref.Type.Valid() || strings.TrimSpace(ref.ID) == "" {
		return EntityRef{}, false
	}
	return ref, true
}
