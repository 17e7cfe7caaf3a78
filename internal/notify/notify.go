// Package notify carries state-change notifications from the services to
// whatever outbound channel the host wires up.
package notify

import (
	"time"

	"rolecraft/internal/store"
)

type Kind string

const (
	EvolutionCreated  Kind = "evolution:created"
	EvolutionApproved Kind = "evolution:approved"
	EvolutionEdited   Kind = "evolution:edited"
	EvolutionRefused  Kind = "evolution:refused"

	EmergenceDetected Kind = "emergence:detected"
	EmergenceVillain  Kind = "emergence:villain"
	EmergenceAlly     Kind = "emergence:ally"

	SceneCreated   Kind = "scene:created"
	SceneStarted   Kind = "scene:started"
	SceneCompleted Kind = "scene:completed"
	SceneAbandoned Kind = "scene:abandoned"
)

// Notification is implemented only by the notice types in this package.
// Consumers switch on the concrete type.
type Notification interface {
	Kind() Kind
	Game() string
	sealed()
}

type EvolutionNotice struct {
	Type      Kind                   `json:"type"`
	GameID    string                 `json:"game_id"`
	Evolution store.PendingEvolution `json:"evolution"`
	At        time.Time              `json:"at"`
}

func (n EvolutionNotice) Kind() Kind    { return n.Type }
func (n EvolutionNotice) Game() string  { return n.GameID }
func (EvolutionNotice) sealed()         {}

// EmergenceNotice is either a single finding (villain/ally) or the batch
// summary for one committed event (detected).
type EmergenceNotice struct {
	Type          Kind                `json:"type"`
	GameID        string              `json:"game_id"`
	EventID       string              `json:"event_id"`
	Opportunities []store.Opportunity `json:"opportunities"`
	At            time.Time           `json:"at"`
}

func (n EmergenceNotice) Kind() Kind   { return n.Type }
func (n EmergenceNotice) Game() string { return n.GameID }
func (EmergenceNotice) sealed()        {}

type SceneNotice struct {
	Type   Kind        `json:"type"`
	GameID string      `json:"game_id"`
	Scene  store.Scene `json:"scene"`
	Turn   int         `json:"turn"`
	At     time.Time   `json:"at"`
}

func (n SceneNotice) Kind() Kind   { return n.Type }
func (n SceneNotice) Game() string { return n.GameID }
func (SceneNotice) sealed()        {}

// Emitter receives notifications after the state change they describe has
// been committed. Services treat a nil Emitter as "emit nothing".
type Emitter interface {
	Emit(n Notification)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Notification)

func (f EmitterFunc) Emit(n Notification) { f(n) }
