package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rolecraft/internal/store"
)

func sceneNotice(kind Kind) SceneNotice {
	return SceneNotice{Type: kind, GameID: "g1", Scene: store.Scene{ID: "gate", GameID: "g1", Status: store.SceneActive}, Turn: 2}
}

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus(nil)

	var seen []string
	bus.Subscribe("first", func(n Notification) error {
		seen = append(seen, "first:"+string(n.Kind()))
		return nil
	})
	bus.Subscribe("second", func(n Notification) error {
		seen = append(seen, "second:"+string(n.Kind()))
		return nil
	})

	bus.Emit(sceneNotice(SceneStarted))

	assert.Equal(t, []string{"first:scene:started", "second:scene:started"}, seen)
}

func TestBusIsolatesFailingListeners(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewBus(zap.New(core))

	delivered := 0
	bus.Subscribe("panics", func(Notification) error { panic("boom") })
	bus.Subscribe("errors", func(Notification) error { return errors.New("socket closed") })
	bus.Subscribe("works", func(Notification) error {
		delivered++
		return nil
	})

	require.NotPanics(t, func() { bus.Emit(sceneNotice(SceneCompleted)) })
	assert.Equal(t, 1, delivered)

	entries := logs.FilterMessage("notification listener failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "panics", entries[0].ContextMap()["listener"])
	assert.Contains(t, entries[0].ContextMap()["error"], "boom")
	assert.Equal(t, "errors", entries[1].ContextMap()["listener"])
	assert.Equal(t, "scene:completed", entries[1].ContextMap()["kind"])
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	unsubscribe := bus.Subscribe("counter", func(Notification) error {
		calls++
		return nil
	})
	bus.Emit(sceneNotice(SceneCreated))
	unsubscribe()
	unsubscribe()
	bus.Emit(sceneNotice(SceneCreated))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.ListenerCount())
}

func TestJSONLinesWritesOneObjectPerNotification(t *testing.T) {
	var buf bytes.Buffer
	listen := JSONLines(&buf)

	require.NoError(t, listen(sceneNotice(SceneStarted)))
	require.NoError(t, listen(EmergenceNotice{
		Type:    EmergenceDetected,
		GameID:  "g1",
		EventID: "e1",
		Opportunities: []store.Opportunity{{
			Type:       store.EmergenceVillain,
			Entity:     store.EntityRef{Type: store.EntityNPC, ID: "mira"},
			Confidence: 0.9,
		}},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "scene:started", first["type"])

	var second EmergenceNotice
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, EmergenceDetected, second.Type)
	require.Len(t, second.Opportunities, 1)
	assert.Equal(t, "mira", second.Opportunities[0].Entity.ID)
}

func TestLoggedListener(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	listen := Logged(zap.New(core))

	require.NoError(t, listen(EvolutionNotice{Type: EvolutionApproved, GameID: "g7"}))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "evolution:approved", entries[0].ContextMap()["kind"])
	assert.Equal(t, "g7", entries[0].ContextMap()["game_id"])
}
