package notify

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// JSONLines returns a listener that writes every notification to w as one
// JSON object per line.
func JSONLines(w io.Writer) Listener {
	var mu sync.Mutex
	return func(n Notification) error {
		line, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshaling %s notification: %w", n.Kind(), err)
		}
		mu.Lock()
		defer mu.Unlock()
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("writing %s notification: %w", n.Kind(), err)
		}
		return nil
	}
}

// Logged returns a listener that records each notification at debug level.
func Logged(logger *zap.Logger) Listener {
	return func(n Notification) error {
		logger.Debug("notification",
			zap.String("kind", string(n.Kind())),
			zap.String("game_id", n.Game()),
		)
		return nil
	}
}
