package notifier

import (
	"github.com/pfrederiksen/vote-projector/internal/projection"
)

// Notifier defines the interface for publishing a statewide projection
type Notifier interface {
	// Notify publishes the projection summary
	Notify(sp *projection.StateProjection) error
}
