package broadcast

import (
	"github.com/asaskevich/EventBus"

	"github.com/eliotdl/yt-any/server/internal/session"
)

const topic = "session:events"

// Event kinds. Completion and error are published as dedicated
// terminal events so that clients can trigger UI transitions without
// re-deriving them from snapshot status text.
const (
	KindProgress  = "progress"
	KindCompleted = "completed"
	KindErrored   = "errored"
	KindCancelled = "cancelled"
)

// Event is one item on the shared channel, tagged with the session id
// so multi-session clients can demultiplex.
type Event struct {
	Kind      string            `json:"kind"`
	SessionId string            `json:"session_id"`
	Snapshot  *session.Snapshot `json:"snapshot,omitempty"`
	Filename  string            `json:"filename,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Broadcaster pushes session events to every subscriber of the shared
// bus. Publishing is synchronous: events for a session keep callback
// order.
type Broadcaster struct {
	bus EventBus.Bus
}

func New() *Broadcaster {
	return &Broadcaster{bus: EventBus.New()}
}

func (b *Broadcaster) Progress(snap session.Snapshot) {
	b.bus.Publish(topic, Event{
		Kind:      KindProgress,
		SessionId: snap.SessionId,
		Snapshot:  &snap,
	})
}

func (b *Broadcaster) Completed(sessionId, filename string) {
	b.bus.Publish(topic, Event{
		Kind:      KindCompleted,
		SessionId: sessionId,
		Filename:  filename,
	})
}

func (b *Broadcaster) Errored(sessionId, message string) {
	b.bus.Publish(topic, Event{
		Kind:      KindErrored,
		SessionId: sessionId,
		Error:     message,
	})
}

func (b *Broadcaster) Cancelled(sessionId string) {
	b.bus.Publish(topic, Event{
		Kind:      KindCancelled,
		SessionId: sessionId,
	})
}

func (b *Broadcaster) Subscribe(fn func(Event)) error {
	return b.bus.Subscribe(topic, fn)
}

func (b *Broadcaster) Unsubscribe(fn func(Event)) error {
	return b.bus.Unsubscribe(topic, fn)
}
