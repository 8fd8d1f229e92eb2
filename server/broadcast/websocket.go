package broadcast

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeTimeout = 10 * time.Second

// WebSocket streams every session event to the connected client as
// JSON. Demultiplexing by session id is the client's job.
func WebSocket(b *Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", slog.Any("err", err))
			return
		}

		slog.Info("client connected", slog.String("remote", conn.RemoteAddr().String()))

		var (
			writeMu   sync.Mutex
			closed    = make(chan struct{})
			closeOnce sync.Once
		)
		markClosed := func() { closeOnce.Do(func() { close(closed) }) }

		forward := func(ev Event) {
			writeMu.Lock()
			defer writeMu.Unlock()

			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				markClosed()
			}
		}

		if err := b.Subscribe(forward); err != nil {
			slog.Error("subscription failed", slog.Any("err", err))
			conn.Close()
			return
		}

		// reads only detect the client going away
		go func() {
			defer markClosed()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		<-closed

		b.Unsubscribe(forward)
		conn.Close()

		slog.Info("client disconnected", slog.String("remote", conn.RemoteAddr().String()))
	}
}
