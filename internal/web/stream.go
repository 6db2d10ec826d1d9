package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	streamBuffer       = 64
	streamWriteTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamHandler upgrades to a websocket and writes every decoded sentence
// as one JSON text message. Clients only listen; anything they send is
// discarded.
func streamHandler(src GPS) http.Handler {
	log := logrus.WithField("component", "web")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debugf("websocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		id, ch := src.Subscribe(streamBuffer)
		defer src.Unsubscribe(id)
		log.Debugf("stream client connected remote=%s", r.RemoteAddr)

		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-gone:
				log.Debugf("stream client left remote=%s", r.RemoteAddr)
				return
			case s, ok := <-ch:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "source closed"),
						time.Now().Add(streamWriteTimeout))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
				if err := conn.WriteJSON(s); err != nil {
					log.Debugf("stream write failed remote=%s: %v", r.RemoteAddr, err)
					return
				}
			}
		}
	})
}
