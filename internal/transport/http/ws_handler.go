package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"quiz-intake-service/internal/app"
)

type WSHandler struct {
	services *app.Services
	upgrader websocket.Upgrader
}

func NewWSHandler(services *app.Services) *WSHandler {
	return &WSHandler{
		services: services,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and streams notices until the client goes away.
// Clients may send {"type":"status"} to get the current connectivity snapshot.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	notices, cancel := h.services.Notices.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	noticesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(noticesDone)
		for {
			select {
			case notice, ok := <-notices:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "notice", Payload: notice}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	if enqueueFrame(send, writerDone, h.status(r)) {
		for {
			var inbound inboundMessage
			if err := conn.ReadJSON(&inbound); err != nil {
				break
			}
			var reply outboundMessage[any]
			switch inbound.Type {
			case "status":
				reply = h.status(r)
			default:
				reply = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
			}
			if !enqueueFrame(send, writerDone, reply) {
				break
			}
		}
	}

	close(closeSignals)
	<-noticesDone
	close(send)
	<-writerDone
}

// enqueueFrame hands msg to the writer goroutine. It reports false once the
// writer has stopped, so the caller never blocks on a full buffer.
func enqueueFrame(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

func (h *WSHandler) status(r *http.Request) outboundMessage[any] {
	pending, err := h.services.Submissions.PendingCount(r.Context())
	if err != nil {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}
	return outboundMessage[any]{Type: "status", Payload: connectivityResponse{
		Online:  h.services.Monitor.IsOnline(),
		Pending: pending,
	}}
}
