// Package websocket pushes live tour updates to browser clients.
//
// The package uses a hub-and-spoke model where a central Hub tracks every
// connection grouped by session ID. Each client connection runs a read pump
// and a write pump; the read side only keeps the connection alive, clients
// never send commands over the socket.
//
// Message Protocol:
//
// Outgoing messages are JSON-encoded Message values:
//   - state_update: the full TourState after a step, bulk step, run or reset
//   - move, complete, stuck, reset: tour events with a free-form data payload
//
// Clients select a session with the ?session= query parameter.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// State updates are delivered synchronously; events go through a bounded
// queue drained by Run and are dropped when the queue is full. Clients that
// fall behind are disconnected.
package websocket
