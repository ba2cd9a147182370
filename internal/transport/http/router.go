package http

import "net/http"

// NewRouter mounts the JSON API and the websocket channel behind the shared
// middleware.
func NewRouter(api *Handler, ws *WSHandler, allowedOrigin string) http.Handler {
	mux := http.NewServeMux()
	api.Register(mux)
	mux.HandleFunc("GET /ws", ws.ServeWS)
	return Chain(mux, allowedOrigin)
}
