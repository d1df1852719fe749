package shows

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterShowRoutes registers the show editing HTTP and WebSocket routes.
// Every route below the session id requires that session's token.
func RegisterShowRoutes(r *mux.Router, handler *ShowHandler) {
	logged := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			handler.Log.Debugf("[Show] %s %s", req.Method, req.URL.Path)
			next(w, req)
		}
	}
	session := func(next http.HandlerFunc) http.Handler {
		return handler.Tokens.RequireSession(logged(next))
	}

	r.HandleFunc("/api/v1/shows", logged(handler.CreateShow)).Methods(http.MethodPost)

	r.Handle("/api/v1/shows/{id}", session(handler.GetShow)).Methods(http.MethodGet)
	r.Handle("/api/v1/shows/{id}", session(handler.ReplaceShow)).Methods(http.MethodPut)
	r.Handle("/api/v1/shows/{id}", session(handler.DeleteShow)).Methods(http.MethodDelete)
	r.Handle("/api/v1/shows/{id}/export", session(handler.ExportShow)).Methods(http.MethodGet)

	r.Handle("/api/v1/shows/{id}/scenes", session(handler.AddScene)).Methods(http.MethodPost)
	r.Handle("/api/v1/shows/{id}/scenes/{sceneId}", session(handler.UpdateScene)).Methods(http.MethodPatch)
	r.Handle("/api/v1/shows/{id}/scenes/{sceneId}", session(handler.RemoveScene)).Methods(http.MethodDelete)
	r.Handle("/api/v1/shows/{id}/transitions/{transitionId}", session(handler.UpdateTransition)).Methods(http.MethodPatch)

	r.Handle("/api/v1/shows/{id}/reset", session(handler.ResetShow)).Methods(http.MethodPost)
	r.Handle("/api/v1/shows/{id}/example", session(handler.LoadExample)).Methods(http.MethodPost)
	r.Handle("/api/v1/shows/{id}/save", session(handler.SaveShow)).Methods(http.MethodPost)
	r.Handle("/api/v1/shows/{id}/snapshots", session(handler.ListSnapshots)).Methods(http.MethodGet)

	r.Handle("/ws/shows/{id}", session(handler.ServeWS)).Methods(http.MethodGet)
}
