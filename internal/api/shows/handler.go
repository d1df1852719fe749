package shows

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/Vasu1712/scenyx-showtime/internal/auth"
	"github.com/Vasu1712/scenyx-showtime/internal/models"
	"github.com/Vasu1712/scenyx-showtime/internal/show"
	"github.com/Vasu1712/scenyx-showtime/internal/showfile"
	"github.com/Vasu1712/scenyx-showtime/internal/storage/memory"
	"github.com/Vasu1712/scenyx-showtime/internal/ws"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	errLastScene  = errors.New("the last scene cannot be removed")
	errHubStopped = errors.New("live update hub stopped")
)

// SnapshotLister lists the shows saved for a session.
type SnapshotLister interface {
	ListSnapshots(ctx context.Context, sessionID string) ([]models.Snapshot, error)
}

// ShowHandler holds the dependencies for the show editing routes.
type ShowHandler struct {
	Sessions  *memory.SessionStore // Live editors, one per session
	Snapshots SnapshotLister       // nil when saves only go to the log
	Tokens    *auth.Issuer         // Signs and checks session tokens
	Hub       *ws.Hub              // Fan-out of show updates to websocket subscribers
	Log       *zap.SugaredLogger
}

// ShowView is what every show route answers with and what websocket
// subscribers receive after each change.
type ShowView struct {
	SessionID string       `json:"sessionId"`
	Revision  uint64       `json:"revision"` // grows with every change; lets clients order frames
	Show      models.Show  `json:"show"`
	Totals    show.Summary `json:"totals"`
	Gaps      []show.Gap   `json:"gaps"`      // one row per adjacent scene pair
	CanRemove bool         `json:"canRemove"` // false when one scene is left
	Audit     []show.Issue `json:"audit"`
}

// newView renders the editor's show with everything derived from it. Callers
// hold the session lock.
func newView(e *show.Editor) ShowView {
	s := e.Show()
	return ShowView{
		SessionID: e.SessionID(),
		Revision:  e.Revision(),
		Show:      s,
		Totals:    show.Summarize(s),
		Gaps:      show.Gaps(s),
		CanRemove: e.CanRemove(),
		Audit:     show.Audit(s),
	}
}

// CreateShow starts an editing session with the initial show and returns the
// token that authorizes every later request for it.
func (h *ShowHandler) CreateShow(w http.ResponseWriter, r *http.Request) {
	sess := h.Sessions.CreateSession()

	// The token is the only way back into the session, so a session without
	// one is dropped straight away.
	token, err := h.Tokens.Issue(sess.ID)
	if err != nil {
		h.Sessions.DeleteSession(sess.ID)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		h.Log.Errorf("Error issuing token for session %s: %v", sess.ID, err)
		return
	}

	var view ShowView
	_ = h.Sessions.Do(sess.ID, func(e *show.Editor) error {
		view = newView(e)
		return nil
	})

	// Token sits next to the view fields in one flat object
	writeJSON(w, http.StatusCreated, struct {
		Token string `json:"token"`
		ShowView
	}{Token: token, ShowView: view})
}

// GetShow returns the current show with its totals.
func (h *ShowHandler) GetShow(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, func(*show.Editor) error { return nil }, false)
}

// DeleteShow ends the session.
func (h *ShowHandler) DeleteShow(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if !h.Sessions.DeleteSession(sessionID) {
		http.Error(w, "Show not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddScene inserts a scene after "afterSceneId", or at the end when it is
// absent. An empty body means append.
func (h *ShowHandler) AddScene(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AfterSceneID string `json:"afterSceneId"` // empty appends
	}
	// Decode the optional body; io.EOF is an empty body
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		h.Log.Infof("Error decoding request body for AddScene: %v", err)
		return
	}
	h.view(w, r, func(e *show.Editor) error {
		e.AddScene(req.AfterSceneID)
		return nil
	}, true)
}

// UpdateScene merges "name" and/or "duration" into a scene. Durations may be
// numbers or strings; anything unusable becomes 0.
func (h *ShowHandler) UpdateScene(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     *string             `json:"name"`
		Duration *show.DurationInput `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		h.Log.Infof("Error decoding request body for UpdateScene: %v", err)
		return
	}

	// Only the fields present in the body are merged
	u := show.SceneUpdate{Name: req.Name}
	if req.Duration != nil {
		d := req.Duration.Int()
		u.Duration = &d
	}
	sceneID := mux.Vars(r)["sceneId"]
	h.view(w, r, func(e *show.Editor) error {
		e.UpdateScene(sceneID, u)
		return nil
	}, true)
}

// RemoveScene deletes a scene. Removing the only scene is refused with 409.
func (h *ShowHandler) RemoveScene(w http.ResponseWriter, r *http.Request) {
	sceneID := mux.Vars(r)["sceneId"]
	h.view(w, r, func(e *show.Editor) error {
		// Checked under the session lock so two removals cannot both pass
		if !e.CanRemove() {
			return errLastScene
		}
		e.RemoveScene(sceneID)
		return nil
	}, true)
}

// UpdateTransition sets a transition's "duration".
func (h *ShowHandler) UpdateTransition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Duration *show.DurationInput `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		h.Log.Infof("Error decoding request body for UpdateTransition: %v", err)
		return
	}
	// A transition has nothing else to update, so the field is mandatory
	if req.Duration == nil {
		http.Error(w, "Duration is required", http.StatusBadRequest)
		h.Log.Infof("Validation error: duration missing for UpdateTransition")
		return
	}

	transitionID := mux.Vars(r)["transitionId"]
	h.view(w, r, func(e *show.Editor) error {
		e.UpdateTransition(transitionID, req.Duration.Int())
		return nil
	}, true)
}

// ResetShow replaces the show with a single empty 30 second scene and no
// transitions.
func (h *ShowHandler) ResetShow(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, func(e *show.Editor) error {
		e.Reset()
		return nil
	}, true)
}

// LoadExample replaces the show with the three scene example. Loading it again
// gives the same show, ids included.
func (h *ShowHandler) LoadExample(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, func(e *show.Editor) error {
		e.LoadExample()
		return nil
	}, true)
}

// ReplaceShow swaps in a show sent as JSON or, with a YAML content type, as a
// show file.
func (h *ShowHandler) ReplaceShow(w http.ResponseWriter, r *http.Request) {
	var (
		incoming models.Show
		err      error
	)
	// YAML goes through the show file reader, anything else is read as JSON
	if isYAML(r.Header.Get("Content-Type")) {
		incoming, err = showfile.Decode(r.Body)
	} else {
		err = json.NewDecoder(r.Body).Decode(&incoming)
	}
	if err != nil {
		http.Error(w, "Invalid show", http.StatusBadRequest)
		h.Log.Infof("Error decoding show for ReplaceShow: %v", err)
		return
	}

	// Reject before touching the session so a bad upload never reaches the editor.
	if err := show.Validate(incoming); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		h.Log.Infof("Rejected show for ReplaceShow: %v", err)
		return
	}
	if incoming.Transitions == nil {
		incoming.Transitions = []models.Transition{}
	}

	h.view(w, r, func(e *show.Editor) error {
		return e.Replace(incoming)
	}, true)
}

// ExportShow writes the show as a YAML file.
func (h *ShowHandler) ExportShow(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	var s models.Show
	if err := h.Sessions.Do(sessionID, func(e *show.Editor) error {
		s = e.Show()
		return nil
	}); err != nil {
		h.fail(w, sessionID, err)
		return
	}

	// Served as a download so browsers save it as a show file
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="show.yaml"`)
	if err := showfile.Encode(w, s); err != nil {
		h.Log.Errorf("Error exporting show %s: %v", sessionID, err)
	}
}

// SaveShow hands the show to the configured saver. The show is not changed.
func (h *ShowHandler) SaveShow(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	var snap models.Snapshot
	// Saving under the lock pins the exact show that was on screen
	err := h.Sessions.Do(sessionID, func(e *show.Editor) error {
		var err error
		snap, err = e.Save(r.Context())
		return err
	})
	if err != nil {
		h.fail(w, sessionID, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshotId": snap.ID,
		"savedAt":    snap.SavedAt,
	})
	h.Log.Infof("Saved show for session %s as snapshot %s", sessionID, snap.ID)
}

// ListSnapshots returns the shows saved for the session, oldest first.
func (h *ShowHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	// 404 for ended sessions even if their snapshots are still stored
	if err := h.Sessions.Do(sessionID, func(*show.Editor) error { return nil }); err != nil {
		h.fail(w, sessionID, err)
		return
	}

	// Always an array, even with the log sink
	snaps := []models.Snapshot{}
	if h.Snapshots != nil {
		list, err := h.Snapshots.ListSnapshots(r.Context(), sessionID)
		if err != nil {
			h.fail(w, sessionID, err)
			return
		}
		snaps = append(snaps, list...)
	}
	writeJSON(w, http.StatusOK, snaps)
}

// The zero Upgrader rejects browser handshakes whose Origin is not the
// request host; non-browser clients send no Origin and pass.
var upgrader = websocket.Upgrader{}

// ServeWS streams the show view to the client after every change.
func (h *ShowHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	// Answer 404 while the request is still plain HTTP.
	if err := h.Sessions.Do(sessionID, func(*show.Editor) error { return nil }); err != nil {
		h.fail(w, sessionID, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Infof("Failed to upgrade WebSocket for show %s: %v", sessionID, err)
		return
	}

	client := &ws.Client{
		SessionID: sessionID,
		Send:      make(chan []byte, 16),
		Conn:      conn,
	}

	// Snapshot and register under the session lock: every later edit is
	// published after this and reaches the client, and updates queued before
	// it are older than the snapshot, so the hub skips them.
	err = h.Sessions.Do(sessionID, func(e *show.Editor) error {
		initial, err := json.Marshal(newView(e))
		if err != nil {
			return err
		}
		client.Revision = e.Revision()
		client.Send <- initial
		if !h.Hub.Join(client) {
			return errHubStopped
		}
		return nil
	})
	if err != nil {
		h.Log.Infof("WebSocket for show %s not started: %v", sessionID, err)
		conn.Close()
		return
	}

	// Read pump: only detects disconnects.
	go func() {
		defer func() {
			h.Hub.Leave(client)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.Log.Infof("WebSocket read error for show %s: %v", sessionID, err)
				}
				return
			}
		}
	}()

	// Write pump
	go func() {
		defer conn.Close()
		for message := range client.Send {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.Log.Infof("WebSocket write error for show %s: %v", sessionID, err)
				return
			}
		}
	}()
}

// view runs fn on the session's editor and answers with the resulting view.
// Changed views are also pushed to websocket subscribers.
func (h *ShowHandler) view(w http.ResponseWriter, r *http.Request, fn func(*show.Editor) error, publish bool) {
	sessionID := mux.Vars(r)["id"]
	var view ShowView
	err := h.Sessions.Do(sessionID, func(e *show.Editor) error {
		before := e.Revision()
		if err := fn(e); err != nil {
			return err
		}
		view = newView(e)

		// Publish while still holding the session lock so updates leave in
		// the order they were made. Publish never blocks.
		if publish && h.Hub != nil && view.Revision != before {
			if data, err := json.Marshal(view); err == nil && !h.Hub.Publish(sessionID, view.Revision, data) {
				h.Log.Warnf("Dropped live update for show %s", sessionID)
			}
		}
		return nil
	})
	if err != nil {
		h.fail(w, sessionID, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// fail maps an error from a session operation to its HTTP status.
func (h *ShowHandler) fail(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, memory.ErrSessionNotFound):
		http.Error(w, "Show not found", http.StatusNotFound)
	case errors.Is(err, errLastScene):
		http.Error(w, "The last scene cannot be removed", http.StatusConflict)
	case errors.Is(err, show.ErrInvalidShow):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
		h.Log.Errorf("Error handling show %s: %v", sessionID, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func isYAML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/yaml" || mt == "application/x-yaml" || mt == "text/yaml"
}
