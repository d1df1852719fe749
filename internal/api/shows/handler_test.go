package shows

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Vasu1712/scenyx-showtime/internal/auth"
	"github.com/Vasu1712/scenyx-showtime/internal/models"
	"github.com/Vasu1712/scenyx-showtime/internal/show"
	"github.com/Vasu1712/scenyx-showtime/internal/storage/memory"
	"github.com/Vasu1712/scenyx-showtime/internal/ws"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	t      *testing.T
	router *mux.Router
	hub    *ws.Hub
	token  string
	id     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zap.NewNop().Sugar()
	snaps := memory.NewSnapshotStore()
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	h := &ShowHandler{
		Sessions:  memory.NewSessionStore(snaps, log),
		Snapshots: snaps,
		Tokens:    auth.NewIssuer("secret", time.Hour, log),
		Hub:       hub,
		Log:       log,
	}
	r := mux.NewRouter()
	RegisterShowRoutes(r, h)

	hs := &harness{t: t, router: r, hub: hub}
	rec := hs.do(http.MethodPost, "/api/v1/shows", "", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Token string `json:"token"`
		ShowView
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.Token)
	hs.token = created.Token
	hs.id = created.SessionID
	return hs
}

func (hs *harness) do(method, path, contentType, body string) *httptest.ResponseRecorder {
	hs.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if hs.token != "" {
		req.Header.Set("Authorization", "Bearer "+hs.token)
	}
	rec := httptest.NewRecorder()
	hs.router.ServeHTTP(rec, req)
	return rec
}

func (hs *harness) view(method, path, body string) ShowView {
	hs.t.Helper()
	rec := hs.do(method, "/api/v1/shows/"+hs.id+path, "application/json", body)
	require.Equal(hs.t, http.StatusOK, rec.Code, rec.Body.String())
	var v ShowView
	require.NoError(hs.t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestCreateAndGet(t *testing.T) {
	hs := newHarness(t)
	v := hs.view(http.MethodGet, "", "")
	require.Len(t, v.Show.Scenes, 1)
	assert.Equal(t, 30, v.Show.Scenes[0].Duration)
	assert.Equal(t, "0:30", v.Totals.TotalText)
	assert.False(t, v.CanRemove)
	assert.Empty(t, v.Gaps)
}

func TestRequiresToken(t *testing.T) {
	hs := newHarness(t)
	hs.token = ""
	rec := hs.do(http.MethodGet, "/api/v1/shows/"+hs.id, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownSession(t *testing.T) {
	hs := newHarness(t)
	other := newHarness(t)
	// a valid token for a session this server never created
	hs.token = other.token
	rec := hs.do(http.MethodGet, "/api/v1/shows/"+other.id, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExampleTotals(t *testing.T) {
	hs := newHarness(t)
	v := hs.view(http.MethodPost, "/example", "")
	assert.Equal(t, show.Summary{
		Total: 166, Scenes: 135, Transitions: 31,
		TotalText: "2:46", ScenesText: "2:15", TransitionsText: "0:31",
	}, v.Totals)
	assert.Len(t, v.Gaps, 2)
	assert.Empty(t, v.Audit)
}

func TestSceneEditing(t *testing.T) {
	hs := newHarness(t)
	v := hs.view(http.MethodPost, "/scenes", "")
	require.Len(t, v.Show.Scenes, 2)
	require.Len(t, v.Show.Transitions, 1)
	assert.Equal(t, 10, v.Show.Transitions[0].Duration)
	assert.True(t, v.CanRemove)

	first := v.Show.Scenes[0].ID
	v = hs.view(http.MethodPatch, "/scenes/"+first, `{"name": "Intro", "duration": "45"}`)
	assert.Equal(t, models.Scene{ID: first, Number: 1, Name: "Intro", Duration: 45}, v.Show.Scenes[0])

	v = hs.view(http.MethodPatch, "/scenes/"+first, `{"duration": -5}`)
	assert.Equal(t, 0, v.Show.Scenes[0].Duration)
	assert.Equal(t, "Intro", v.Show.Scenes[0].Name)

	v = hs.view(http.MethodPatch, "/scenes/"+first, `{"duration": "abc"}`)
	assert.Equal(t, 0, v.Show.Scenes[0].Duration)

	// unknown ids leave the show alone
	before := v.Show
	v = hs.view(http.MethodPatch, "/scenes/nope", `{"name": "x"}`)
	assert.Equal(t, before, v.Show)
	v = hs.view(http.MethodPost, "/scenes", `{"afterSceneId": "nope"}`)
	assert.Equal(t, before, v.Show)

	tr := v.Show.Transitions[0].ID
	v = hs.view(http.MethodPatch, "/transitions/"+tr, `{"duration": 25}`)
	assert.Equal(t, 25, v.Show.Transitions[0].Duration)

	rec := hs.do(http.MethodPatch, "/api/v1/shows/"+hs.id+"/transitions/"+tr, "application/json", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsertAfterScene(t *testing.T) {
	hs := newHarness(t)
	hs.view(http.MethodPost, "/example", "")
	v := hs.view(http.MethodPost, "/scenes", `{"afterSceneId": "1"}`)

	require.Len(t, v.Show.Scenes, 4)
	assert.Equal(t, "2", v.Show.Scenes[2].ID)
	for i, sc := range v.Show.Scenes {
		assert.Equal(t, i+1, sc.Number)
	}
	assert.Len(t, v.Show.Transitions, 3)
	assert.Len(t, v.Audit, 2)
}

func TestRemoveScene(t *testing.T) {
	hs := newHarness(t)
	only := hs.view(http.MethodGet, "", "").Show.Scenes[0].ID
	rec := hs.do(http.MethodDelete, "/api/v1/shows/"+hs.id+"/scenes/"+only, "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	hs.view(http.MethodPost, "/example", "")
	v := hs.view(http.MethodDelete, "/scenes/2", "")
	require.Len(t, v.Show.Scenes, 2)
	assert.Equal(t, 2, v.Show.Scenes[1].Number)
	for _, tr := range v.Show.Transitions {
		assert.NotEqual(t, "2", tr.FromScene)
		assert.NotEqual(t, "2", tr.ToScene)
	}
	assert.Equal(t, []show.Issue{{Kind: show.IssueMissing, FromScene: "1", ToScene: "3"}}, v.Audit)
}

func TestReset(t *testing.T) {
	hs := newHarness(t)
	hs.view(http.MethodPost, "/example", "")
	v := hs.view(http.MethodPost, "/reset", "")
	require.Len(t, v.Show.Scenes, 1)
	assert.Equal(t, models.Scene{ID: v.Show.Scenes[0].ID, Number: 1, Duration: 30}, v.Show.Scenes[0])
	assert.Empty(t, v.Show.Transitions)
}

func TestSaveAndSnapshots(t *testing.T) {
	hs := newHarness(t)
	hs.view(http.MethodPost, "/example", "")

	rec := hs.do(http.MethodPost, "/api/v1/shows/"+hs.id+"/save", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var saved struct {
		SnapshotID string `json:"snapshotId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.SnapshotID)

	// saving does not change the show
	assert.Equal(t, show.ExampleShow(), hs.view(http.MethodGet, "", "").Show)

	rec = hs.do(http.MethodGet, "/api/v1/shows/"+hs.id+"/snapshots", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snaps []models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snaps))
	require.Len(t, snaps, 1)
	assert.Equal(t, saved.SnapshotID, snaps[0].ID)
	assert.Equal(t, show.ExampleShow(), snaps[0].Show)
}

func TestReplaceAndExport(t *testing.T) {
	hs := newHarness(t)
	doc := "scenes:\n  - id: a\n    name: Solo\n    duration: 75\n"
	rec := hs.do(http.MethodPut, "/api/v1/shows/"+hs.id, "application/yaml", doc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	v := hs.view(http.MethodGet, "", "")
	assert.Equal(t, []models.Scene{{ID: "a", Number: 1, Name: "Solo", Duration: 75}}, v.Show.Scenes)
	assert.Equal(t, "1:15", v.Totals.TotalText)

	rec = hs.do(http.MethodPut, "/api/v1/shows/"+hs.id, "application/json", `{"scenes": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = hs.do(http.MethodGet, "/api/v1/shows/"+hs.id+"/export", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "name: Solo")
}

func TestReplaceRejectsRepeatedSceneIDs(t *testing.T) {
	hs := newHarness(t)
	hs.view(http.MethodPost, "/example", "")

	body := `{"scenes":[{"id":"a","duration":5},{"id":"a","duration":6}]}`
	rec := hs.do(http.MethodPut, "/api/v1/shows/"+hs.id, "application/json", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	doc := "scenes:\n  - id: a\n  - id: a\n"
	rec = hs.do(http.MethodPut, "/api/v1/shows/"+hs.id, "application/yaml", doc)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = hs.do(http.MethodPut, "/api/v1/shows/"+hs.id, "application/json", `{"scenes":[{"name":"no id"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the example is still loaded, so removing "a" is a no-op and nothing empties the show
	v := hs.view(http.MethodDelete, "/scenes/a", "")
	assert.Equal(t, show.ExampleShow(), v.Show)
	assert.True(t, v.CanRemove)
}

func TestDeleteShow(t *testing.T) {
	hs := newHarness(t)
	rec := hs.do(http.MethodDelete, "/api/v1/shows/"+hs.id, "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = hs.do(http.MethodGet, "/api/v1/shows/"+hs.id, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebSocketReceivesUpdates(t *testing.T) {
	hs := newHarness(t)
	srv := httptest.NewServer(hs.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/shows/" + hs.id + "?token=" + hs.token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	read := func() ShowView {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var v ShowView
		require.NoError(t, json.NewDecoder(bytes.NewReader(data)).Decode(&v))
		return v
	}

	initial := read()
	assert.Len(t, initial.Show.Scenes, 1)
	// joined before the first frame goes out; the hub records it right after
	require.Eventually(t, func() bool {
		return hs.hub.ClientCount(hs.id) == 1
	}, 100*time.Millisecond, 5*time.Millisecond)

	hs.view(http.MethodPost, "/example", "")
	assert.Equal(t, "2:46", read().Totals.TotalText)
}

func TestWebSocketUpdatesArriveInOrder(t *testing.T) {
	hs := newHarness(t)
	srv := httptest.NewServer(hs.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/shows/" + hs.id + "?token=" + hs.token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	read := func() ShowView {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var v ShowView
		require.NoError(t, json.Unmarshal(data, &v))
		return v
	}

	last := read()
	const edits = 10
	var wg sync.WaitGroup
	for i := 0; i < edits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := hs.do(http.MethodPost, "/api/v1/shows/"+hs.id+"/scenes", "application/json", `{}`)
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	final := hs.view(http.MethodGet, "", "")
	require.Equal(t, last.Revision+edits, final.Revision)
	for last.Revision < final.Revision {
		next := read()
		require.Greater(t, next.Revision, last.Revision, "frames must not go backwards")
		require.Len(t, next.Show.Scenes, len(last.Show.Scenes)+int(next.Revision-last.Revision))
		last = next
	}
	assert.Equal(t, final.Show, last.Show)
}
