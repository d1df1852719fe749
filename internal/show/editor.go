package show

import (
	"context"
	"time"

	"github.com/Vasu1712/scenyx-showtime/internal/models"
	"go.uber.org/zap"
)

// Saver receives a copy of the show when the user saves.
type Saver interface {
	SaveShow(ctx context.Context, sessionID string, s models.Show) (models.Snapshot, error)
}

// LogSaver writes the saved show to the log and keeps nothing.
type LogSaver struct {
	Log *zap.SugaredLogger
}

func (l LogSaver) SaveShow(_ context.Context, sessionID string, s models.Show) (models.Snapshot, error) {
	snap := models.Snapshot{ID: NewID(), SessionID: sessionID, Show: s.Clone(), SavedAt: time.Now().UTC()}
	l.Log.Infow("Saving show data", "session", sessionID, "scenes", s.Scenes, "transitions", s.Transitions)
	return snap, nil
}

// Editor owns one show and applies edits to it. It has no locking: callers
// give it a single writer.
type Editor struct {
	sessionID string
	show      models.Show
	revision  uint64 // bumped on every change to show
	newID     IDFunc
	saver     Saver
	log       *zap.SugaredLogger
}

type Option func(*Editor)

// WithIDFunc replaces the uuid generator.
func WithIDFunc(f IDFunc) Option {
	return func(e *Editor) { e.newID = f }
}

func WithSaver(s Saver) Option {
	return func(e *Editor) { e.saver = s }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Editor) { e.log = l }
}

// NewEditor returns an editor holding the initial show.
func NewEditor(sessionID string, opts ...Option) *Editor {
	e := &Editor{
		sessionID: sessionID,
		newID:     NewID,
		log:       zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.saver == nil {
		e.saver = LogSaver{Log: e.log}
	}
	e.show = NewShow(e.newID)
	return e
}

func (e *Editor) SessionID() string {
	return e.sessionID
}

// Show returns a copy of the current show.
func (e *Editor) Show() models.Show {
	return e.show.Clone()
}

// CanRemove reports whether RemoveScene may remove anything.
func (e *Editor) CanRemove() bool {
	return len(e.show.Scenes) > 1
}

func (e *Editor) AddScene(afterSceneID string) bool {
	return e.apply("add scene", afterSceneID, func(s models.Show) (models.Show, bool) {
		return AddScene(s, afterSceneID, e.newID)
	})
}

func (e *Editor) RemoveScene(sceneID string) bool {
	return e.apply("remove scene", sceneID, func(s models.Show) (models.Show, bool) {
		return RemoveScene(s, sceneID)
	})
}

func (e *Editor) UpdateScene(sceneID string, u SceneUpdate) bool {
	return e.apply("update scene", sceneID, func(s models.Show) (models.Show, bool) {
		return UpdateScene(s, sceneID, u)
	})
}

func (e *Editor) UpdateTransition(transitionID string, duration int) bool {
	return e.apply("update transition", transitionID, func(s models.Show) (models.Show, bool) {
		return UpdateTransition(s, transitionID, duration)
	})
}

// Reset replaces the show with the initial one.
func (e *Editor) Reset() {
	e.show = NewShow(e.newID)
	e.revision++
	e.log.Debugf("[Show] %s reset", e.sessionID)
}

// LoadExample replaces the show with ExampleShow.
func (e *Editor) LoadExample() {
	e.show = ExampleShow()
	e.revision++
	e.log.Debugf("[Show] %s loaded example", e.sessionID)
}

// Replace swaps in an externally supplied show after normalizing it. Shows
// that fail Validate are refused and the current show is kept.
func (e *Editor) Replace(s models.Show) error {
	if err := Validate(s); err != nil {
		e.log.Debugf("[Show] %s refused replacement: %v", e.sessionID, err)
		return err
	}
	e.show = Normalize(s)
	e.revision++
	e.log.Debugf("[Show] %s replaced (%d scenes)", e.sessionID, len(e.show.Scenes))
	return nil
}

// Save hands a copy of the show to the saver. The editor state is unchanged.
func (e *Editor) Save(ctx context.Context) (models.Snapshot, error) {
	return e.saver.SaveShow(ctx, e.sessionID, e.show.Clone())
}

// Revision counts the changes made to the show. Edits that turn out to be
// no-ops leave it alone.
func (e *Editor) Revision() uint64 {
	return e.revision
}

func (e *Editor) Totals() Totals {
	return ComputeTotals(e.show)
}

func (e *Editor) apply(op, id string, fn func(models.Show) (models.Show, bool)) bool {
	next, ok := fn(e.show)
	if !ok {
		e.log.Debugf("[Show] %s %s: %q not applicable, show unchanged", e.sessionID, op, id)
		return false
	}
	e.show = next
	e.revision++
	e.log.Debugf("[Show] %s %s %q: %d scenes, %d transitions", e.sessionID, op, id, len(next.Scenes), len(next.Transitions))
	return true
}
