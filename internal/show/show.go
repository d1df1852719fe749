// Package show holds the show model editor: the operations that insert, remove
// and update scenes and transitions, and the totals derived from them.
//
// Every operation takes a models.Show and returns a new one. The input is never
// modified, so an Editor can swap its state in one assignment.
package show

import (
	"slices"

	"github.com/Vasu1712/scenyx-showtime/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultSceneDuration      = 30
	DefaultTransitionDuration = 10
)

// IDFunc generates opaque identifiers for scenes and transitions.
type IDFunc func() string

// NewID is the default IDFunc.
func NewID() string {
	return uuid.NewString()
}

// SceneUpdate carries the fields to merge into a scene. Nil fields are left alone.
type SceneUpdate struct {
	Name     *string
	Duration *int
}

// NewShow returns the initial show: one unnamed scene and no transitions.
func NewShow(newID IDFunc) models.Show {
	return models.Show{
		Scenes:      []models.Scene{{ID: newID(), Number: 1, Duration: DefaultSceneDuration}},
		Transitions: []models.Transition{},
	}
}

// ExampleShow returns the fixed three scene sample. Ids are constant, so two
// calls produce identical shows.
func ExampleShow() models.Show {
	return models.Show{
		Scenes: []models.Scene{
			{ID: "1", Number: 1, Name: "Torche", Duration: 30},
			{ID: "2", Number: 2, Name: "Phoenix", Duration: 45},
			{ID: "3", Number: 3, Name: "Logo", Duration: 60},
		},
		Transitions: []models.Transition{
			{ID: "t1", FromScene: "1", ToScene: "2", Duration: 12},
			{ID: "t2", FromScene: "2", ToScene: "3", Duration: 19},
		},
	}
}

// AddScene inserts a new scene after afterSceneID, or at the end when
// afterSceneID is empty, and links it to the scene before it with one new
// transition. An existing transition out of the preceding scene is kept as is.
// It reports false, returning s untouched, when afterSceneID is not in the show.
func AddScene(s models.Show, afterSceneID string, newID IDFunc) (models.Show, bool) {
	pos := len(s.Scenes)
	if afterSceneID != "" {
		idx := s.SceneIndex(afterSceneID)
		if idx < 0 {
			return s, false
		}
		pos = idx + 1
	}

	out := s.Clone()
	scene := models.Scene{ID: newID(), Duration: DefaultSceneDuration}
	out.Scenes = slices.Insert(out.Scenes, pos, scene)
	renumber(out.Scenes)

	if pos > 0 {
		out.Transitions = append(out.Transitions, models.Transition{
			ID:        newID(),
			FromScene: out.Scenes[pos-1].ID,
			ToScene:   scene.ID,
			Duration:  DefaultTransitionDuration,
		})
	}
	return out, true
}

// RemoveScene deletes a scene and every transition touching it. The scenes
// that become neighbours are not linked by a new transition. The last
// remaining scene cannot be removed.
func RemoveScene(s models.Show, sceneID string) (models.Show, bool) {
	if len(s.Scenes) <= 1 || s.SceneIndex(sceneID) < 0 {
		return s, false
	}

	out := models.Show{
		Scenes:      make([]models.Scene, 0, len(s.Scenes)-1),
		Transitions: make([]models.Transition, 0, len(s.Transitions)),
	}
	for _, sc := range s.Scenes {
		if sc.ID != sceneID {
			out.Scenes = append(out.Scenes, sc)
		}
	}
	for _, t := range s.Transitions {
		if t.FromScene != sceneID && t.ToScene != sceneID {
			out.Transitions = append(out.Transitions, t)
		}
	}
	renumber(out.Scenes)
	return out, true
}

// UpdateScene merges u into the scene with the given id.
func UpdateScene(s models.Show, sceneID string, u SceneUpdate) (models.Show, bool) {
	idx := s.SceneIndex(sceneID)
	if idx < 0 {
		return s, false
	}
	out := s.Clone()
	if u.Name != nil {
		out.Scenes[idx].Name = *u.Name
	}
	if u.Duration != nil {
		out.Scenes[idx].Duration = ClampDuration(*u.Duration)
	}
	return out, true
}

// UpdateTransition sets the duration of the transition with the given id.
func UpdateTransition(s models.Show, transitionID string, duration int) (models.Show, bool) {
	for i, t := range s.Transitions {
		if t.ID != transitionID {
			continue
		}
		out := s.Clone()
		out.Transitions[i].Duration = ClampDuration(duration)
		return out, true
	}
	return s, false
}

// Normalize recomputes scene numbers and clamps every duration. It is applied
// to shows coming from outside the editor, such as files.
func Normalize(s models.Show) models.Show {
	out := s.Clone()
	renumber(out.Scenes)
	for i := range out.Scenes {
		out.Scenes[i].Duration = ClampDuration(out.Scenes[i].Duration)
	}
	for i := range out.Transitions {
		out.Transitions[i].Duration = ClampDuration(out.Transitions[i].Duration)
	}
	return out
}

func renumber(scenes []models.Scene) {
	for i := range scenes {
		scenes[i].Number = i + 1
	}
}
