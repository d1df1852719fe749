package models

// Scene is one timed unit in a show's running order.
type Scene struct {
	ID       string `json:"id" yaml:"id"`             // Unique identifier for the scene (UUID)
	Number   int    `json:"number" yaml:"number"`     // 1-based position in the running order, always derived
	Name     string `json:"name" yaml:"name"`         // Display label, may be empty
	Duration int    `json:"duration" yaml:"duration"` // Seconds, never negative
}

// Transition is the timed gap between two scenes.
type Transition struct {
	ID        string `json:"id" yaml:"id"`
	FromScene string `json:"fromScene" yaml:"fromScene"` // Scene.ID on the left of the gap
	ToScene   string `json:"toScene" yaml:"toScene"`     // Scene.ID on the right of the gap
	Duration  int    `json:"duration" yaml:"duration"`
}

// Show is the complete running order plus its transitions.
type Show struct {
	Scenes      []Scene      `json:"scenes" yaml:"scenes"`
	Transitions []Transition `json:"transitions" yaml:"transitions"`
}

// Clone returns a deep copy so callers never share backing arrays.
func (s Show) Clone() Show {
	out := Show{
		Scenes:      make([]Scene, len(s.Scenes)),
		Transitions: make([]Transition, len(s.Transitions)),
	}
	copy(out.Scenes, s.Scenes)
	copy(out.Transitions, s.Transitions)
	return out
}

// SceneIndex returns the position of the scene with the given id, or -1.
func (s Show) SceneIndex(sceneID string) int {
	for i, sc := range s.Scenes {
		if sc.ID == sceneID {
			return i
		}
	}
	return -1
}

// TransitionFrom returns the first transition leaving the given scene.
func (s Show) TransitionFrom(sceneID string) (Transition, bool) {
	for _, t := range s.Transitions {
		if t.FromScene == sceneID {
			return t, true
		}
	}
	return Transition{}, false
}
