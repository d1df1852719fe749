package show

import (
	"fmt"

	"github.com/Vasu1712/scenyx-showtime/internal/models"
)

// Gap is the row shown between two neighbouring scenes.
type Gap struct {
	FromScene    string `json:"fromScene"`
	ToScene      string `json:"toScene"`
	Label        string `json:"label"`
	TransitionID string `json:"transitionId,omitempty"` // empty when no transition leaves FromScene
	Duration     int    `json:"duration"`
}

// Gaps lists one Gap per pair of neighbouring scenes. The transition shown for
// a pair is the first one leaving the left scene, which after a mid-sequence
// insertion may still point at the old neighbour. Pairs without any outgoing
// transition show the default duration.
func Gaps(s models.Show) []Gap {
	if len(s.Scenes) < 2 {
		return []Gap{}
	}
	gaps := make([]Gap, 0, len(s.Scenes)-1)
	for i := 0; i < len(s.Scenes)-1; i++ {
		from, to := s.Scenes[i], s.Scenes[i+1]
		g := Gap{
			FromScene: from.ID,
			ToScene:   to.ID,
			Label:     fmt.Sprintf("TR %s > %s", SceneLabel(from), SceneLabel(to)),
			Duration:  DefaultTransitionDuration,
		}
		// An existing transition wins even at 0 seconds; the totals count it as 0 too.
		if t, ok := s.TransitionFrom(from.ID); ok {
			g.TransitionID = t.ID
			g.Duration = t.Duration
		}
		gaps = append(gaps, g)
	}
	return gaps
}

// SceneLabel is the scene name, or "Scene N" when it has none.
func SceneLabel(sc models.Scene) string {
	if sc.Name != "" {
		return sc.Name
	}
	return fmt.Sprintf("Scene %d", sc.Number)
}
