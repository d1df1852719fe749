package show

import (
	"errors"
	"fmt"

	"github.com/Vasu1712/scenyx-showtime/internal/models"
)

// ErrInvalidShow is returned for imported shows the editor cannot hold.
var ErrInvalidShow = errors.New("invalid show")

// Validate checks a show that comes from outside the editor (an upload or a
// show file). It needs at least one scene, and every scene and transition
// needs an id that is not empty and not used twice. Durations and numbering
// are not checked here; Normalize repairs those.
func Validate(s models.Show) error {
	if len(s.Scenes) == 0 {
		return fmt.Errorf("%w: a show needs at least one scene", ErrInvalidShow)
	}

	scenes := make(map[string]struct{}, len(s.Scenes))
	for i, sc := range s.Scenes {
		if sc.ID == "" {
			return fmt.Errorf("%w: scene %d has no id", ErrInvalidShow, i+1)
		}
		if _, dup := scenes[sc.ID]; dup {
			return fmt.Errorf("%w: scene id %q is used twice", ErrInvalidShow, sc.ID)
		}
		scenes[sc.ID] = struct{}{}
	}

	// Transition ids share no namespace with scene ids, so a transition may
	// reuse a scene id ("1" and "t1" are both fine in the example).
	transitions := make(map[string]struct{}, len(s.Transitions))
	for i, tr := range s.Transitions {
		if tr.ID == "" {
			return fmt.Errorf("%w: transition %d has no id", ErrInvalidShow, i+1)
		}
		if _, dup := transitions[tr.ID]; dup {
			return fmt.Errorf("%w: transition id %q is used twice", ErrInvalidShow, tr.ID)
		}
		transitions[tr.ID] = struct{}{}
	}
	return nil
}
