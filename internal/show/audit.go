package show

import "github.com/Vasu1712/scenyx-showtime/internal/models"

type IssueKind string

const (
	// IssueMissing marks neighbouring scenes with no transition between them,
	// as left behind by RemoveScene.
	IssueMissing IssueKind = "missing_transition"
	// IssueDuplicate marks neighbouring scenes joined by more than one transition.
	IssueDuplicate IssueKind = "duplicate_transition"
	// IssueStale marks a transition whose scenes are no longer neighbours, as
	// left behind by a mid-sequence AddScene.
	IssueStale IssueKind = "stale_transition"
)

// Issue is one place where the transitions disagree with the running order.
type Issue struct {
	Kind         IssueKind `json:"kind"`
	FromScene    string    `json:"fromScene"`
	ToScene      string    `json:"toScene"`
	TransitionID string    `json:"transitionId,omitempty"`
}

// Audit compares the transitions against the scene order. A show built only
// by appending scenes has no issues.
func Audit(s models.Show) []Issue {
	issues := []Issue{}
	pos := make(map[string]int, len(s.Scenes))
	for i, sc := range s.Scenes {
		pos[sc.ID] = i
	}

	count := make(map[[2]string]int, len(s.Transitions))
	for _, t := range s.Transitions {
		from, okFrom := pos[t.FromScene]
		to, okTo := pos[t.ToScene]
		if !okFrom || !okTo || to != from+1 {
			issues = append(issues, Issue{Kind: IssueStale, FromScene: t.FromScene, ToScene: t.ToScene, TransitionID: t.ID})
			continue
		}
		count[[2]string{t.FromScene, t.ToScene}]++
	}

	for i := 0; i < len(s.Scenes)-1; i++ {
		pair := [2]string{s.Scenes[i].ID, s.Scenes[i+1].ID}
		switch n := count[pair]; {
		case n == 0:
			issues = append(issues, Issue{Kind: IssueMissing, FromScene: pair[0], ToScene: pair[1]})
		case n > 1:
			issues = append(issues, Issue{Kind: IssueDuplicate, FromScene: pair[0], ToScene: pair[1]})
		}
	}
	return issues
}
