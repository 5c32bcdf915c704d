package episodes

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/killallgit/castsync/internal/models"
	"github.com/killallgit/castsync/internal/pocketcasts"
)

// Action names a mutation that can be applied to an episode
type Action string

const (
	ActionPlayed    Action = "played"
	ActionUnplayed  Action = "unplayed"
	ActionProgress  Action = "progress"
	ActionStar      Action = "star"
	ActionUnstar    Action = "unstar"
	ActionArchive   Action = "archive"
	ActionUnarchive Action = "unarchive"
	ActionPlayNext  Action = "play-next"
	ActionPlayLast  Action = "play-last"
)

type actionHandler struct {
	run func(ctx context.Context, e *pocketcasts.Episode, position int) error
	// apply mirrors a successful mutation onto the stored row
	apply func(s *models.Episode, position int)
}

var actions = map[Action]actionHandler{
	ActionPlayed: {
		run: func(ctx context.Context, e *pocketcasts.Episode, _ int) error { return e.MarkPlayed(ctx) },
		apply: func(s *models.Episode, _ int) {
			s.PlayingStatus = int(pocketcasts.StatusPlayed)
		},
	},
	ActionUnplayed: {
		run: func(ctx context.Context, e *pocketcasts.Episode, _ int) error { return e.MarkUnplayed(ctx) },
		apply: func(s *models.Episode, _ int) {
			s.PlayingStatus = int(pocketcasts.StatusUnplayed)
			s.PlayedUpTo = 0
		},
	},
	ActionProgress: {
		run: func(ctx context.Context, e *pocketcasts.Episode, p int) error { return e.UpdateProgress(ctx, p) },
		apply: func(s *models.Episode, p int) {
			s.PlayingStatus = int(pocketcasts.StatusInProgress)
			s.PlayedUpTo = p
		},
	},
	ActionStar: {
		run:   func(ctx context.Context, e *pocketcasts.Episode, _ int) error { return e.AddStar(ctx) },
		apply: func(s *models.Episode, _ int) { s.Starred = true },
	},
	ActionUnstar: {
		run:   func(ctx context.Context, e *pocketcasts.Episode, _ int) error { return e.RemoveStar(ctx) },
		apply: func(s *models.Episode, _ int) { s.Starred = false },
	},
	ActionArchive: {
		run:   func(ctx context.Context, e *pocketcasts.Episode, _ int) error { return e.Archive(ctx) },
		apply: func(s *models.Episode, _ int) { s.Deleted = true },
	},
	ActionUnarchive: {
		run:   func(ctx context.Context, e *pocketcasts.Episode, _ int) error { return e.Unarchive(ctx) },
		apply: func(s *models.Episode, _ int) { s.Deleted = false },
	},
	ActionPlayNext: {
		run:   func(ctx context.Context, e *pocketcasts.Episode, _ int) error { return e.PlayNext(ctx) },
		apply: func(*models.Episode, int) {},
	},
	ActionPlayLast: {
		run:   func(ctx context.Context, e *pocketcasts.Episode, _ int) error { return e.PlayLast(ctx) },
		apply: func(*models.Episode, int) {},
	},
}

// Actions returns every supported action
func Actions() []Action {
	return []Action{
		ActionPlayed, ActionUnplayed, ActionProgress,
		ActionStar, ActionUnstar,
		ActionArchive, ActionUnarchive,
		ActionPlayNext, ActionPlayLast,
	}
}

// ParseAction validates an action name
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := actions[a]; !ok {
		names := lo.Map(Actions(), func(a Action, _ int) string { return string(a) })
		return "", NewValidationError("action", "unknown action "+s+", want one of "+strings.Join(names, ", "))
	}
	return a, nil
}
