package agent

import (
	"context"

	"go.uber.org/zap"

	"ruby-bot/internal/graph"
	"ruby-bot/internal/relationship"
	"ruby-bot/pkg/logger"
)

// EmotionUpdater owns both relationship-mutation paths: the periodic
// classification sweep and the tag directives scraped out of replies.
// Both converge on relationship.ApplyDeltas and a single store write.
type EmotionUpdater struct {
	store  Store
	llm    LLM
	logger *zap.Logger
}

// NewEmotionUpdater creates an emotion updater
func NewEmotionUpdater(store Store, llm LLM) *EmotionUpdater {
	return &EmotionUpdater{
		store:  store,
		llm:    llm,
		logger: logger.Get(),
	}
}

// ShouldReassess reports whether the inbound message about to be logged
// completes a reassessment chunk. storedCount is the log-row count before
// the current message is written; the +1 accounts for log-after-respond
// ordering so the trigger lands on every third completed message.
func ShouldReassess(storedCount int64, every int) bool {
	return (storedCount+1)%int64(every) == 0
}

// RunPeriodicUpdate classifies the transcript window and applies the
// resulting deltas. It returns the stored relationship to use for the
// rest of the turn. Classification is best-effort: on any failure the
// update is skipped, the error is logged, and the old state comes back
// untouched so the reply pipeline is never blocked.
func (e *EmotionUpdater) RunPeriodicUpdate(ctx context.Context, speaker *graph.UserContext, transcript string) relationship.Relationship {
	old := speaker.Relationship

	report, err := e.llm.Classify(ctx, BuildClassifierPrompt(speaker, transcript))
	if err != nil {
		e.logger.Warn("Skipping emotional reassessment",
			zap.String("user_id", speaker.User.ID),
			zap.Error(err),
		)
		return old
	}

	updated := relationship.ApplyDeltas(old, report.Deltas, true)
	stored, err := e.store.UpdateRelationship(ctx, speaker.User.ID, updated)
	if err != nil {
		e.logger.Warn("Failed to store reassessed relationship",
			zap.String("user_id", speaker.User.ID),
			zap.Error(err),
		)
		return old
	}

	if report.VibeSummary != "" {
		if err := e.store.SetVibeSummary(ctx, speaker.User.ID, report.VibeSummary); err != nil {
			e.logger.Warn("Failed to store vibe summary",
				zap.String("user_id", speaker.User.ID),
				zap.Error(err),
			)
		} else {
			speaker.Personality.VibeSummary = report.VibeSummary
		}
	}

	e.logger.Info("Relationship reassessed",
		zap.String("user_id", speaker.User.ID),
		zap.String("nickname", speaker.Nickname),
		zap.Int("affinity", stored.Affinity),
		zap.Int("trust", stored.Trust),
		zap.Int("jealousy", stored.Jealousy),
		zap.String("role", string(stored.Role)),
	)
	return stored
}

// ApplyDirectives applies the typed directives parsed from a generated
// reply: summed score deltas through clamp-and-reclassify, and the last
// name assignment as the nickname preference. It returns the relationship
// after any score write.
func (e *EmotionUpdater) ApplyDirectives(ctx context.Context, speaker *graph.UserContext, directives []relationship.Directive) relationship.Relationship {
	rel := speaker.Relationship
	if len(directives) == 0 {
		return rel
	}

	if deltas := relationship.DeltasFromDirectives(directives); !deltas.IsZero() {
		updated := relationship.ApplyDeltas(rel, deltas, true)
		stored, err := e.store.UpdateRelationship(ctx, speaker.User.ID, updated)
		if err != nil {
			e.logger.Warn("Failed to apply reply directives",
				zap.String("user_id", speaker.User.ID),
				zap.Error(err),
			)
		} else {
			rel = stored
		}
	}

	if name, ok := relationship.NameFromDirectives(directives); ok {
		if err := e.store.SetNickname(ctx, speaker.User.ID, name); err != nil {
			e.logger.Warn("Failed to store nickname",
				zap.String("user_id", speaker.User.ID),
				zap.Error(err),
			)
		} else {
			speaker.Nickname = name
			e.logger.Info("Nickname updated",
				zap.String("user_id", speaker.User.ID),
				zap.String("nickname", name),
			)
		}
	}

	return rel
}
