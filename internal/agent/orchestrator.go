package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ruby-bot/internal/adapter"
	"ruby-bot/internal/graph"
	"ruby-bot/internal/recency"
	"ruby-bot/internal/relationship"
	"ruby-bot/pkg/logger"
)

// timeNow is swapped out by tests
var timeNow = time.Now

// Mention identifies a third party named in an inbound message. The bot's
// own mention is filtered out before this point.
type Mention struct {
	DiscordID   string
	Username    string
	DisplayName string
}

// InboundMessage is one chat event selected for a reply, either because
// Ruby was addressed or because the ambient scheduler fired.
type InboundMessage struct {
	AuthorID          string
	AuthorUsername    string
	AuthorDisplayName string
	Mentions          []Mention
	ChannelID         string
	Content           string // clean text, bot mention stripped
	ImageURL          string // first image attachment, if any
	Ambient           bool
}

// Orchestrator sequences one full turn: load state, maybe reassess, pick
// a stance, generate, apply reply directives, send, log. It is the only
// component that touches every external boundary.
type Orchestrator struct {
	store       Store
	llm         LLM
	sender      Sender
	updater     *EmotionUpdater
	leaderboard *LeaderboardAggregator
	memoryLimit int
	updateEvery int
	logger      *zap.Logger
}

// NewOrchestrator creates a turn orchestrator
func NewOrchestrator(store Store, llm LLM, sender Sender, memoryLimit, updateEvery int) *Orchestrator {
	return &Orchestrator{
		store:       store,
		llm:         llm,
		sender:      sender,
		updater:     NewEmotionUpdater(store, llm),
		leaderboard: NewLeaderboardAggregator(store),
		memoryLimit: memoryLimit,
		updateEvery: updateEvery,
		logger:      logger.Get(),
	}
}

// RunTurn processes one inbound message end to end. The inbound log write
// happens before generation is attempted, so no downstream failure can
// lose it. Errors after that point abort the turn without corrupting
// state; the caller decides what, if anything, to tell the user.
func (o *Orchestrator) RunTurn(ctx context.Context, msg *InboundMessage) error {
	// 1. Load speaker and optional target state
	speaker, err := o.store.GetOrCreateUserContext(ctx, msg.AuthorID, msg.AuthorUsername, msg.AuthorDisplayName)
	if err != nil {
		return err
	}

	var target *graph.UserContext
	if len(msg.Mentions) > 0 {
		m := msg.Mentions[0]
		target, err = o.store.GetOrCreateUserContext(ctx, m.DiscordID, m.Username, m.DisplayName)
		if err != nil {
			return err
		}
	}

	// 2. Recent channel history, shared by the prompt and the classifier
	history, err := o.store.GetChannelHistory(ctx, msg.ChannelID, o.memoryLimit)
	if err != nil {
		return err
	}

	// 3. Periodic emotional reassessment, counting the message about to
	// be logged. Best-effort: the turn continues on any failure, but a
	// successful run feeds the refreshed state into this very turn.
	storedCount, err := o.store.MessageCount(ctx, speaker.User.ID)
	if err != nil {
		o.logger.Warn("Failed to count messages, skipping reassessment check",
			zap.String("user_id", speaker.User.ID),
			zap.Error(err),
		)
	} else if ShouldReassess(storedCount, o.updateEvery) {
		transcript := RenderTranscript(history) + msg.AuthorDisplayName + ": " + msg.Content + "\n"
		speaker.Relationship = o.updater.RunPeriodicUpdate(ctx, speaker, transcript)
	}

	// 4. Stance
	var targetRel *relationship.Relationship
	if target != nil {
		targetRel = &target.Relationship
	}
	action, tone := relationship.Decide(speaker.Relationship, targetRel)
	o.logger.Debug("Stance decided",
		zap.String("nickname", speaker.Nickname),
		zap.String("action", string(action)),
		zap.String("tone", string(tone)),
	)

	// 5. Standings, only for "who is your favorite" style questions
	var lb *Leaderboard
	if WantsLeaderboard(msg.Content) {
		lb, err = o.leaderboard.Aggregate(ctx)
		if err != nil {
			o.logger.Warn("Failed to aggregate standings", zap.Error(err))
			lb = nil
		}
	}

	// 6. Recency, read before the inbound message is logged
	lastSeen, seen, err := o.store.LastUserMessageAt(ctx, speaker.User.ID)
	if err != nil {
		o.logger.Warn("Failed to read last-seen timestamp",
			zap.String("user_id", speaker.User.ID),
			zap.Error(err),
		)
		seen = false
	}
	rec := recency.Describe(lastSeen, seen, timeNow())

	// 7. Log the inbound message before generation is attempted
	if err := o.store.LogMessage(ctx, speaker.User.ID, msg.ChannelID, graph.LogRoleUser, msg.AuthorDisplayName, msg.Content); err != nil {
		return err
	}

	// 8. Generate
	prompt := PromptInput{
		Speaker:     speaker,
		Target:      target,
		Action:      action,
		Tone:        tone,
		Recency:     rec,
		Leaderboard: lb,
		History:     history,
		Content:     msg.Content,
		Ambient:     msg.Ambient,
	}
	reply, err := o.llm.Generate(ctx, adapter.GenerateRequest{
		SystemPrompt: BuildSystemPrompt(prompt),
		UserMessage:  BuildUserMessage(history, msg.Content),
		ImageURL:     msg.ImageURL,
	})
	if err != nil {
		return err
	}

	// 9. Scrape directives out of the reply, apply, present the rest
	directives, cleaned := relationship.ParseDirectives(reply)
	o.updater.ApplyDirectives(ctx, speaker, directives)

	if cleaned == "" {
		o.logger.Debug("Reply was directives only, nothing to send",
			zap.String("user_id", speaker.User.ID),
		)
		return nil
	}

	// 10. Send, then log the reply
	if err := o.sender.Send(msg.ChannelID, cleaned); err != nil {
		return err
	}
	if err := o.store.LogMessage(ctx, speaker.User.ID, msg.ChannelID, graph.LogRoleAssistant, BotName, cleaned); err != nil {
		o.logger.Warn("Failed to log reply",
			zap.String("user_id", speaker.User.ID),
			zap.Error(err),
		)
	}

	return nil
}

// Stats returns the relationship snapshot for one user, registering them
// on first sight the same way a chat turn would.
func (o *Orchestrator) Stats(ctx context.Context, discordID, username, displayName string) (*graph.UserContext, error) {
	return o.store.GetOrCreateUserContext(ctx, discordID, username, displayName)
}
