package discord

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"ruby-bot/internal/agent"
	"ruby-bot/internal/ambient"
	"ruby-bot/internal/graph"
	apperrors "ruby-bot/pkg/errors"
)

// In-character error lines, kept out of ambient turns entirely.
const (
	rateLimitedReply = "*yawns* I'm sooo eepy... Brain not working. (Rate Limit Reached)"
	glitchReply      = "System glitch... gimme a sec."
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// Handler handles Discord message processing
type Handler struct {
	orch      *agent.Orchestrator
	graphRepo *graph.Repository
	scheduler *ambient.Scheduler
	logger    *zap.Logger
}

// NewHandler creates a new Discord message handler
func NewHandler(orch *agent.Orchestrator, graphRepo *graph.Repository, scheduler *ambient.Scheduler, logger *zap.Logger) *Handler {
	return &Handler{
		orch:      orch,
		graphRepo: graphRepo,
		scheduler: scheduler,
		logger:    logger,
	}
}

// HandleMessage processes a Discord message
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from the bot itself
	if m.Author.ID == s.State.User.ID {
		return
	}

	if strings.HasPrefix(m.Content, "!") {
		h.handleCommand(s, m)
		return
	}

	isDM := m.GuildID == ""
	isMentioned := false
	for _, mention := range m.Mentions {
		if mention.ID == s.State.User.ID {
			isMentioned = true
			break
		}
	}

	if isDM || isMentioned {
		h.runTurn(s, m, false)
		return
	}

	h.maybeInterject(s, m)
}

// runTurn hands one message to the orchestrator and maps failures to
// in-character replies. Ambient turns fail silently.
func (h *Handler) runTurn(s *discordgo.Session, m *discordgo.MessageCreate, isAmbient bool) {
	msg := h.buildInbound(s, m, isAmbient)
	if msg.Content == "" && msg.ImageURL == "" {
		return
	}

	h.logger.Info("Processing message",
		zap.String("user_id", m.Author.ID),
		zap.String("channel_id", m.ChannelID),
		zap.Bool("ambient", isAmbient),
	)

	err := h.orch.RunTurn(context.Background(), msg)
	if err == nil {
		return
	}

	h.logger.Error("Turn failed",
		zap.Error(err),
		zap.String("user_id", m.Author.ID),
		zap.Bool("ambient", isAmbient),
	)

	// Never spam error text for a reply nobody asked for
	if isAmbient {
		return
	}

	if apperrors.IsRateLimited(err) {
		_, _ = s.ChannelMessageSend(m.ChannelID, rateLimitedReply)
		return
	}
	_, _ = s.ChannelMessageSend(m.ChannelID, glitchReply)
}

// maybeInterject runs the ambient gate for an unaddressed message: dice
// roll and cooldown peek first, then the store round trip to confirm Ruby
// has met the speaker, then an atomic claim of the cooldown window.
func (h *Handler) maybeInterject(s *discordgo.Session, m *discordgo.MessageCreate) {
	now := time.Now()
	if !h.scheduler.ShouldConsider(m.ChannelID, now) {
		return
	}

	ctx := context.Background()
	speaker, err := h.graphRepo.GetOrCreateUserContext(ctx, m.Author.ID, m.Author.Username, displayName(m.Author))
	if err != nil {
		h.logger.Error("Failed to load speaker for ambient check", zap.Error(err))
		return
	}

	hasHistory, err := h.graphRepo.HasHistory(ctx, speaker.User.ID)
	if err != nil {
		h.logger.Error("Failed to check history for ambient gate", zap.Error(err))
		return
	}
	if !hasHistory {
		// Don't jump in on first-time users
		return
	}

	if !h.scheduler.Fire(m.ChannelID, now) {
		return
	}

	h.logger.Info("Ambient interjection triggered",
		zap.String("channel_id", m.ChannelID),
		zap.String("user_id", m.Author.ID),
	)
	h.runTurn(s, m, true)
}

// buildInbound converts a Discord event into the orchestrator's inbound
// shape: clean text, non-bot mentions, first image attachment.
func (h *Handler) buildInbound(s *discordgo.Session, m *discordgo.MessageCreate, isAmbient bool) *agent.InboundMessage {
	content := strings.TrimSpace(m.Content)
	botID := s.State.User.ID
	content = strings.TrimPrefix(content, "<@"+botID+">")
	content = strings.TrimPrefix(content, "<@!"+botID+">")
	content = strings.TrimSpace(content)

	var mentions []agent.Mention
	for _, u := range m.Mentions {
		if u.ID == botID {
			continue
		}
		// Replace raw mention tokens with readable names
		content = strings.ReplaceAll(content, "<@"+u.ID+">", "@"+displayName(u))
		content = strings.ReplaceAll(content, "<@!"+u.ID+">", "@"+displayName(u))
		mentions = append(mentions, agent.Mention{
			DiscordID:   u.ID,
			Username:    u.Username,
			DisplayName: displayName(u),
		})
	}

	return &agent.InboundMessage{
		AuthorID:          m.Author.ID,
		AuthorUsername:    m.Author.Username,
		AuthorDisplayName: displayName(m.Author),
		Mentions:          mentions,
		ChannelID:         m.ChannelID,
		Content:           content,
		ImageURL:          firstImageURL(m.Attachments),
		Ambient:           isAmbient,
	}
}

func firstImageURL(attachments []*discordgo.MessageAttachment) string {
	for _, a := range attachments {
		name := strings.ToLower(a.Filename)
		for _, ext := range imageExtensions {
			if strings.HasSuffix(name, ext) {
				return a.URL
			}
		}
	}
	return ""
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
