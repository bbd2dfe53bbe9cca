package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"ruby-bot/internal/relationship"
	apperrors "ruby-bot/pkg/errors"
)

const checkmarkEmoji = "✅"

// handleCommand dispatches the text-prefixed operator commands. !stats is
// open to everyone; mutating commands require guild administrator.
func (h *Handler) handleCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	fields := strings.Fields(m.Content)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "!stats":
		h.commandStats(s, m)
	case "!set_affinity":
		h.commandSetScore(s, m, fields, "affinity", h.setAffinity)
	case "!set_trust":
		h.commandSetScore(s, m, fields, "trust", h.setTrust)
	case "!set_role":
		h.commandSetRole(s, m, fields)
	case "!ambient":
		h.commandAmbient(s, m, fields)
	}
}

func (h *Handler) commandStats(s *discordgo.Session, m *discordgo.MessageCreate) {
	target := m.Author
	for _, u := range m.Mentions {
		if u.ID != s.State.User.ID {
			target = u
			break
		}
	}

	data, err := h.orch.Stats(context.Background(), target.ID, target.Username, displayName(target))
	if err != nil {
		h.logger.Error("Failed to load stats", zap.Error(err), zap.String("user_id", target.ID))
		_, _ = s.ChannelMessageSend(m.ChannelID, glitchReply)
		return
	}

	rel := data.Relationship
	stats := fmt.Sprintf(
		"**\U0001F4CA %s's Ruby Stats**\n"+
			"Role: `%s`\n"+
			"Affinity: `%d`\n"+
			"Trust: `%d`\n"+
			"Jealousy: `%d`\n"+
			"Insults: `%d` | Compliments: `%d`",
		data.Nickname, rel.Role, rel.Affinity, rel.Trust, rel.Jealousy, rel.Insults, rel.Compliments,
	)
	_, _ = s.ChannelMessageSend(m.ChannelID, stats)
}

type setScoreFunc func(ctx context.Context, userID string, score int) error

func (h *Handler) setAffinity(ctx context.Context, userID string, score int) error {
	return h.graphRepo.SetAffinity(ctx, userID, score)
}

func (h *Handler) setTrust(ctx context.Context, userID string, score int) error {
	return h.graphRepo.SetTrust(ctx, userID, score)
}

func (h *Handler) commandSetScore(s *discordgo.Session, m *discordgo.MessageCreate, fields []string, name string, set setScoreFunc) {
	if !h.isAdmin(s, m) {
		return
	}
	if len(fields) < 3 {
		_, _ = s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Usage: !set_%s @User <score>", name))
		return
	}
	target := firstMentioned(s, m)
	if target == nil {
		_, _ = s.ChannelMessageSend(m.ChannelID, "Please mention a user.")
		return
	}
	score, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		_, _ = s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Usage: !set_%s @User <score>", name))
		return
	}

	ctx := context.Background()
	userID, err := h.graphRepo.FindUserIDByDiscordID(ctx, target.ID)
	if err == nil {
		err = set(ctx, userID, score)
	}
	h.finishMutation(s, m, err)
}

func (h *Handler) commandSetRole(s *discordgo.Session, m *discordgo.MessageCreate, fields []string) {
	if !h.isAdmin(s, m) {
		return
	}
	if len(fields) < 3 {
		_, _ = s.ChannelMessageSend(m.ChannelID, "Usage: !set_role @User <role>")
		return
	}
	target := firstMentioned(s, m)
	if target == nil {
		_, _ = s.ChannelMessageSend(m.ChannelID, "Please mention a user.")
		return
	}
	role := strings.ToLower(fields[len(fields)-1])
	if !relationship.IsValidRole(role) {
		choices := make([]string, len(relationship.ValidRoles))
		for i, r := range relationship.ValidRoles {
			choices[i] = string(r)
		}
		_, _ = s.ChannelMessageSend(m.ChannelID, "Invalid role. Choices: "+strings.Join(choices, ", "))
		return
	}

	ctx := context.Background()
	userID, err := h.graphRepo.FindUserIDByDiscordID(ctx, target.ID)
	if err == nil {
		err = h.graphRepo.SetRole(ctx, userID, relationship.Role(role))
	}
	h.finishMutation(s, m, err)
}

func (h *Handler) commandAmbient(s *discordgo.Session, m *discordgo.MessageCreate, fields []string) {
	if !h.isAdmin(s, m) {
		return
	}
	if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
		_, _ = s.ChannelMessageSend(m.ChannelID, "Usage: !ambient on|off")
		return
	}

	enabled := fields[1] == "on"
	h.scheduler.SetEnabled(enabled)
	h.logger.Info("Ambient mode toggled",
		zap.Bool("enabled", enabled),
		zap.String("by", m.Author.ID),
	)
	_ = s.MessageReactionAdd(m.ChannelID, m.ID, checkmarkEmoji)
}

func (h *Handler) finishMutation(s *discordgo.Session, m *discordgo.MessageCreate, err error) {
	switch {
	case err == nil:
		_ = s.MessageReactionAdd(m.ChannelID, m.ID, checkmarkEmoji)
	case apperrors.IsNotFound(err):
		_, _ = s.ChannelMessageSend(m.ChannelID, "User not found in memory.")
	default:
		h.logger.Error("Operator command failed", zap.Error(err))
		_, _ = s.ChannelMessageSend(m.ChannelID, glitchReply)
	}
}

func (h *Handler) isAdmin(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		h.logger.Warn("Failed to resolve permissions",
			zap.Error(err),
			zap.String("user_id", m.Author.ID),
		)
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}

func firstMentioned(s *discordgo.Session, m *discordgo.MessageCreate) *discordgo.User {
	for _, u := range m.Mentions {
		if u.ID != s.State.User.ID {
			return u
		}
	}
	return nil
}
