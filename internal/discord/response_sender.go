package discord

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	apperrors "ruby-bot/pkg/errors"
	"ruby-bot/pkg/logger"
)

// DiscordMaxMessageLength is the character limit for one Discord message
const DiscordMaxMessageLength = 2000

// ResponseSender delivers generated replies to Discord channels,
// splitting anything over the message limit.
type ResponseSender struct {
	session *discordgo.Session
	logger  *zap.Logger
}

// NewResponseSender creates a response sender
func NewResponseSender(session *discordgo.Session) *ResponseSender {
	return &ResponseSender{
		session: session,
		logger:  logger.Get(),
	}
}

// Send implements agent.Sender
func (r *ResponseSender) Send(channelID, text string) error {
	if r.session == nil {
		return apperrors.ErrDiscordSessionUnavailable
	}

	chunks := splitMessage(text, DiscordMaxMessageLength)
	for i, chunk := range chunks {
		if _, err := r.session.ChannelMessageSend(channelID, chunk); err != nil {
			return apperrors.NewDiscordMessageSendFailed(channelID, err)
		}
		// Brief pause between chunks to avoid rate limiting
		if i < len(chunks)-1 {
			time.Sleep(100 * time.Millisecond)
		}
	}
	return nil
}

// splitMessage splits a message into chunks of at most maxLength,
// preferring line boundaries, then word boundaries.
func splitMessage(content string, maxLength int) []string {
	if len(content) <= maxLength {
		return []string{content}
	}

	var chunks []string
	current := ""
	for _, line := range strings.Split(content, "\n") {
		for len(line) > maxLength {
			// Pathologically long line: break at the last space that fits
			cut := strings.LastIndex(line[:maxLength], " ")
			if cut <= 0 {
				cut = maxLength
			}
			if current != "" {
				chunks = append(chunks, current)
				current = ""
			}
			chunks = append(chunks, strings.TrimSpace(line[:cut]))
			line = strings.TrimSpace(line[cut:])
		}

		candidate := line
		if current != "" {
			candidate = current + "\n" + line
		}
		if len(candidate) > maxLength {
			chunks = append(chunks, current)
			current = line
		} else {
			current = candidate
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
