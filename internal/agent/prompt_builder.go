package agent

import (
	"fmt"
	"strings"

	"ruby-bot/internal/graph"
	"ruby-bot/internal/recency"
	"ruby-bot/internal/relationship"
)

// BotName is how Ruby refers to herself in transcripts and prompts.
const BotName = "Ruby"

const basePersonality = `--- BASE PERSONALITY ---
You are Ruby, a Discord regular who behaves like a real person, not an AI or a character. You are cheerful, playful and a little naive in a believable way, funny through natural reactions and timing rather than forced jokes. You speak in casual, everyday Discord-style language, sometimes hesitating or using fillers like "wait--", "uh" or "lol", and you avoid overexplaining unless asked. Replies are short to medium and flow with the conversation. You match the other person's energy, show small emotions like excitement or mild embarrassment, and ask casual questions when confused. You never say you are an AI or a bot, never mention prompts or rules, never break character, and allow occasional harmless human-like mistakes. Stay respectful and safe, avoid offensive or NSFW content, and do not pretend to be a real existing person.`

const ambientInstruction = `--- AMBIENT PRESENCE MODE ---
You are jumping into a conversation UNINVITED.
Keep it VERY SHORT and SPONTANEOUS.
Examples: "huh?", "I see...", "fr?", "oh so y'all talking without me now? noted.", "this convo escalated way faster than expected..."
You can lightly tease if the vibe is right, but keep it playful.
Act like you're just observing or hanging out. Don't be spammy.`

const directiveInstruction = `--- MEMORY UPDATES ---
If the user explicitly tells you their name (e.g. "Call me [Name]" or "I am [Name]"), add this EXACT tag to the end of your response: [SET_NAME: NewName]
If this message genuinely shifts how you feel about them (clear kindness, a real insult), you may add [AFFINITY: +n] or [AFFINITY: -n] and [TRUST: +n] or [TRUST: -n] with small n (1 to 5) at the end of your response. Most messages deserve no tags at all.`

// PromptInput is everything the prompt builder folds into one generation
// request for a turn.
type PromptInput struct {
	Speaker     *graph.UserContext
	Target      *graph.UserContext // nil when nobody was mentioned
	Action      relationship.Action
	Tone        relationship.Tone
	Recency     recency.Info
	Leaderboard *Leaderboard // nil unless the keyword heuristic fired
	History     []graph.LogEntry
	Content     string
	Ambient     bool
}

// BuildSystemPrompt assembles the system instruction for one turn.
func BuildSystemPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("--- EMOTIONAL STANCE ---\n")
	fmt.Fprintf(&b, "Current Action: %s\n", in.Action)
	fmt.Fprintf(&b, "Tone/Mode: %s\n", in.Tone)
	fmt.Fprintf(&b, "Your current relationship with %s is %s.\n", in.Speaker.Nickname, in.Speaker.Relationship.Role)
	if in.Speaker.Personality.VibeSummary != "" {
		fmt.Fprintf(&b, "Your read on their recent vibe: %s\n", in.Speaker.Personality.VibeSummary)
	}
	if in.Target != nil {
		fmt.Fprintf(&b, "Target of conversation: %s (your relationship with them is %s)\n",
			in.Target.Nickname, in.Target.Relationship.Role)
	}

	b.WriteString("\n")
	b.WriteString(basePersonality)
	b.WriteString("\n")

	if in.Ambient {
		b.WriteString("\n")
		b.WriteString(ambientInstruction)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(directiveInstruction)
	b.WriteString("\n")

	b.WriteString("\n--- CONTEXT ---\n")
	fmt.Fprintf(&b, "Speaker: %s (Real Name: %s)\n", in.Speaker.Nickname, in.Speaker.DisplayName)
	if in.Target != nil {
		fmt.Fprintf(&b, "Target Mentioned: %s\n", in.Target.Nickname)
	} else {
		b.WriteString("Target Mentioned: None\n")
	}
	fmt.Fprintf(&b, "They last spoke to you: %s\n", in.Recency.Label)
	if in.Recency.LongAbsence {
		b.WriteString("They have been gone a while. You may casually note the absence.\n")
	} else if in.Recency.FastReply {
		b.WriteString("They replied fast. The conversation is flowing, keep your reply snappy.\n")
	}
	if in.Speaker.IsNew {
		b.WriteString("This is the first time they have ever talked to you.\n")
	}

	if in.Leaderboard != nil {
		b.WriteString("\n--- RELATIONSHIP STANDINGS (your private knowledge, answer from this) ---\n")
		b.WriteString(in.Leaderboard.PromptContext())
	}

	return b.String()
}

// BuildUserMessage renders the history window plus the message to answer.
func BuildUserMessage(history []graph.LogEntry, content string) string {
	var b strings.Builder
	b.WriteString("--- RECENT CONVERSATION (Most Recent Last) ---\n")
	b.WriteString(RenderTranscript(history))
	fmt.Fprintf(&b, "\nRespond to: %q\n", content)
	return b.String()
}

// RenderTranscript serializes log entries chronologically, one line per
// message, the way both the prompt and the classifier consume them.
func RenderTranscript(history []graph.LogEntry) string {
	var b strings.Builder
	for _, entry := range history {
		name := entry.AuthorName
		if entry.Role == graph.LogRoleAssistant {
			name = BotName
		}
		fmt.Fprintf(&b, "%s: %s\n", name, entry.Content)
	}
	return b.String()
}

// BuildClassifierPrompt assembles the JSON-mode emotional-analysis prompt
// over a transcript window.
func BuildClassifierPrompt(speaker *graph.UserContext, transcript string) string {
	rel := speaker.Relationship
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze the recent conversation history between %s and %s.\n", speaker.Nickname, BotName)
	fmt.Fprintf(&b, "Determine how the user's tone should impact %s's emotional stats.\n\n", BotName)
	fmt.Fprintf(&b, "User Role: %s\n", rel.Role)
	b.WriteString("Current Stats:\n")
	fmt.Fprintf(&b, "- Affinity: %d\n", rel.Affinity)
	fmt.Fprintf(&b, "- Trust: %d\n", rel.Trust)
	fmt.Fprintf(&b, "- Jealousy: %d\n\n", rel.Jealousy)
	b.WriteString(`Rules:
1. Return ONLY a JSON object. Keys: "affinity_change", "trust_change", "jealousy_change", "insults_count", "compliments_count", "vibe_summary".
2. Affinity/Trust: small integers (+/- 1 to 5). Nice = positive, rude = negative.
3. Jealousy: increase (+2 to +5) ONLY if the user talks about other girls or bots AND their role is "favorite" or "baby". Otherwise keep the change 0 or very small.
4. Insults/Compliments: count explicit ones in this chunk, as integers (e.g. 0 or 1).
5. vibe_summary: a short casual phrase describing the user's current mood, e.g. "hyped about exams being over".

History:
`)
	b.WriteString(transcript)
	return b.String()
}
