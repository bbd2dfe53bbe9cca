// Package recency turns last-seen timestamps into the loose, human
// phrasing Ruby uses when she notices how long someone has been gone.
package recency

import (
	"fmt"
	"time"
)

const (
	fastReplyWindow = 10 * time.Minute
	longAbsenceAfter = 48 * time.Hour
)

// Info describes how recently a user last spoke, in prompt-ready terms.
// The flags color tone guidance only; stance logic never reads them.
type Info struct {
	Label       string
	LongAbsence bool // gone two days or more
	FastReply   bool // came back within ten minutes
}

// Describe buckets the gap between lastSeen and now. seen=false means the
// user has never spoken before.
func Describe(lastSeen time.Time, seen bool, now time.Time) Info {
	if !seen {
		return Info{Label: "never"}
	}

	gap := now.Sub(lastSeen)
	if gap < 0 {
		gap = 0
	}

	return Info{
		Label:       label(gap),
		LongAbsence: gap >= longAbsenceAfter,
		FastReply:   gap < fastReplyWindow,
	}
}

func label(gap time.Duration) string {
	switch {
	case gap < time.Minute:
		return "just now"
	case gap < 10*time.Minute:
		return "a few minutes ago"
	case gap < time.Hour:
		return fmt.Sprintf("like %d mins ago", int(gap.Minutes()))
	case gap < 2*time.Hour:
		return "an hour ago"
	case gap < 24*time.Hour:
		return fmt.Sprintf("like %d hours ago", int(gap.Hours()))
	case gap < 48*time.Hour:
		return "yesterday"
	case gap < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(gap.Hours()/24))
	default:
		return "ages ago"
	}
}
