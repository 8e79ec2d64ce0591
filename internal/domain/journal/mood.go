package journal

import (
	"fmt"
	"strings"
)

// Mood is the closed set of emotional categories a feeling is filed under.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodAngry   Mood = "angry"
	MoodAnxious Mood = "anxious"
	MoodExcited Mood = "excited"
	MoodNeutral Mood = "neutral"
)

// Moods lists every valid mood in display order.
var Moods = []Mood{MoodHappy, MoodSad, MoodAngry, MoodAnxious, MoodExcited, MoodNeutral}

func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodSad, MoodAngry, MoodAnxious, MoodExcited, MoodNeutral:
		return true
	default:
		return false
	}
}

func (m Mood) String() string { return string(m) }

// ParseMood normalizes case and surrounding space before checking membership.
func ParseMood(raw string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", fmt.Errorf("invalid mood %q", raw)
	}
	return m, nil
}
