package journal

import "time"

type Feeling struct {
	ID         string    `gorm:"column:id;type:char(24);primaryKey" json:"id"`
	OwnerID    string    `gorm:"column:owner_id;type:varchar(64);not null;index:idx_feeling_owner_created,priority:1" json:"ownerId"`
	Text       string    `gorm:"column:text;type:text;not null" json:"text"`
	Mood       Mood      `gorm:"column:mood;type:varchar(16);not null" json:"mood"`
	Gratitude  *string   `gorm:"column:gratitude;type:text" json:"gratitude"`
	VoiceRef   *string   `gorm:"column:voice_ref;type:text" json:"voiceRef"`
	VideoRef   *string   `gorm:"column:video_ref;type:text" json:"videoRef"`
	AIResponse string    `gorm:"column:ai_response;type:text;not null" json:"aiResponse"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;index:idx_feeling_owner_created,priority:2" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (Feeling) TableName() string { return "feeling" }

// FeelingPatch is the set of fields an update may change.
// Attachments are fixed at creation and have no place here.
type FeelingPatch struct {
	Text       string
	Mood       Mood
	AIResponse string

	// SetGratitude distinguishes "leave as is" from "replace with Gratitude" (nil clears).
	SetGratitude bool
	Gratitude    *string
}

type ListFilter struct {
	Mood   Mood
	Limit  int
	Offset int
}

type MoodCount struct {
	Mood  Mood  `json:"mood"`
	Count int64 `json:"count"`
}

type FeelingStats struct {
	MoodCounts []MoodCount `json:"moodCounts"`
	WeekTrends []*Feeling  `json:"weekTrends"`
}
