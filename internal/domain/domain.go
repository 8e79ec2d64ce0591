package domain

import "github.com/mindmirror/mindmirror-backend/internal/domain/journal"

type Mood = journal.Mood

const (
	MoodHappy   = journal.MoodHappy
	MoodSad     = journal.MoodSad
	MoodAngry   = journal.MoodAngry
	MoodAnxious = journal.MoodAnxious
	MoodExcited = journal.MoodExcited
	MoodNeutral = journal.MoodNeutral
)

type Feeling = journal.Feeling
type FeelingPatch = journal.FeelingPatch
type ListFilter = journal.ListFilter
type MoodCount = journal.MoodCount
type FeelingStats = journal.FeelingStats

var (
	Moods     = journal.Moods
	ParseMood = journal.ParseMood
	NewID     = journal.NewID
	ParseID   = journal.ParseID
	IsValidID = journal.IsValidID
)
