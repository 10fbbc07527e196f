// Package domain defines the analyze service types
package domain

import (
	"time"

	"checkstats/internal/core/detector"
)

// Config controls one analysis run
type Config struct {
	// EventCountPolicy is "message" (each event counts 1) or "token"
	// (each event counts its k-token hits, minimum 1)
	EventCountPolicy string
	TextTruncLen     int
	IncludeService   bool
	IncludeBots      bool
	IncludeForwards  bool
	StitchFollowups  bool
	StitchWindow     time.Duration
}

// DefaultConfig returns the standard analysis settings
func DefaultConfig() Config {
	return Config{
		EventCountPolicy: "message",
		TextTruncLen:     500,
		IncludeService:   false,
		IncludeBots:      true,
		IncludeForwards:  true,
		StitchFollowups:  true,
		StitchWindow:     5 * time.Minute,
	}
}

// Event is one detected check event, carrying everything events.csv needs
type Event struct {
	EventID         string
	MessageID       int64
	TimestampUTC    time.Time
	TimestampBerlin time.Time

	MatchType   detector.MatchType
	EventWeight int

	MatchedKValues  []int
	MatchedKeywords []string
	KTokenHitCount  int
	ConfidenceScore int
	KMin, KMax      int
	KBounded        bool
	KQualifier      string

	ControlKeywordHit   bool
	ControlKeywordForms []string

	LineID            string
	ModeGuess         string
	LineValidated     bool
	LineConfidence    string
	DirectionText     string
	DirectionPolarity string
	LocationText      string
	PlatformText      string

	StitchedMessageIDs []int64

	TextTrunc  string
	TextLen    int
	TextSHA256 string
}

// Counters tracks every inclusion, exclusion and match tally of a run
type Counters struct {
	MessagesScanned                  int
	MessagesIncluded                 int
	MessagesExcludedService          int
	MessagesExcludedNoMessageID      int
	MessagesExcludedNoTimestamp      int
	MessagesExcludedInvalidTimestamp int
	MessagesExcludedDuplicateID      int
	MessagesExcludedBot              int
	MessagesExcludedForward          int
	MessagesTextNonString            int
	MessagesCaptionNonString         int
	EventsMatchedTotal               int
	EventsMatchedKTokenOnly          int
	EventsMatchedKeywordOnly         int
	EventsMatchedBoth                int
	EventsWeightTotal                int
	EventsWeightKTokenOnly           int
	EventsWeightKeywordOnly          int
	EventsWeightBoth                 int
	NaiveTimestampCount              int
}

// Map returns the counters keyed the way run_metadata.json reports them
func (c Counters) Map() map[string]int {
	return map[string]int{
		"messages_scanned":                    c.MessagesScanned,
		"messages_included":                   c.MessagesIncluded,
		"messages_excluded_service":           c.MessagesExcludedService,
		"messages_excluded_no_message_id":     c.MessagesExcludedNoMessageID,
		"messages_excluded_no_timestamp":      c.MessagesExcludedNoTimestamp,
		"messages_excluded_invalid_timestamp": c.MessagesExcludedInvalidTimestamp,
		"messages_excluded_duplicate_id":      c.MessagesExcludedDuplicateID,
		"messages_excluded_bot":               c.MessagesExcludedBot,
		"messages_excluded_forward":           c.MessagesExcludedForward,
		"messages_text_non_string":            c.MessagesTextNonString,
		"messages_caption_non_string":         c.MessagesCaptionNonString,
		"events_matched_total":                c.EventsMatchedTotal,
		"events_matched_k_token_only":         c.EventsMatchedKTokenOnly,
		"events_matched_keyword_only":         c.EventsMatchedKeywordOnly,
		"events_matched_both":                 c.EventsMatchedBoth,
		"events_weight_total":                 c.EventsWeightTotal,
		"events_weight_k_token_only":          c.EventsWeightKTokenOnly,
		"events_weight_keyword_only":          c.EventsWeightKeywordOnly,
		"events_weight_both":                  c.EventsWeightBoth,
		"naive_timestamp_count":               c.NaiveTimestampCount,
	}
}

// Report summarizes one finished run
type Report struct {
	InputPath    string
	InputSHA256  string
	OutDir       string
	StartedUTC   time.Time
	CompletedUTC time.Time
	Counters     Counters
	DatasetStart string
	DatasetEnd   string
	TotalDays    int
	Events       int
}
