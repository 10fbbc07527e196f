package service

import (
	"time"

	"checkstats/internal/core/detector"
	"checkstats/internal/services/analyze/domain"
)

// openEvent tracks a sender's most recent event so near-term follow-up
// messages can fill in missing detail fields
type openEvent struct {
	event            *domain.Event
	lastTimestampUTC time.Time
}

type stitcher struct {
	enabled  bool
	window   time.Duration
	bySender map[string]*openEvent
}

func newStitcher(cfg domain.Config) *stitcher {
	return &stitcher{
		enabled:  cfg.StitchFollowups,
		window:   cfg.StitchWindow,
		bySender: make(map[string]*openEvent),
	}
}

// open registers a fresh event as the sender's stitch target
func (st *stitcher) open(senderKey string, event *domain.Event, timestampUTC time.Time) {
	if !st.enabled || senderKey == "" {
		return
	}
	st.bySender[senderKey] = &openEvent{event: event, lastTimestampUTC: timestampUTC}
}

// maybeStitch folds a detail-only follow-up into the sender's open event when
// it arrives within the stitch window. Each stitched follow-up extends the
// window from its own timestamp
func (st *stitcher) maybeStitch(senderKey string, messageID int64, timestampUTC time.Time, res detector.Result) {
	if !st.enabled || senderKey == "" || !res.IsDetailOnly {
		return
	}
	open, ok := st.bySender[senderKey]
	if !ok {
		return
	}
	if timestampUTC.Sub(open.lastTimestampUTC) > st.window {
		delete(st.bySender, senderKey)
		return
	}

	e := open.event
	fillIfMissing(&e.LineID, res.LineID)
	fillIfMissing(&e.ModeGuess, string(res.ModeGuess))
	if !e.LineValidated && res.LineValidated {
		e.LineValidated = true
	}
	fillIfMissing(&e.LineConfidence, res.LineConfidence)
	fillIfMissing(&e.DirectionText, res.DirectionText)
	fillIfMissing(&e.DirectionPolarity, res.DirectionPolarity)
	fillIfMissing(&e.LocationText, res.LocationText)
	fillIfMissing(&e.PlatformText, res.PlatformText)

	e.StitchedMessageIDs = append(e.StitchedMessageIDs, messageID)
	open.lastTimestampUTC = timestampUTC
}

// fillIfMissing overwrites an empty or unknown field with a known value
func fillIfMissing(current *string, value string) {
	if (*current == "" || *current == "unknown") && value != "" && value != "unknown" {
		*current = value
	}
}
