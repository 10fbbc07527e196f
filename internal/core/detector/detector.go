// Package detector classifies chat messages as ticket-inspection ("check")
// events and extracts the structured details riders mention alongside them.
//
// Detection is deterministic and explainable: a handful of word-bounded
// scanners extract k-counts, inspector keywords, line, direction, location
// and platform mentions, and a fixed scoring rule turns those signals into
// a candidate/event decision
package detector

import (
	"sort"

	"checkstats/internal/core/lineuniverse"
)

// MatchType describes which signal families produced an event
type MatchType string

const (
	// MatchNone means the message is not a check event
	MatchNone MatchType = "none"
	// MatchKToken means only k-count signals fired
	MatchKToken MatchType = "k_token"
	// MatchKeyword means only inspector keywords fired
	MatchKeyword MatchType = "keyword"
	// MatchBoth means k-count and keyword signals both fired
	MatchBoth MatchType = "both"
	// MatchLineDirection means a validated line plus direction carried the
	// message over the threshold without k or keyword signals
	MatchLineDirection MatchType = "line_direction"
)

// KQualifier values for the primary k-count summary
const (
	KExact    = "exact"
	KRange    = "range"
	KMultiple = "multiple"
	KApprox   = "approx"
	KUnknown  = "unknown"
)

// Result carries the match decision plus extraction metadata for one message
type Result struct {
	MatchType MatchType

	// MatchedKValues are the distinct k endpoints, sorted ascending;
	// MatchedKValuesAll keeps every endpoint in encounter order
	MatchedKValues    []int
	MatchedKValuesAll []int
	// KTokenHitCount counts k-count mentions, not endpoints ("3-5k" is 1)
	KTokenHitCount  int
	MatchedKeywords []string

	IsCandidate  bool
	IsCheckEvent bool
	// IsDetailOnly marks candidates that only supply line/direction/location
	// detail without crossing the event threshold themselves
	IsDetailOnly bool
	Score        int

	// KMin/KMax are only meaningful when KBounded is true
	KMin, KMax int
	KBounded   bool
	KQualifier string

	ControlKeywordHit   bool
	ControlKeywordForms []string

	LineID         string
	ModeGuess      lineuniverse.Mode
	LineValidated  bool
	LineConfidence string

	DirectionText     string
	DirectionPolarity string
	LocationText      string
	PlatformText      string
}

// Detect classifies a normalized search text
func Detect(searchText string) Result {
	line := extractLine(searchText)
	dir := extractDirection(searchText)
	location := extractLocation(searchText)
	platform := extractPlatform(searchText)

	mentions := scanKTokens(searchText)
	endpoints := kEndpoints(mentions)
	kMin, kMax, kQualifier, kBounded := primaryKInfo(searchText, mentions, line.id)
	hasK := len(endpoints) > 0 || kQualifier == KMultiple || kQualifier == KApprox

	controlForms := findControlForms(searchText)
	keywords := findKeywords(searchText)
	hasKW := len(controlForms) > 0 || len(keywords) > 0

	score := 0
	if hasK {
		score += 3
	}
	if len(controlForms) > 0 {
		strong := false
		for _, f := range controlForms {
			if isStrongControlForm(f) {
				strong = true
				break
			}
		}
		if strong {
			score += 3
		} else {
			score += 2
		}
	} else if len(keywords) > 0 {
		score += 2
	}
	if dir.text != "" || dir.polarity != "unknown" {
		score++
	}
	if line.id != "" {
		score++
	}

	hasLineDirection := line.id != "" && line.validated &&
		(dir.text != "" || dir.polarity != "unknown")
	if hasLineDirection && !hasK && !hasKW {
		score += 2
	}

	isCandidate := score > 0
	isCheckEvent := score >= 3

	isDetailOnly := !isCheckEvent && isCandidate &&
		(line.id != "" || dir.text != "" || dir.polarity != "unknown" || location != "") &&
		!hasK && len(controlForms) == 0

	matchType := MatchNone
	if isCheckEvent {
		switch {
		case hasK && hasKW:
			matchType = MatchBoth
		case hasK:
			matchType = MatchKToken
		case hasKW:
			matchType = MatchKeyword
		case hasLineDirection:
			matchType = MatchLineDirection
		}
	}

	return Result{
		MatchType:           matchType,
		MatchedKValues:      sortedUnique(endpoints),
		MatchedKValuesAll:   endpoints,
		KTokenHitCount:      kTokenHitCount(searchText, mentions),
		MatchedKeywords:     keywords,
		IsCandidate:         isCandidate,
		IsCheckEvent:        isCheckEvent,
		IsDetailOnly:        isDetailOnly,
		Score:               score,
		KMin:                kMin,
		KMax:                kMax,
		KBounded:            kBounded,
		KQualifier:          kQualifier,
		ControlKeywordHit:   len(controlForms) > 0,
		ControlKeywordForms: controlForms,
		LineID:              line.id,
		ModeGuess:           line.mode,
		LineValidated:       line.id != "" && line.validated,
		LineConfidence:      line.confidence,
		DirectionText:       dir.text,
		DirectionPolarity:   dir.polarity,
		LocationText:        location,
		PlatformText:        platform,
	}
}

// primaryKInfo reduces all k signals to one (min, max, qualifier) summary.
// Precedence: first range mention, else first numeric mention, else vague
// plural, else approximate count, else the leading-count heuristic when a
// line was resolved and the count differs from the line number
func primaryKInfo(s string, mentions []kMention, lineID string) (int, int, string, bool) {
	if len(mentions) > 0 {
		for _, m := range mentions {
			if m.isRange {
				return min(m.a, m.b), max(m.a, m.b), KRange, true
			}
		}
		m := mentions[0]
		return m.a, m.b, KExact, true
	}

	if hasMultipleK(s) {
		return 0, 0, KMultiple, false
	}

	if n, ok := findApproxCount(s); ok {
		return n, n, KApprox, true
	}

	if lineID != "" {
		if n, ok := findLeadingCount(s); ok && n != lineNumberOf(lineID) {
			return n, n, KApprox, true
		}
	}

	return 0, 0, KUnknown, false
}

// kTokenHitCount counts k-count mentions for the token weight policy.
// Vague plural and approximate forms guarantee at least one hit
func kTokenHitCount(s string, mentions []kMention) int {
	n := len(mentions)
	if hasMultipleK(s) && n < 1 {
		n = 1
	}
	if _, ok := findApproxCount(s); ok && n < 1 {
		n = 1
	}
	return n
}

func sortedUnique(vs []int) []int {
	if len(vs) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(vs))
	out := make([]int, 0, len(vs))
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
