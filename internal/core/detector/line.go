package detector

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"checkstats/internal/core/lineuniverse"
)

// Line, direction, location and platform extraction.
//
// Line resolution runs three passes with strictly decreasing trust:
// explicit label ("Linie 10", "Bus 61", "SEV 3"), the "in der NN" phrase
// (validated against the line universe), and finally a bare 1-3 digit token,
// which only counts when other transit context words are present and the
// token validates.

// lineInfo is the resolved line mention of a message
type lineInfo struct {
	id         string
	mode       lineuniverse.Mode
	validated  bool
	confidence string // explicit, inferred or none
}

var titleCaser = cases.Title(language.German)

// line labels in match order; "str" after "straßenbahn" so the long form wins
var lineLabels = []string{"linie", "tram", "straßenbahn", "str", "bus", "sev"}

var bareContextWords = []string{
	"richtung", "hbf", "haltestelle", "steigen", "bahn", "tram", "bus",
	"linie", "sev", "stadteinwärts", "stadtauswärts", "innenstadt", "stadtwärts",
}

func extractLine(s string) lineInfo {
	none := lineInfo{mode: lineuniverse.ModeUnknown, confidence: "none"}

	if label, raw, ok := findExplicitLine(s); ok {
		id := lineuniverse.Normalize(raw)
		explicit := lineuniverse.ModeTram
		switch label {
		case "sev":
			explicit = lineuniverse.ModeSEV
		case "bus":
			explicit = lineuniverse.ModeBus
		}
		return lineInfo{
			id:         id,
			mode:       lineuniverse.GuessMode(id, explicit),
			validated:  lineuniverse.IsValid(id),
			confidence: "explicit",
		}
	}

	if raw, ok := findInDerLine(s); ok {
		id := lineuniverse.Normalize(raw)
		if !lineuniverse.IsValid(id) {
			return none
		}
		return lineInfo{
			id:         id,
			mode:       lineuniverse.GuessMode(id, ""),
			validated:  true,
			confidence: "inferred",
		}
	}

	if !hasAnyWord(s, bareContextWords) {
		return none
	}
	for _, raw := range findBareLineTokens(s) {
		id := lineuniverse.Normalize(raw)
		if lineuniverse.IsValid(id) {
			return lineInfo{
				id:         id,
				mode:       lineuniverse.GuessMode(id, ""),
				validated:  true,
				confidence: "inferred",
			}
		}
	}
	return none
}

func hasAnyWord(s string, words []string) bool {
	for _, w := range words {
		if containsWord(s, w) {
			return true
		}
	}
	return false
}

// findExplicitLine finds the leftmost "<label> <line>" mention
func findExplicitLine(s string) (label, line string, ok bool) {
	for i := 0; i < len(s); i += nextRuneLen(s, i) {
		if !wordStart(s, i) {
			continue
		}
		for _, lb := range lineLabels {
			n := foldPrefixLen(s, i, lb)
			if n < 0 {
				continue
			}
			j := skipSpaces(s, i+n)
			if tok, ok := matchLineToken(s, j, true); ok {
				return lb, tok, true
			}
		}
	}
	return "", "", false
}

// matchLineToken matches a line code at i: 1-3 digits plus optional letter,
// N plus 1-2 digits, or NXL, all with a trailing word boundary.
// foldLetter selects case-insensitive matching for the letter forms
func matchLineToken(s string, i int, foldLetter bool) (string, bool) {
	run := digitRunLen(s, i)
	if run > 0 {
		for d := min(run, 3); d >= 1; d-- {
			end := i + d
			if end < len(s) && isASCIILetter(s[end]) && (foldLetter || (s[end] >= 'A' && s[end] <= 'Z')) {
				if boundaryAfter(s, end+1) {
					return s[i : end+1], true
				}
			}
			if boundaryAfter(s, end) {
				return s[i:end], true
			}
		}
		return "", false
	}

	if !foldLetter {
		return "", false
	}
	if n := foldPrefixLen(s, i, "n"); n > 0 {
		d := digitRunLen(s, i+n)
		for l := min(d, 2); l >= 1; l-- {
			if boundaryAfter(s, i+n+l) {
				return s[i : i+n+l], true
			}
		}
	}
	if n := foldPrefixLen(s, i, "nxl"); n > 0 && boundaryAfter(s, i+n) {
		return s[i : i+n], true
	}
	return "", false
}

// findInDerLine finds the leftmost "in der NN" / "in NN" mention
func findInDerLine(s string) (string, bool) {
	for i := 0; i < len(s); i += nextRuneLen(s, i) {
		if !wordStart(s, i) {
			continue
		}
		n := foldPrefixLen(s, i, "in")
		if n < 0 {
			continue
		}
		// "in der" first, then bare "in"; both need whitespace before the code
		if j, ok := matchPhrase(s, i, []string{"in", "der"}); ok {
			if k := skipSpaces(s, j); k > j {
				if tok, ok := matchDigitLineToken(s, k, true); ok {
					return tok, true
				}
			}
		}
		if k := skipSpaces(s, i+n); k > i+n {
			if tok, ok := matchDigitLineToken(s, k, true); ok {
				return tok, true
			}
		}
	}
	return "", false
}

// matchDigitLineToken matches 1-3 digits plus optional letter with a
// trailing boundary
func matchDigitLineToken(s string, i int, foldLetter bool) (string, bool) {
	run := digitRunLen(s, i)
	if run == 0 {
		return "", false
	}
	for d := min(run, 3); d >= 1; d-- {
		end := i + d
		if end < len(s) && isASCIILetter(s[end]) && (foldLetter || (s[end] >= 'A' && s[end] <= 'Z')) {
			if boundaryAfter(s, end+1) {
				return s[i : end+1], true
			}
		}
		if boundaryAfter(s, end) {
			return s[i:end], true
		}
	}
	return "", false
}

// findBareLineTokens returns bare digit tokens (optional uppercase letter
// suffix) in encounter order
func findBareLineTokens(s string) []string {
	var out []string
	for i := 0; i < len(s); {
		if !isASCIIDigit(s[i]) {
			i += nextRuneLen(s, i)
			continue
		}
		run := digitRunLen(s, i)
		if !wordStart(s, i) {
			i += run
			continue
		}
		if tok, ok := matchDigitLineToken(s, i, false); ok {
			out = append(out, tok)
			i += len(tok)
			continue
		}
		i += run
	}
	return out
}

// directionInfo is the extracted direction of travel
type directionInfo struct {
	text     string
	polarity string // inbound, outbound or unknown
}

var polarityWords = []struct {
	word     string
	polarity string
}{
	{"stadteinwärts", "inbound"},
	{"stadtauswärts", "outbound"},
	{"innenstadt", "inbound"},
	{"stadtwärts", "inbound"},
	{"stadtausw", "outbound"},
}

func extractDirection(s string) directionInfo {
	out := directionInfo{polarity: "unknown"}

	var polSurface string
	for i := 0; i < len(s) && polSurface == ""; i += nextRuneLen(s, i) {
		if !wordStart(s, i) {
			continue
		}
		for _, pw := range polarityWords {
			if n := foldPrefixLen(s, i, pw.word); n >= 0 && boundaryAfter(s, i+n) {
				polSurface = s[i : i+n]
				out.polarity = pw.polarity
				break
			}
		}
	}

	if text, ok := findDirectionPhrase(s); ok {
		out.text = text
	} else if polSurface != "" {
		out.text = strings.TrimSpace(polSurface)
	}
	return out
}

// direction labels in match order; "ri." before "ri" keeps the dot attached
var directionLabels = []string{"richtung", "ri.", "ri", "fahrtrichtung", "rt"}

// findDirectionPhrase finds "Richtung: X" style phrases and returns the
// free-text direction
func findDirectionPhrase(s string) (string, bool) {
	for i := 0; i < len(s); i += nextRuneLen(s, i) {
		if !wordStart(s, i) {
			continue
		}
		for _, lb := range directionLabels {
			n := foldPrefixLen(s, i, lb)
			if n < 0 {
				continue
			}
			j := skipSpaces(s, i+n)
			if j < len(s) && (s[j] == ':' || s[j] == '-' || strings.HasPrefix(s[j:], "–")) {
				if text, ok := freeTextRun(s, skipSpaces(s, j+nextRuneLen(s, j))); ok {
					return text, true
				}
			}
			if text, ok := freeTextRun(s, j); ok {
				return text, true
			}
		}
	}
	return "", false
}

// freeTextRun captures a run of characters up to a newline or clause
// punctuation, trimmed; empty runs do not match
func freeTextRun(s string, i int) (string, bool) {
	j := i
	for j < len(s) && s[j] != '\n' && s[j] != '.' && s[j] != ',' && s[j] != ';' {
		j++
	}
	if j == i {
		return "", false
	}
	text := strings.TrimSpace(s[i:j])
	return text, true
}

var locationLabels = []string{"am", "bei", "haltestelle", "hbf"}

// extractLocation finds "am/bei/an der/Haltestelle/Hbf <text>" mentions
func extractLocation(s string) string {
	for i := 0; i < len(s); i += nextRuneLen(s, i) {
		if !wordStart(s, i) {
			continue
		}
		var ends []int
		for _, lb := range locationLabels {
			if n := foldPrefixLen(s, i, lb); n >= 0 {
				ends = append(ends, i+n)
			}
		}
		if j, ok := matchPhrase(s, i, []string{"an", "der"}); ok {
			ends = append(ends, j)
		}
		for _, e := range ends {
			j := skipSpaces(s, e)
			if j == e {
				continue
			}
			if text, ok := freeTextRun(s, j); ok {
				return text
			}
		}
	}
	return ""
}

// extractPlatform finds "Steig/Gleis <id>" and returns a normalized label
func extractPlatform(s string) string {
	for i := 0; i < len(s); i += nextRuneLen(s, i) {
		if !wordStart(s, i) {
			continue
		}
		for _, kind := range []string{"steig", "gleis"} {
			n := foldPrefixLen(s, i, kind)
			if n < 0 {
				continue
			}
			j := skipSpaces(s, i+n)
			k := j
			for k < len(s) && (isASCIIDigit(s[k]) || isASCIILetter(s[k])) {
				k++
			}
			if k == j || !boundaryAfter(s, k) {
				continue
			}
			return titleCaser.String(s[i:i+n]) + " " + s[j:k]
		}
	}
	return ""
}
