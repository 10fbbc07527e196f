package detector

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// K-count extraction.
//
// Supported forms:
//   - exact: "3k", "3 K", "4K", "3k."
//   - range: "3-5k", "3-5 k", "4/5 k"
//   - vague plural: "mehrere k", "ein paar ks"
//   - approximate: "<1-2 digits> <unit noun>" ("4 Leute")
//
// Counts run 1..20 and the trailing k must be followed by a delimiter
// (end of input, whitespace, or light punctuation) so "2k€", "2k/m" and
// "2kB" never count.

// kMention is one k-count mention; ranges keep both endpoints in the order
// they were written
type kMention struct {
	a, b    int
	isRange bool
}

// kDelimOK reports whether position i may terminate a k token
func kDelimOK(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	if unicode.IsSpace(r) {
		return true
	}
	return strings.ContainsRune(`.,!?;:)]}'"-`, r)
}

// kNumAt returns the candidate count values at i in match-preference order:
// the single digit reading first, then the two digit one (10..20)
func kNumAt(s string, i int) [][2]int {
	if i >= len(s) || !isASCIIDigit(s[i]) || s[i] == '0' {
		return nil
	}
	out := make([][2]int, 0, 2)
	out = append(out, [2]int{int(s[i] - '0'), 1})
	if i+1 < len(s) && isASCIIDigit(s[i+1]) {
		v := int(s[i]-'0')*10 + int(s[i+1]-'0')
		if v >= 10 && v <= 20 {
			out = append(out, [2]int{v, 2})
		}
	}
	return out
}

// matchKAt tries to match a k token starting exactly at i.
// Returns the mention and the total byte length on success
func matchKAt(s string, i int) (kMention, int, bool) {
	if !wordStart(s, i) {
		return kMention{}, 0, false
	}

	// range branch first, mirroring the extraction precedence
	for _, an := range kNumAt(s, i) {
		j := skipSpaces(s, i+an[1])
		if j >= len(s) || (s[j] != '-' && s[j] != '/') {
			continue
		}
		j = skipSpaces(s, j+1)
		for _, bn := range kNumAt(s, j) {
			k := skipSpaces(s, j+bn[1])
			if k < len(s) && (s[k] == 'k' || s[k] == 'K') && kDelimOK(s, k+1) {
				return kMention{a: an[0], b: bn[0], isRange: true}, k + 1 - i, true
			}
		}
	}

	for _, nn := range kNumAt(s, i) {
		j := skipSpaces(s, i+nn[1])
		if j < len(s) && (s[j] == 'k' || s[j] == 'K') && kDelimOK(s, j+1) {
			return kMention{a: nn[0], b: nn[0]}, j + 1 - i, true
		}
	}

	return kMention{}, 0, false
}

// scanKTokens returns all k-count mentions left to right, non-overlapping
func scanKTokens(s string) []kMention {
	var out []kMention
	for i := 0; i < len(s); {
		if !isASCIIDigit(s[i]) {
			i += nextRuneLen(s, i)
			continue
		}
		if m, n, ok := matchKAt(s, i); ok {
			out = append(out, m)
			i += n
			continue
		}
		i++
	}
	return out
}

// kEndpoints flattens mentions into endpoint values in encounter order
// ("3-5k" contributes 3 then 5)
func kEndpoints(ms []kMention) []int {
	var out []int
	for _, m := range ms {
		out = append(out, m.a)
		if m.isRange {
			out = append(out, m.b)
		}
	}
	return out
}

// hasMultipleK reports a vague plural mention ("mehrere k", "ein paar ks")
func hasMultipleK(s string) bool {
	phrases := [][]string{
		{"mehrere"},
		{"ein", "paar"},
		{"ein", "haufen"},
		{"haufen"},
	}
	for i := 0; i < len(s); i += nextRuneLen(s, i) {
		if !wordStart(s, i) {
			continue
		}
		for _, ph := range phrases {
			j, ok := matchPhrase(s, i, ph)
			if !ok {
				continue
			}
			j = skipSpaces(s, j)
			for _, suf := range []string{"k's", "ks", "k"} {
				if n := foldPrefixLen(s, j, suf); n >= 0 && boundaryAfter(s, j+n) {
					return true
				}
			}
		}
	}
	return false
}

// matchPhrase matches space-separated words case-insensitively starting at i
func matchPhrase(s string, i int, words []string) (int, bool) {
	j := i
	for wi, w := range words {
		if wi > 0 {
			k := skipSpaces(s, j)
			if k == j {
				return 0, false
			}
			j = k
		}
		n := foldPrefixLen(s, j, w)
		if n < 0 {
			return 0, false
		}
		j += n
	}
	return j, true
}

// approxUnitNouns in match-preference order; the inflected inspector noun
// comes as explicit surface forms, longest first
var approxUnitNouns = []string{
	"stück", "leute",
	"kontrolleuren", "kontrolleure", "kontrolleurn", "kontrolleur",
	"kontrollettis", "kontis",
	"uniformiert", "uniform", "uni",
	"zivi", "zivil",
}

// findApproxCount finds "<1-2 digits> <unit noun>" and returns the count
func findApproxCount(s string) (int, bool) {
	for i := 0; i < len(s); {
		if !isASCIIDigit(s[i]) {
			i += nextRuneLen(s, i)
			continue
		}
		run := digitRunLen(s, i)
		if !wordStart(s, i) || run > 2 {
			i += run
			continue
		}
		n := 0
		for k := 0; k < run; k++ {
			n = n*10 + int(s[i+k]-'0')
		}
		j := skipSpaces(s, i+run)
		for _, noun := range approxUnitNouns {
			if l := foldPrefixLen(s, j, noun); l >= 0 && boundaryAfter(s, j+l) {
				return n, true
			}
		}
		i += run
	}
	return 0, false
}

// findLeadingCount matches a count at the very start of the text when the
// same text also mentions a line by number ("3 in der 10 ..."). Only the
// first line of the text is considered for the line mention
func findLeadingCount(s string) (int, bool) {
	i := skipSpaces(s, 0)
	run := digitRunLen(s, i)
	if run == 0 || run > 2 || !boundaryAfter(s, i+run) {
		return 0, false
	}
	n := 0
	for k := 0; k < run; k++ {
		n = n*10 + int(s[i+k]-'0')
	}

	lineEnd := len(s)
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		lineEnd = nl
	}
	for p := i + run; p < lineEnd; p += nextRuneLen(s, p) {
		if !wordStart(s, p) {
			continue
		}
		j, ok := matchPhrase(s, p, []string{"in", "der"})
		if !ok {
			for _, w := range []string{"linie", "tram", "bus", "sev"} {
				if l := foldPrefixLen(s, p, w); l >= 0 {
					j, ok = p+l, true
					break
				}
			}
		}
		if !ok {
			continue
		}
		k := skipSpaces(s, j)
		if k == j {
			continue
		}
		digits := digitRunLen(s, k)
		if digits >= 1 && digits <= 3 && boundaryAfter(s, k+digits) {
			return n, true
		}
	}
	return 0, false
}

// lineNumberOf collapses a line id to its numeric part ("N7" -> 7, "E" -> 0)
func lineNumberOf(lineID string) int {
	n := 0
	for i := 0; i < len(lineID); i++ {
		if isASCIIDigit(lineID[i]) {
			n = n*10 + int(lineID[i]-'0')
		}
	}
	return n
}
