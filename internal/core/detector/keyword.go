package detector

import (
	"strings"

	"golang.org/x/text/cases"
)

// Control keyword extraction.
//
// The canonical list is kept stable for the events CSV column; inflected
// surface forms are matched separately so follow-ups like "Kontrolleurinnen"
// still register. Matching is word-bounded on purpose: generic compounds
// like "Fahrradkontrollen" must not fire.

// Keywords is the canonical keyword list in reporting order
var Keywords = []string{"Kontrollettis", "Kontrolleure", "Kontis", "Kontrolle"}

var foldCaser = cases.Fold()

// findKeywords returns the canonical keywords present as whole words
func findKeywords(s string) []string {
	var found []string
	for _, kw := range Keywords {
		if containsWord(s, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// containsWord reports a case-insensitive whole-word match of lit in s
func containsWord(s, lit string) bool {
	for i := 0; i < len(s); i += nextRuneLen(s, i) {
		if !wordStart(s, i) {
			continue
		}
		if n := foldPrefixLen(s, i, lit); n >= 0 && boundaryAfter(s, i+n) {
			return true
		}
	}
	return false
}

// control keyword stems with their allowed suffixes, in match order
var controlStems = []struct {
	stem     string
	suffixes []string
}{
	{"kontrollettis", []string{""}},
	{"kontis", []string{""}},
	{"kontrolleur", []string{"*innen", "innen", "en", "n", ""}},
	{"kontrolle", []string{"n", ""}},
}

// findControlForms returns matched control keyword surface forms in
// encounter order, scanning left to right without overlaps
func findControlForms(s string) []string {
	var out []string
	for i := 0; i < len(s); {
		if !wordStart(s, i) {
			i += nextRuneLen(s, i)
			continue
		}
		n := matchControlAt(s, i)
		if n <= 0 {
			i += nextRuneLen(s, i)
			continue
		}
		out = append(out, s[i:i+n])
		i += n
	}
	return out
}

// matchControlAt returns the byte length of a control keyword form at i, or 0
func matchControlAt(s string, i int) int {
	for _, cs := range controlStems {
		n := foldPrefixLen(s, i, cs.stem)
		if n < 0 {
			continue
		}
		for _, suf := range cs.suffixes {
			m := n
			if suf != "" {
				l := foldPrefixLen(s, i+n, suf)
				if l < 0 {
					continue
				}
				m += l
			}
			if boundaryAfter(s, i+m) {
				return m
			}
		}
	}
	return 0
}

// isStrongControlForm reports whether a surface form names inspectors
// directly rather than the generic "Kontrolle"
func isStrongControlForm(form string) bool {
	f := foldCaser.String(form)
	return strings.Contains(f, "kontrolleur") ||
		strings.Contains(f, "kontrollett") ||
		f == "kontis"
}
