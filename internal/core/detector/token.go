package detector

import (
	"unicode"
	"unicode/utf8"
)

// isWord reports whether r is a word character for boundary checks.
// Letters, numbers, combining marks (Mn), and connector punctuation (Pc,
// e.g. underscore) count; hyphen and most punctuation remain non-word
func isWord(r rune) bool {
	if r == utf8.RuneError || r == 0 {
		return false
	}
	return unicode.IsLetter(r) ||
		unicode.IsNumber(r) ||
		unicode.In(r, unicode.Mn, unicode.Pc)
}

// wordStart reports whether position i sits on a word boundary with a word
// character following (i.e. the previous rune is non-word)
func wordStart(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWord(r)
}

// boundaryAfter reports whether position i is followed by a non-word rune
// (or the end of input)
func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWord(r)
}

// equalFoldRune compares two runes under simple Unicode case folding
func equalFoldRune(a, b rune) bool {
	if a == b {
		return true
	}
	r := unicode.SimpleFold(a)
	for r != a {
		if r == b {
			return true
		}
		r = unicode.SimpleFold(r)
	}
	return false
}

// foldPrefixLen returns the byte length of the prefix of s[i:] that matches
// lit case-insensitively, or -1 when it does not match
func foldPrefixLen(s string, i int, lit string) int {
	n := 0
	for _, lr := range lit {
		if i+n >= len(s) {
			return -1
		}
		sr, sz := utf8.DecodeRuneInString(s[i+n:])
		if !equalFoldRune(sr, lr) {
			return -1
		}
		n += sz
	}
	return n
}

// skipSpaces returns the index of the first non-space rune at or after i
func skipSpaces(s string, i int) int {
	for i < len(s) {
		r, sz := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += sz
	}
	return i
}

// digitRunLen returns the number of consecutive ASCII digits starting at i
func digitRunLen(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '9' {
		n++
	}
	return n
}

// nextRuneLen returns the byte length of the rune at i (at least 1)
func nextRuneLen(s string, i int) int {
	_, sz := utf8.DecodeRuneInString(s[i:])
	if sz == 0 {
		return 1
	}
	return sz
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
