// Package normalize flattens Telegram export text values into plain strings.
//
// Export formats vary: "text" may be a string, or a list mixing plain strings
// with rich entity records like {"type":"bold","text":"..."}. The analyzer
// only cares about the concatenated surface text
package normalize

// Text normalizes a text/caption value into a plain string.
//
// Supported shapes are string, []any of strings and {text: string} records.
// ok is false when the value is present but none of the supported shapes;
// callers count those without failing the run
func Text(v any) (text string, ok bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case []any:
		out := make([]byte, 0, 64)
		for _, item := range t {
			switch it := item.(type) {
			case string:
				out = append(out, it...)
			case map[string]any:
				if s, ok := it["text"].(string); ok {
					out = append(out, s...)
				}
			}
		}
		return string(out), true
	default:
		return "", false
	}
}

// SearchText joins normalized text and caption into the string the detector
// scans. Both present joins with a newline; otherwise whichever is non-empty
func SearchText(text, caption string) string {
	if text != "" && caption != "" {
		return text + "\n" + caption
	}
	if text != "" {
		return text
	}
	return caption
}
