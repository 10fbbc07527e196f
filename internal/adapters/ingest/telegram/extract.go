package telegram

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	idKeys        = []string{"id", "message_id", "msg_id"}
	timestampKeys = []string{"date", "timestamp", "date_utc", "time", "created_at"}
	senderKeys    = []string{"from_id", "sender_id", "user_id", "author_id"}
	serviceKeys   = []string{"action", "action_type", "service"}
	forwardKeys   = []string{"forward_from", "fwd_from", "forward_date", "forwarded_from"}
)

// MessageID returns the message's integer id under any of the known keys
func MessageID(m map[string]any) (int64, bool) {
	for _, k := range idKeys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			if n == math.Trunc(n) {
				return int64(n), true
			}
		case int64:
			return n, true
		case int:
			return int64(n), true
		}
	}
	return 0, false
}

// TimestampValue returns the raw value of the first known timestamp key.
// Key presence decides; the value may still fail to parse
func TimestampValue(m map[string]any) (any, bool) {
	for _, k := range timestampKeys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// naive layouts carry no zone; such timestamps are assumed UTC and flagged
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999-0700",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// ParseTimestamp converts a raw timestamp value to UTC. Numeric values are
// epoch seconds. naive reports a string timestamp without zone information
func ParseTimestamp(v any) (t time.Time, naive bool, ok bool) {
	switch ts := v.(type) {
	case float64:
		sec, frac := math.Modf(ts)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), false, true
	case int64:
		return time.Unix(ts, 0).UTC(), false, true
	case int:
		return time.Unix(int64(ts), 0).UTC(), false, true
	case string:
		s := strings.TrimSpace(ts)
		if s == "" {
			return time.Time{}, false, false
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			sec, frac := math.Modf(n)
			return time.Unix(int64(sec), int64(frac*1e9)).UTC(), false, true
		}
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), false, true
			}
		}
		for _, layout := range naiveLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true, true
			}
		}
	}
	return time.Time{}, false, false
}

// SenderKey derives a stable per-sender key from the message's sender
// fields. Empty means the sender could not be identified
func SenderKey(m map[string]any) string {
	for _, k := range senderKeys {
		if v, ok := m[k]; ok {
			if s := senderString(v); s != "" {
				return s
			}
		}
	}
	if v, ok := m["from"]; ok {
		switch from := v.(type) {
		case string:
			if s := strings.TrimSpace(from); s != "" {
				return s
			}
		case map[string]any:
			for _, k := range []string{"id", "user_id", "username"} {
				if s := senderString(from[k]); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func senderString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == math.Trunc(s) {
			return strconv.FormatInt(int64(s), 10)
		}
		return fmt.Sprintf("%g", s)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case map[string]any:
		for _, k := range []string{"user_id", "id", "peer_id", "username"} {
			if inner, ok := s[k]; ok {
				if str := senderString(inner); str != "" {
					return str
				}
			}
		}
	}
	return ""
}

// IsService reports whether the message is a service message (joins, pins,
// title changes)
func IsService(m map[string]any) bool {
	for _, k := range serviceKeys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// IsForwarded reports whether the message was forwarded into the chat
func IsForwarded(m map[string]any) bool {
	for _, k := range forwardKeys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// IsBot reports whether the sender is marked as a bot
func IsBot(m map[string]any) bool {
	if from, ok := m["from"].(map[string]any); ok {
		if b, ok := from["is_bot"].(bool); ok && b {
			return true
		}
	}
	if b, ok := m["is_bot"].(bool); ok && b {
		return true
	}
	return false
}
