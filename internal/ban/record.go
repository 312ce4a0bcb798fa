// Package ban owns the one-way Clear → Banned lifecycle of a storage scope.
package ban

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for every persisted time,
// millisecond precision in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t with TimestampLayout in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Entry is one suspicion signal as recorded in the log.
// Plain logs fill Reason and Metadata; masked logs fill Marker and Detail.
type Entry struct {
	Reason    string         `json:"reason,omitempty"`
	Marker    string         `json:"marker,omitempty"`
	Severity  int            `json:"severity"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Detail    string         `json:"detail,omitempty"`
	Timestamp string         `json:"timestamp"`

	// severityText overrides the rendered severity of a decoded entry:
	// the literal for fractional values, "" with severityUnknown otherwise.
	severityText    string
	severityUnknown bool
}

// SeverityText returns the severity as shown in the log. It is empty when
// the stored value was not a number.
func (e Entry) SeverityText() string {
	switch {
	case e.severityUnknown:
		return ""
	case e.severityText != "":
		return e.severityText
	default:
		return strconv.Itoa(e.Severity)
	}
}

// UnmarshalJSON decodes an entry field by field. A field of the wrong type
// is left empty so a hand-edited log still renders.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return nil
	}
	*e = Entry{
		Reason:    field[string](fields, "reason"),
		Marker:    field[string](fields, "marker"),
		Metadata:  field[map[string]any](fields, "metadata"),
		Detail:    field[string](fields, "detail"),
		Timestamp: field[string](fields, "timestamp"),
	}

	n, ok := fields["severity"]
	var num json.Number
	if !ok || json.Unmarshal(n, &num) != nil || num == "" {
		e.severityUnknown = true
		return nil
	}
	f, err := num.Float64()
	if err != nil || math.IsInf(f, 0) {
		e.severityUnknown = true
		return nil
	}
	e.Severity = int(math.Round(f))
	if f != math.Trunc(f) {
		e.severityText = num.String()
	}
	return nil
}

// Label returns the human-facing event name.
func (e Entry) Label() string {
	switch {
	case e.Reason != "":
		return e.Reason
	case e.Marker != "":
		return e.Marker
	default:
		return "Suspicious activity"
	}
}

// Details returns the metadata rendered as key=value pairs, or the masked
// detail token. Empty when the entry carries neither.
func (e Entry) Details() string {
	if e.Detail != "" {
		return "token " + e.Detail
	}
	if len(e.Metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := json.Marshal(e.Metadata[k])
		if err != nil {
			continue
		}
		parts = append(parts, k+"="+string(v))
	}
	return strings.Join(parts, " ")
}

// Record is the persisted ban. Once written it is never modified.
type Record struct {
	Reason    string  `json:"reason"`
	Timestamp string  `json:"timestamp"`
	Log       []Entry `json:"log"`
}

// UnmarshalJSON accepts any JSON object as a record. Fields of the wrong
// type are left empty and log items that are not objects are skipped.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = Record{
		Reason:    field[string](fields, "reason"),
		Timestamp: field[string](fields, "timestamp"),
	}
	for _, raw := range field[[]json.RawMessage](fields, "log") {
		if string(raw) == "null" {
			continue
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err == nil {
			r.Log = append(r.Log, e)
		}
	}
	return nil
}

// field decodes fields[name] into a T, returning the zero value when the
// field is missing or has another type.
func field[T any](fields map[string]json.RawMessage, name string) T {
	var v T
	raw, ok := fields[name]
	if !ok {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero
	}
	return v
}

// IssuedAt parses the record timestamp. The zero time is returned for
// records written by hand or by older builds with a different layout.
func (r Record) IssuedAt() time.Time {
	return parseTimestamp(r.Timestamp)
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{TimestampLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// clone returns a deep enough copy for callers to keep.
func (r Record) clone() Record {
	out := r
	out.Log = append([]Entry(nil), r.Log...)
	return out
}
