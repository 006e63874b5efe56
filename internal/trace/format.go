package trace

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Format selects how events are rendered.
type Format uint8

const (
	FormatText Format = iota
	FormatNDJSON
)

// ParseFormat accepts "text" and "ndjson".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatText, fmt.Errorf("invalid trace format: %q (expected: text|ndjson)", s)
}

// FormatEvent renders ev as one line.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time      string            `json:"time"`
	Seq       uint64            `json:"seq"`
	Kind      string            `json:"kind"`
	Scope     string            `json:"scope"`
	SpanID    uint64            `json:"span_id"`
	ParentID  uint64            `json:"parent_id,omitempty"`
	Name      string            `json:"name"`
	Detail    string            `json:"detail,omitempty"`
	ElapsedUS int64             `json:"elapsed_us,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:      ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		SpanID:    ev.SpanID,
		ParentID:  ev.ParentID,
		Name:      ev.Name,
		Detail:    ev.Detail,
		ElapsedUS: ev.Elapsed.Microseconds(),
		Extra:     ev.Extra,
	})
	if err != nil {
		return []byte(fmt.Sprintf("{\"kind\":\"error\",\"detail\":%q}\n", err.Error()))
	}
	return append(data, '\n')
}

// formatText: "15:04:05.000 → sema.resolve" / "← sema.resolve 1.2ms (detail) {k=v}"
func formatText(ev *Event) []byte {
	var sb strings.Builder
	sb.WriteString(ev.Time.Format("15:04:05.000"))
	sb.WriteByte(' ')
	if ev.Scope > ScopeDriver {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeDriver)))
	}
	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ")
	case KindSpanEnd:
		sb.WriteString("← ")
	default:
		sb.WriteString("• ")
	}
	sb.WriteString(ev.Name)
	if ev.Kind == KindSpanEnd {
		fmt.Fprintf(&sb, " %s", ev.Elapsed)
	}
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%s", k, ev.Extra[k])
		}
		sb.WriteString("}")
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
