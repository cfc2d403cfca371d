package claudehistory

import (
	"encoding/json"
	"strings"
	"time"
)

// Message is a rendered view of one transcript record.
type Message struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// RenderOptions mirror the UI flags that change how records are shown.
type RenderOptions struct {
	// ExpandTools includes tool_use and tool_result blocks.
	ExpandTools bool
	// Raw shows each record as indented JSON instead of extracted text.
	Raw bool
}

type sessionEnvelope struct {
	Type      string
	IsMeta    bool
	Summary   string
	Message   json.RawMessage
	Timestamp string
}

// decodeEnvelope reads a record for display. Fields of an unexpected JSON
// type are left empty.
func decodeEnvelope(raw json.RawMessage) (sessionEnvelope, error) {
	var f struct {
		recordFields
		IsMeta json.RawMessage `json:"isMeta"`
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return sessionEnvelope{}, err
	}
	var isMeta bool
	if len(f.IsMeta) > 0 {
		_ = json.Unmarshal(f.IsMeta, &isMeta)
	}
	return sessionEnvelope{
		Type:      rawString(f.Type),
		IsMeta:    isMeta,
		Summary:   rawString(f.Summary),
		Message:   f.Message,
		Timestamp: rawString(f.Timestamp),
	}, nil
}

type sessionMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// RenderMessages turns raw records into displayable messages, skipping
// records with nothing to show.
func RenderMessages(records []json.RawMessage, opts RenderOptions) []Message {
	out := make([]Message, 0, len(records))
	for _, raw := range records {
		env, err := decodeEnvelope(raw)
		if err != nil {
			continue
		}
		ts := parseTime(env.Timestamp)
		if opts.Raw {
			out = append(out, Message{Role: rawRole(env), Content: formatJSONBlock(json.RawMessage(raw)), Timestamp: ts})
			continue
		}
		if env.Type == "summary" && env.Summary != "" {
			out = append(out, Message{Role: "summary", Content: env.Summary, Timestamp: ts})
			continue
		}
		if msg, ok := parseEnvelopeMessage(env); ok {
			out = append(out, msg)
		}
		if opts.ExpandTools {
			out = append(out, toolMessages(env, ts)...)
		}
	}
	return out
}

func rawRole(env sessionEnvelope) string {
	var msg sessionMessage
	if len(env.Message) > 0 && json.Unmarshal(env.Message, &msg) == nil && msg.Role != "" {
		return msg.Role
	}
	if env.Type != "" {
		return env.Type
	}
	return "record"
}

// FormatMessages renders messages as "role: text" blocks, truncating each to
// maxCharsPerMessage runes when positive.
func FormatMessages(messages []Message, maxCharsPerMessage int) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		text := msg.Content
		if maxCharsPerMessage > 0 {
			text = truncateRunes(text, maxCharsPerMessage)
		}
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "…"
}

func toolMessages(env sessionEnvelope, timestamp time.Time) []Message {
	if len(env.Message) == 0 {
		return nil
	}
	var msg sessionMessage
	if err := json.Unmarshal(env.Message, &msg); err != nil || len(msg.Content) == 0 {
		return nil
	}
	var items []map[string]any
	if err := json.Unmarshal(msg.Content, &items); err != nil {
		return nil
	}
	var out []Message
	for _, item := range items {
		out = append(out, toolMessageFromItem(item, timestamp)...)
	}
	return out
}

func toolMessageFromItem(entry map[string]any, timestamp time.Time) []Message {
	typ, _ := entry["type"].(string)
	switch typ {
	case "tool_use":
		name, _ := entry["name"].(string)
		id, _ := entry["id"].(string)
		label := "Tool use"
		if name != "" {
			label = label + " " + name
		}
		if id != "" {
			label = label + " (" + id + ")"
		}
		content := label
		if input, ok := entry["input"]; ok {
			if formatted := formatJSONBlock(input); formatted != "" {
				content = content + "\n" + formatted
			}
		}
		return []Message{{Role: "tool", Content: content, Timestamp: timestamp}}
	case "tool_result":
		id, _ := entry["tool_use_id"].(string)
		label := "Tool result"
		if isErr, ok := entry["is_error"].(bool); ok && isErr {
			label = "Tool result error"
		}
		if id != "" {
			label = label + " (" + id + ")"
		}
		content := label
		if text := extractToolResultText(entry["content"]); text != "" {
			content = content + "\n" + text
		} else if formatted := formatJSONBlock(entry["content"]); formatted != "" {
			content = content + "\n" + formatted
		}
		return []Message{{Role: "tool_result", Content: content, Timestamp: timestamp}}
	}
	return nil
}

func extractToolResultText(content any) string {
	switch raw := content.(type) {
	case string:
		return raw
	case []any:
		parts := []string{}
		for _, item := range raw {
			switch v := item.(type) {
			case string:
				parts = append(parts, v)
			case map[string]any:
				if typ, _ := v["type"].(string); typ == "text" {
					if txt, ok := v["text"].(string); ok {
						parts = append(parts, txt)
					}
				}
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func formatJSONBlock(value any) string {
	if value == nil {
		return ""
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func parseEnvelopeMessage(env sessionEnvelope) (Message, bool) {
	if env.IsMeta || len(env.Message) == 0 {
		return Message{}, false
	}
	var msg sessionMessage
	if err := json.Unmarshal(env.Message, &msg); err != nil {
		return Message{}, false
	}
	role := strings.ToLower(strings.TrimSpace(msg.Role))
	if role != "user" && role != "assistant" {
		return Message{}, false
	}
	text := strings.TrimSpace(extractText(msg.Content))
	if text == "" || shouldSkipContent(text) {
		return Message{}, false
	}
	return Message{
		Role:      role,
		Content:   text,
		Timestamp: parseTime(env.Timestamp),
	}, true
}

func extractText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}

	var asArray []map[string]any
	if err := json.Unmarshal(raw, &asArray); err == nil {
		var parts []string
		for _, item := range asArray {
			typ, _ := item["type"].(string)
			switch typ {
			case "thinking", "tool_result", "tool_use":
				continue
			default:
				if txt, ok := item["text"].(string); ok {
					parts = append(parts, txt)
				}
			}
		}
		return strings.Join(parts, "\n")
	}

	var asObject map[string]any
	if err := json.Unmarshal(raw, &asObject); err == nil {
		if txt, ok := asObject["text"].(string); ok {
			return txt
		}
		if txt, ok := asObject["content"].(string); ok {
			return txt
		}
	}
	return ""
}

func shouldSkipContent(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "<local-command-") ||
		strings.Contains(lower, commandMarker) ||
		strings.Contains(lower, "<command-message>")
}
