// File: internal/services/chat/proposal.go
package chat

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/iyunix/go-planner/internal/domain"
)

const (
	proposalType = "plan_proposal"
	jsonFence    = "```json"
	fence        = "```"
)

// ProposalTask is one task entry of an assistant plan proposal.
type ProposalTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TaskDate    string `json:"task_date"`
	Status      string `json:"status"`
}

// ProposalPayload is the structured plan the assistant embedded in a reply.
// Dates stay as the model wrote them; they are checked on acceptance.
type ProposalPayload struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       string         `json:"color"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	Tasks       []ProposalTask `json:"tasks"`

	// RawTasks is the task list exactly as it appeared in the reply.
	RawTasks json.RawMessage `json:"-"`
}

type proposalEnvelope struct {
	Type string          `json:"type"`
	Plan json.RawMessage `json:"plan"`
}

// ExtractProposal looks for a plan proposal in an assistant reply. It never
// fails: anything that is not a tagged object with a plan object reports
// false. Field values are not validated here; a non-string field reads as ""
// and acceptance decides what the plan can be built from.
func ExtractProposal(text string) (ProposalPayload, bool) {
	candidate := proposalCandidate(strings.TrimSpace(text))
	if candidate == "" {
		return ProposalPayload{}, false
	}

	plan, ok := decodeEnvelope(candidate)
	if !ok {
		return ProposalPayload{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(plan, &fields); err != nil {
		return ProposalPayload{}, false
	}

	payload := ProposalPayload{
		Title:       looseString(fields["title"]),
		Description: looseString(fields["description"]),
		Color:       looseString(fields["color"]),
		StartDate:   looseString(fields["start_date"]),
		EndDate:     looseString(fields["end_date"]),
		Tasks:       []ProposalTask{},
		RawTasks:    json.RawMessage("[]"),
	}
	if payload.Color == "" {
		payload.Color = domain.DefaultPlanColor
	}

	if entries, ok := taskEntries(fields["tasks"]); ok {
		payload.RawTasks = append(json.RawMessage(nil), bytes.TrimSpace(fields["tasks"])...)
		for _, entry := range entries {
			if task, ok := looseTask(entry); ok {
				payload.Tasks = append(payload.Tasks, task)
			}
		}
	}
	return payload, true
}

// decodeEnvelope returns the plan object of a plan_proposal document.
func decodeEnvelope(candidate string) (json.RawMessage, bool) {
	var envelope proposalEnvelope
	if err := json.Unmarshal([]byte(candidate), &envelope); err != nil {
		return nil, false
	}
	if envelope.Type != proposalType || !isJSONObject(envelope.Plan) {
		return nil, false
	}
	return envelope.Plan, true
}

// taskEntries splits a JSON array into its elements. Anything else is false.
func taskEntries(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// looseTask reads one task entry. Entries that are not objects report false.
func looseTask(raw json.RawMessage) (ProposalTask, bool) {
	if !isJSONObject(raw) {
		return ProposalTask{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ProposalTask{}, false
	}
	task := ProposalTask{
		Title:       looseString(fields["title"]),
		Description: looseString(fields["description"]),
		TaskDate:    looseString(fields["task_date"]),
		Status:      looseString(fields["status"]),
	}
	if task.Status == "" {
		task.Status = string(domain.TaskStatusPending)
	}
	return task, true
}

// looseString returns a JSON string value, or "" for any other kind of value.
func looseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// proposalCandidate picks the text that should hold the JSON document:
// a ```json fence, then any fence, then a reply that is itself an object,
// then the first proposal object embedded in prose.
func proposalCandidate(text string) string {
	if i := strings.Index(text, jsonFence); i >= 0 {
		return fencedBody(text[i+len(jsonFence):])
	}
	if i := strings.Index(text, fence); i >= 0 {
		return fencedBody(text[i+len(fence):])
	}
	if strings.HasPrefix(text, "{") {
		if _, ok := decodeEnvelope(text); ok {
			return text
		}
	}
	return proseCandidate(text)
}

// proseCandidate tries each balanced object in turn and returns the first
// one tagged as a plan proposal.
func proseCandidate(text string) string {
	for offset := 0; offset < len(text); {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			break
		}
		block := extractJSONBlock(text[offset+i:])
		if block != "" {
			if _, ok := decodeEnvelope(block); ok {
				return block
			}
		}
		offset += i + 1
	}
	return ""
}

// fencedBody returns everything up to the closing fence, or the rest of the
// text when the fence is never closed.
func fencedBody(rest string) string {
	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// extractJSONBlock returns the first brace-balanced object in s, skipping
// braces that appear inside JSON strings.
func extractJSONBlock(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
