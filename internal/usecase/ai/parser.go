package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// extractedItem mirrors one element of the action_items schema. Pointers tell
// a missing field apart from an empty one.
type extractedItem struct {
	Summary   *string `json:"summary"`
	Details   *string `json:"details"`
	Assignee  *string `json:"assignee"`
	DueDate   *string `json:"due_date"`
	Completed *bool   `json:"completed"`
}

type extractionPayload struct {
	ActionItems *[]extractedItem `json:"action_items"`
}

var dueDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// parseActionItems turns the model output into items with positions 1..N.
// Any malformed item rejects the whole response.
func parseActionItems(content string) ([]*entities.ActionItem, error) {
	var payload extractionPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if payload.ActionItems == nil {
		return nil, fmt.Errorf("missing action_items in response")
	}

	items := make([]*entities.ActionItem, 0, len(*payload.ActionItems))
	for i, raw := range *payload.ActionItems {
		switch {
		case raw.Summary == nil || strings.TrimSpace(*raw.Summary) == "":
			return nil, fmt.Errorf("action item %d: missing summary", i+1)
		case raw.Details == nil:
			return nil, fmt.Errorf("action item %d: missing details", i+1)
		case raw.Assignee == nil:
			return nil, fmt.Errorf("action item %d: missing assignee", i+1)
		}

		item := &entities.ActionItem{
			Title:        strings.TrimSpace(*raw.Summary),
			Description:  strings.TrimSpace(*raw.Details),
			Assignee:     strings.TrimSpace(*raw.Assignee),
			SortPosition: i + 1,
		}
		if raw.DueDate != nil && strings.TrimSpace(*raw.DueDate) != "" {
			due, err := parseDueDate(*raw.DueDate)
			if err != nil {
				return nil, fmt.Errorf("action item %d: %w", i+1, err)
			}
			item.DueDate = &due
		}
		item.SetCompleted(raw.Completed != nil && *raw.Completed)
		items = append(items, item)
	}
	return items, nil
}

func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable due_date %q", s)
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
