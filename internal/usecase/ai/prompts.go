package ai

import (
	"encoding/json"
	"fmt"

	pkgai "github.com/johnquangdev/meeting-pipeline/pkg/ai"
)

const actionItemsSystemPrompt = `You extract action items from meeting transcripts.
Return every concrete task somebody agreed to do. For each item give a short
summary, the details needed to act on it, and the assignee exactly as named in
the transcript (use "Unassigned" when nobody took it). Add due_date as
YYYY-MM-DD only when a date is stated, and completed=true only when the
transcript says the task is already done.`

const shortSummarySystemPrompt = `You summarize meetings.
Write a short summary of the transcript as 3 to 7 bullet points, each starting
with "- ". Cover decisions and outcomes. No headings, no preamble.`

const longSummarySystemPrompt = `You summarize meetings.
Write a detailed summary of the transcript with these sections, each introduced
by a markdown heading: "## Overview", "## Discussion", "## Decisions",
"## Next Steps". Use only what the transcript says.`

// actionItemsSchema is the response_format constraint for extraction
var actionItemsSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "action_items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "summary":   {"type": "string"},
          "details":   {"type": "string"},
          "assignee":  {"type": "string"},
          "due_date":  {"type": ["string", "null"]},
          "completed": {"type": "boolean"}
        },
        "required": ["summary", "details", "assignee"]
      }
    }
  },
  "required": ["action_items"]
}`)

func actionItemsFormat() *pkgai.ResponseFormat {
	return &pkgai.ResponseFormat{
		Type: "json_schema",
		JSONSchema: &pkgai.JSONSchema{
			Name:   "action_items",
			Schema: actionItemsSchema,
		},
	}
}

func transcriptMessages(system, transcript string) []pkgai.Message {
	return []pkgai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: fmt.Sprintf("Transcript:\n\n%s", transcript)},
	}
}
