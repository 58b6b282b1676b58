package agents

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeModelJSON parses a model response into v. Models occasionally wrap
// JSON in markdown fences or lead with prose, so this trims down to the
// outermost object before unmarshaling.
func decodeModelJSON(raw string, v interface{}) error {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON object in model output")
	}

	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("parse model output: %w", err)
	}
	return nil
}
