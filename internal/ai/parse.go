// internal/ai/parse.go
package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseModelJSON unmarshals a model reply that may wrap its JSON payload in
// markdown code fences.
func parseModelJSON(content string, v any) error {
	cleaned := content
	if strings.Contains(cleaned, "```json") {
		parts := strings.SplitN(cleaned, "```json", 2)
		cleaned = strings.SplitN(parts[1], "```", 2)[0]
	} else if strings.Contains(cleaned, "```") {
		parts := strings.SplitN(cleaned, "```", 3)
		if len(parts) >= 2 {
			cleaned = parts[1]
		}
	}
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("model returned unparseable JSON: %w", err)
	}
	return nil
}
