package service

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx/types"
)

// normalizeAssessment keeps only assessment tools whose items map carries at
// least one numeric score, reducing each to its items and average. Nothing
// left means no assessment is stored.
func normalizeAssessment(details map[string]interface{}) (types.NullJSONText, error) {
	clean := make(map[string]interface{}, len(details))
	for toolID, raw := range details {
		detail, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		items, ok := detail["items"].(map[string]interface{})
		if !ok || !hasNumericScore(items) {
			continue
		}
		clean[toolID] = map[string]interface{}{
			"items":   items,
			"average": detail["average"],
		}
	}
	if len(clean) == 0 {
		return types.NullJSONText{}, nil
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return types.NullJSONText{}, fmt.Errorf("marshal assessment details: %w", err)
	}
	return types.NullJSONText{JSONText: types.JSONText(data), Valid: true}, nil
}

func hasNumericScore(items map[string]interface{}) bool {
	for _, score := range items {
		switch score.(type) {
		case float64, float32, int, int64, json.Number:
			return true
		}
	}
	return false
}
