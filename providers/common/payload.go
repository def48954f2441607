package common

// Payload accessors read loosely typed tracker responses. Absent or
// mistyped values read as zero, never fail: upstream payloads routinely omit
// whole sub-structures for days the device has not synced.

func NumberAt(payload map[string]any, key string) float64 {
	switch value := payload[key].(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	default:
		return 0
	}
}

func Int64At(payload map[string]any, key string) int64 {
	switch value := payload[key].(type) {
	case int64:
		return value
	case int:
		return int64(value)
	case float64:
		return int64(value)
	case float32:
		return int64(value)
	default:
		return 0
	}
}

func StringAt(payload map[string]any, key string) string {
	if value, ok := payload[key].(string); ok {
		return value
	}
	return ""
}

func BoolAt(payload map[string]any, key string) bool {
	if value, ok := payload[key].(bool); ok {
		return value
	}
	return false
}

func MapAt(payload map[string]any, key string) map[string]any {
	if value, ok := payload[key].(map[string]any); ok {
		return value
	}
	return nil
}

func SliceAt(payload map[string]any, key string) []any {
	if value, ok := payload[key].([]any); ok {
		return value
	}
	return nil
}
