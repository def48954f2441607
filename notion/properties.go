package notion

import (
	"github.com/daypulse/daypulse/core"
)

// buildProperties renders a field set into the store's property payload
// shape.
func buildProperties(fields core.FieldSet) map[string]any {
	properties := make(map[string]any, len(fields))
	for name, field := range fields {
		switch field.Kind {
		case core.FieldTitle:
			properties[name] = map[string]any{
				"title": []any{map[string]any{"text": map[string]any{"content": field.Text}}},
			}
		case core.FieldRichText:
			properties[name] = map[string]any{
				"rich_text": []any{map[string]any{"text": map[string]any{"content": field.Text}}},
			}
		case core.FieldNumber:
			properties[name] = map[string]any{"number": field.Number}
		case core.FieldDate:
			date := map[string]any{"start": field.Date}
			if field.DateEnd != "" {
				date["end"] = field.DateEnd
			}
			properties[name] = map[string]any{"date": date}
		case core.FieldSelect:
			properties[name] = map[string]any{"select": map[string]any{"name": field.Text}}
		case core.FieldCheckbox:
			properties[name] = map[string]any{"checkbox": field.Checked}
		}
	}
	return properties
}

func buildIcon(icon *core.RecordIcon) map[string]any {
	if icon == nil {
		return nil
	}
	if icon.Emoji != "" {
		return map[string]any{"type": "emoji", "emoji": icon.Emoji}
	}
	if icon.ExternalURL != "" {
		return map[string]any{"type": "external", "external": map[string]any{"url": icon.ExternalURL}}
	}
	return nil
}

// flattenProperties reduces raw store properties to plain values so validity
// signals can read them without knowing the wire shape. Absent or unexpected
// shapes flatten to nothing rather than failing.
func flattenProperties(properties map[string]map[string]any) map[string]any {
	flat := make(map[string]any, len(properties))
	for name, prop := range properties {
		switch {
		case prop["number"] != nil:
			if number, ok := prop["number"].(float64); ok {
				flat[name] = number
			}
		case prop["checkbox"] != nil:
			if checked, ok := prop["checkbox"].(bool); ok {
				flat[name] = checked
			}
		case prop["date"] != nil:
			if date, ok := prop["date"].(map[string]any); ok {
				if start, ok := date["start"].(string); ok {
					flat[name] = start
				}
			}
		case prop["select"] != nil:
			if sel, ok := prop["select"].(map[string]any); ok {
				if label, ok := sel["name"].(string); ok {
					flat[name] = label
				}
			}
		case prop["title"] != nil:
			flat[name] = plainText(prop["title"])
		case prop["rich_text"] != nil:
			flat[name] = plainText(prop["rich_text"])
		}
	}
	return flat
}

func plainText(value any) string {
	items, ok := value.([]any)
	if !ok {
		return ""
	}
	text := ""
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if plain, ok := entry["plain_text"].(string); ok {
			text += plain
			continue
		}
		if inner, ok := entry["text"].(map[string]any); ok {
			if content, ok := inner["content"].(string); ok {
				text += content
			}
		}
	}
	return text
}
