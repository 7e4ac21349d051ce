package store

import "encoding/json"

// Tags are stored as a JSON array in a TEXT column. SQLite has no native
// array type and nothing queries inside the set, so no join table.

func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}
