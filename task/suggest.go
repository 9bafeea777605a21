package task

import "strings"

// SuggestTitles filters historical titles for the autocomplete
// dropdown: case-insensitive substring match, the exact query itself
// excluded, capped at limit. Queries shorter than two characters yield
// nothing so the dropdown does not flap on the first keystroke.
func SuggestTitles(titles []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < 2 {
		return nil
	}
	var out []string
	for _, title := range titles {
		lower := strings.ToLower(title)
		if lower == q || !strings.Contains(lower, q) {
			continue
		}
		out = append(out, title)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
