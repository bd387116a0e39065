package lib

import "strings"

// SplitList parses a comma-separated environment value into a trimmed,
// empty-element-free slice. "a, b,,c" becomes ["a" "b" "c"].
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		result = append(result, part)
	}

	return result
}
