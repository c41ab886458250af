package composer

import "strings"

// WrapCaption splits text into lines that measure under maxWidth,
// accumulating words greedily. A single word wider than maxWidth still
// gets its own line rather than being truncated.
func WrapCaption(measure func(string) float64, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		candidate := current + " " + word
		if measure(candidate) < maxWidth {
			current = candidate
		} else {
			lines = append(lines, current)
			current = word
		}
	}

	return append(lines, current)
}
