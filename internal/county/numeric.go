package county

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParsePercent converts text such as "50.5% in" into a fraction (0.505).
// Leading and trailing '%', 'i', 'n' and spaces are stripped before parsing.
func ParsePercent(text string) (float64, error) {
	cleaned := strings.Trim(strings.TrimSpace(text), "% in")
	if cleaned == "" {
		return 0, fmt.Errorf("empty percent text %q", text)
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing percent %q: %w", text, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("percent %q is not a finite number", text)
	}
	return value / 100, nil
}

// ParseTotalVotes converts text such as "12,345 votes" into an integer
func ParseTotalVotes(text string) (int, error) {
	cleaned := strings.ReplaceAll(text, "votes", "")
	cleaned = strings.ReplaceAll(strings.TrimSpace(cleaned), ",", "")
	value, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("parsing total votes %q: %w", text, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative total votes %q", text)
	}
	return value, nil
}

// ParseCandidateVotes converts a votes cell into an integer.
// Anything other than digits (after removing thousands separators) yields 0.
func ParseCandidateVotes(text string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if !isDigits(cleaned) {
		return 0
	}
	value, err := strconv.Atoi(cleaned)
	if err != nil {
		// overflow
		return 0
	}
	return value
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
