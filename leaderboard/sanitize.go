package leaderboard

import (
	"encoding/json"
	"math"

	"portfolio-snake/constants"
	"portfolio-snake/models"
)

// decode parses a stored leaderboard payload. Anything that is not a JSON
// array yields an empty list; elements that are not {name: string, score:
// number} objects are dropped, as are scores that do not fit in an int.
func decode(raw string) []models.LeaderboardEntry {
	if raw == "" {
		return []models.LeaderboardEntry{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []models.LeaderboardEntry{}
	}

	entries := make([]models.LeaderboardEntry, 0, len(items))
	for _, item := range items {
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}
		name, ok := fields["name"].(string)
		if !ok {
			continue
		}
		score, ok := fields["score"].(float64)
		if !ok || score < math.MinInt || score >= math.MaxInt {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			Name:  truncateName(name),
			Score: int(score),
		})
	}
	return entries
}

func sanitize(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	clean := make([]models.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		clean = append(clean, models.LeaderboardEntry{
			Name:  truncateName(e.Name),
			Score: e.Score,
		})
	}
	return clean
}

func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= constants.MAX_NAME_LENGTH {
		return name
	}
	return string(runes[:constants.MAX_NAME_LENGTH])
}
