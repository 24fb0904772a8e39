package usecases

import (
	"github.com/anishmaharjan/caremap/internal/core/domain"
)

// DedupeByCoordinate collapses a batch of hospitals to one per coordinate
// key. Iteration follows input order and later occurrences overwrite earlier
// ones: the last record sharing a key wins. Output order is unspecified.
//
// Siblings inside the 6-decimal tolerance are assumed to be duplicates of one
// real-world entity. That is a known precision trade-off, not a bug.
func DedupeByCoordinate(hospitals []domain.Hospital) []domain.Hospital {
	byKey := make(map[string]domain.Hospital, len(hospitals))
	order := make([]string, 0, len(hospitals))

	for _, h := range hospitals {
		key := h.Key()
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = h
	}

	out := make([]domain.Hospital, 0, len(byKey))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}
