package schedule

import (
	"strings"
	"time"

	"certa/internal/models"
)

// ConflictMessagePrefix starts every conflict message, whether it was
// produced here or by the backend.
const ConflictMessagePrefix = "Session conflicts detected"

// Conflict is a pair of overlapping occurrences from different schedules.
type Conflict struct {
	First  Occurrence
	Second Occurrence
}

// ConflictError lists the distinct slots involved in conflicts.
type ConflictError struct {
	Slots     []string
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return ConflictMessagePrefix + " for " + strings.Join(e.Slots, ", ")
}

// Conflicts finds overlapping occurrences between different schedules of
// the same month. It returns a *ConflictError when any are found.
func Conflicts(schedules []models.TherapySchedule, year, month int, loc *time.Location) error {
	type tagged struct {
		idx int
		occ Occurrence
	}
	var all []tagged
	for i, s := range schedules {
		occ, err := Expand(s, year, month, loc)
		if err != nil {
			return err
		}
		for _, o := range occ {
			all = append(all, tagged{idx: i, occ: o})
		}
	}

	var (
		found []Conflict
		slots []string
		seen  = map[string]bool{}
	)
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[i].idx == all[j].idx || !all[i].occ.overlaps(all[j].occ) {
				continue
			}
			a, b := all[i].occ, all[j].occ
			if b.Start.Before(a.Start) {
				a, b = b, a
			}
			found = append(found, Conflict{First: a, Second: b})
			if slot := b.Slot(); !seen[slot] {
				seen[slot] = true
				slots = append(slots, slot)
			}
		}
	}
	if len(found) == 0 {
		return nil
	}
	return &ConflictError{Slots: slots, Conflicts: found}
}

// IsConflictMessage reports whether msg is a schedule conflict message.
func IsConflictMessage(msg string) bool {
	return strings.Contains(msg, ConflictMessagePrefix)
}
