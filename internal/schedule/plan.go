package schedule

import (
	"time"

	"certa/internal/models"
)

// PlanSessions returns the scheduled visits of cert that have no recorded
// session yet, ordered by start. A session matches an occurrence when date
// and start time are equal.
func PlanSessions(cert models.Certification, loc *time.Location) ([]models.SessionInput, error) {
	occ, err := ExpandAll(cert.Schedules, cert.Year, cert.Month, loc)
	if err != nil {
		return nil, err
	}
	recorded := make(map[string]bool, len(cert.Sessions))
	for _, s := range cert.Sessions {
		recorded[s.Date+" "+s.StartTime] = true
	}

	var out []models.SessionInput
	for _, o := range occ {
		date := o.Start.Format(dateLayout)
		start := o.Start.Format(timeLayout)
		if recorded[date+" "+start] {
			continue
		}
		out = append(out, models.SessionInput{
			ScheduleID: o.ScheduleID,
			Date:       date,
			StartTime:  start,
			EndTime:    o.End.Format(timeLayout),
			Status:     models.SessionScheduled,
		})
	}
	return out, nil
}
