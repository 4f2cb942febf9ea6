package forms

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"certa/internal/models"
	"certa/internal/schedule"
)

// Year bounds accepted for a certification period.
const (
	MinYear = 2000
	MaxYear = 2100
)

// Certification checks a certification payload. submitting adds the rules
// that apply only when the document is about to be submitted.
func Certification(in models.CertificationInput, submitting bool) error {
	var e errs
	if strings.TrimSpace(in.PatientID) == "" {
		e.add(FieldPatient, "Please select a patient")
	}
	if in.Month < 1 || in.Month > 12 {
		e.add(FieldMonth, "Month must be between 1 and 12")
	}
	if in.Year < MinYear || in.Year > MaxYear {
		e.add(FieldYear, fmt.Sprintf("Year must be between %d and %d", MinYear, MaxYear))
	}
	if submitting && len(in.Schedules) == 0 {
		e.add(FieldSchedules, "Add at least one therapy schedule before submitting")
	}
	for _, s := range in.Schedules {
		if err := Schedule(s); err != nil {
			e.add(FieldSchedules, err.Error())
			break
		}
	}
	return e.err()
}

// Schedule checks one recurring slot.
func Schedule(s models.TherapySchedule) error {
	if _, _, err := schedule.ParseClock(s.StartTime); err != nil {
		return &ValidationError{Field: FieldSchedules, Message: fmt.Sprintf("Schedule %s: start time must be HH:MM", s.Weekday)}
	}
	if s.DurationMinutes <= 0 {
		return &ValidationError{Field: FieldSchedules, Message: fmt.Sprintf("Schedule %s: duration must be positive", s.Weekday)}
	}
	return nil
}

// Session checks a session payload against the certification it belongs to.
func Session(in models.SessionInput, cert models.Certification) error {
	var e errs

	date, err := time.Parse("2006-01-02", strings.TrimSpace(in.Date))
	switch {
	case err != nil:
		e.add(FieldDate, "Date must be YYYY-MM-DD")
	case date.Year() != cert.Year || int(date.Month()) != cert.Month:
		e.add(FieldDate, fmt.Sprintf("Date must fall within %s", cert.Period()))
	}

	sh, sm, startErr := schedule.ParseClock(in.StartTime)
	if startErr != nil {
		e.add(FieldStartTime, "Start time must be HH:MM")
	}
	eh, em, endErr := schedule.ParseClock(in.EndTime)
	if endErr != nil {
		e.add(FieldEndTime, "End time must be HH:MM")
	}
	if startErr == nil && endErr == nil && eh*60+em <= sh*60+sm {
		e.add(FieldEndTime, "End time must be after start time")
	}

	if !validSessionStatus(in.Status) {
		e.add(FieldStatus, fmt.Sprintf("Unknown status %q", in.Status))
	}
	if in.Status == models.SessionCompleted && len(in.Signature) == 0 {
		e.add(FieldSignature, "A signature is required for completed sessions")
	}
	return e.err()
}

func validSessionStatus(s models.SessionStatus) bool {
	for _, v := range models.SessionStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Patient checks a patient payload.
func Patient(in models.PatientInput) error {
	var e errs
	if strings.TrimSpace(in.FirstName) == "" {
		e.add(FieldFirstName, "First name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		e.add(FieldLastName, "Last name is required")
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			e.add(FieldEmail, "Enter a valid e-mail address")
		}
	}
	return e.err()
}
