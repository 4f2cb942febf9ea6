package forms

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certa/internal/api"
	"certa/internal/models"
	"certa/internal/schedule"
)

func validCertification() models.CertificationInput {
	return models.CertificationInput{
		PatientID: "p1",
		Month:     3,
		Year:      2026,
		Schedules: []models.TherapySchedule{{Weekday: time.Monday, StartTime: "09:00", DurationMinutes: 45}},
	}
}

func TestCertificationRequiresPatient(t *testing.T) {
	in := validCertification()
	in.PatientID = ""

	err := Certification(in, false)
	require.Error(t, err)
	assert.Equal(t, "Please select a patient", Route(err).Get(FieldPatient))
}

func TestCertificationPeriodBounds(t *testing.T) {
	in := validCertification()
	in.Month = 13
	in.Year = 1999

	routed := Route(Certification(in, false))
	assert.Equal(t, "Month must be between 1 and 12", routed.Get(FieldMonth))
	assert.Equal(t, "Year must be between 2000 and 2100", routed.Get(FieldYear))
	assert.Empty(t, routed.General)
}

func TestCertificationSchedulesOnlyRequiredOnSubmit(t *testing.T) {
	in := validCertification()
	in.Schedules = nil

	assert.NoError(t, Certification(in, false))
	err := Certification(in, true)
	require.Error(t, err)
	assert.NotEmpty(t, Route(err).Get(FieldSchedules))
}

func TestCertificationBadSchedule(t *testing.T) {
	in := validCertification()
	in.Schedules[0].StartTime = "nine"

	assert.Equal(t, "Schedule Monday: start time must be HH:MM", Route(Certification(in, false)).Get(FieldSchedules))
}

func TestSessionRules(t *testing.T) {
	cert := models.Certification{ID: "c1", Month: 3, Year: 2026}
	ok := models.SessionInput{Date: "2026-03-02", StartTime: "09:00", EndTime: "09:45", Status: models.SessionScheduled}
	require.NoError(t, Session(ok, cert))

	tests := []struct {
		name  string
		edit  func(*models.SessionInput)
		field string
		want  string
	}{
		{"outside month", func(in *models.SessionInput) { in.Date = "2026-04-01" }, FieldDate, "Date must fall within 2026-03"},
		{"bad date", func(in *models.SessionInput) { in.Date = "03/02/2026" }, FieldDate, "Date must be YYYY-MM-DD"},
		{"end before start", func(in *models.SessionInput) { in.EndTime = "08:30" }, FieldEndTime, "End time must be after start time"},
		{"end equals start", func(in *models.SessionInput) { in.EndTime = "09:00" }, FieldEndTime, "End time must be after start time"},
		{"bad start", func(in *models.SessionInput) { in.StartTime = "9" }, FieldStartTime, "Start time must be HH:MM"},
		{"unknown status", func(in *models.SessionInput) { in.Status = "done" }, FieldStatus, `Unknown status "done"`},
		{"completed unsigned", func(in *models.SessionInput) { in.Status = models.SessionCompleted }, FieldSignature, "A signature is required for completed sessions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ok
			tt.edit(&in)
			assert.Equal(t, tt.want, Route(Session(in, cert)).Get(tt.field))
		})
	}

	signed := ok
	signed.Status = models.SessionCompleted
	signed.Signature = []byte{0x89, 'P', 'N', 'G'}
	assert.NoError(t, Session(signed, cert))
}

func TestPatientRules(t *testing.T) {
	assert.NoError(t, Patient(models.PatientInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}))

	routed := Route(Patient(models.PatientInput{Email: "Ada <ada@example.com>"}))
	assert.Equal(t, "First name is required", routed.Get(FieldFirstName))
	assert.Equal(t, "Last name is required", routed.Get(FieldLastName))
	assert.Equal(t, "Enter a valid e-mail address", routed.Get(FieldEmail))
}

func TestRouteBackendConflictToSchedules(t *testing.T) {
	err := &api.Error{Kind: api.KindBackend, StatusCode: 409, Message: "Session conflicts detected for Monday 09:00"}

	routed := Route(fmt.Errorf("create certification: %w", err))
	assert.Equal(t, "Session conflicts detected for Monday 09:00", routed.Get(FieldSchedules))
	assert.Empty(t, routed.General)
}

func TestRouteLocalConflictToSchedules(t *testing.T) {
	err := &schedule.ConflictError{Slots: []string{"Monday 09:00"}}
	assert.Equal(t, "Session conflicts detected for Monday 09:00", Route(err).Get(FieldSchedules))
}

func TestRouteOtherErrorsToGeneral(t *testing.T) {
	backend := &api.Error{Kind: api.KindBackend, StatusCode: 422, Message: "Certification already submitted"}
	assert.Equal(t, FieldErrors{General: "Certification already submitted"}, Route(backend))

	network := &api.Error{Kind: api.KindNetwork, Message: api.GenericMessage, Err: errors.New("dial tcp")}
	assert.Equal(t, api.GenericMessage, Route(network).General)

	assert.True(t, Route(nil).Empty())
}

func TestRouteKeepsFirstMessagePerField(t *testing.T) {
	err := ValidationErrors{
		{Field: FieldEndTime, Message: "first"},
		{Field: FieldEndTime, Message: "second"},
		{Message: "banner"},
	}
	routed := Route(err)
	assert.Equal(t, "first", routed.Get(FieldEndTime))
	assert.Equal(t, "banner", routed.General)
}
