package certifications

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certa/internal/forms"
	"certa/internal/models"
)

func TestParseSchedules(t *testing.T) {
	got, err := ParseSchedules("Monday 09:00 45\n\n  thu 14:30 60 FREQ=WEEKLY;INTERVAL=2;BYDAY=TH  \n")
	require.NoError(t, err)

	want := []models.TherapySchedule{
		{Weekday: time.Monday, StartTime: "09:00", DurationMinutes: 45},
		{Weekday: time.Thursday, StartTime: "14:30", DurationMinutes: 60, RRule: "FREQ=WEEKLY;INTERVAL=2;BYDAY=TH"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseSchedules mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Monday 09:00 45\nThursday 14:30 60 FREQ=WEEKLY;INTERVAL=2;BYDAY=TH", FormatSchedules(got))
}

func TestParseSchedulesReportsLine(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Monday 09:00", "Line 1: expected <weekday> <HH:MM> <minutes> [rule]"},
		{"Monday 09:00 45\nFunday 10:00 30", `Line 2: unknown weekday "Funday"`},
		{"Tue 10:00 half", "Line 1: duration must be a number of minutes"},
	}
	for _, tt := range tests {
		_, err := ParseSchedules(tt.text)
		var verr *forms.ValidationError
		require.True(t, errors.As(err, &verr), tt.text)
		assert.Equal(t, forms.FieldSchedules, verr.Field)
		assert.Equal(t, tt.want, verr.Message)
	}
}

func TestKeepScheduleIDsMatchesSlot(t *testing.T) {
	previous := []models.TherapySchedule{
		{ID: "a", Weekday: time.Monday, StartTime: "09:00"},
		{ID: "b", Weekday: time.Wednesday, StartTime: "11:00"},
	}
	parsed := []models.TherapySchedule{
		{Weekday: time.Wednesday, StartTime: "11:00", DurationMinutes: 30},
		{Weekday: time.Monday, StartTime: "10:00", DurationMinutes: 30},
	}
	keepScheduleIDs(parsed, previous)
	assert.Equal(t, "b", parsed[0].ID)
	assert.Empty(t, parsed[1].ID)
}

func TestCertFormValidateRoutesErrors(t *testing.T) {
	patients := []models.Patient{{ID: "p1", FirstName: "Ada", LastName: "Lovelace"}}
	in := models.CertificationInput{
		PatientID: "p1", Month: 3, Year: 2026,
		Schedules: []models.TherapySchedule{
			{Weekday: time.Monday, StartTime: "09:00", DurationMinutes: 60},
			{Weekday: time.Monday, StartTime: "09:30", DurationMinutes: 45},
		},
	}
	form := newCertForm("Edit", in, patients, time.UTC, 3)

	_, ok := form.validate()
	assert.False(t, ok)
	assert.True(t, strings.HasPrefix(form.panel.FieldError(forms.FieldSchedules), "Session conflicts detected"))
	assert.Contains(t, form.preview.GetText(true), "Session conflicts detected")

	form.panel.SetText(forms.FieldSchedules, "Monday 09:00 60")
	form.panel.SetText(forms.FieldMonth, "13")
	_, ok = form.validate()
	assert.False(t, ok)
	assert.Equal(t, "Month must be between 1 and 12", form.panel.FieldError(forms.FieldMonth))
	assert.Empty(t, form.panel.FieldError(forms.FieldSchedules))

	form.panel.SetText(forms.FieldMonth, "3")
	got, ok := form.validate()
	require.True(t, ok)
	assert.Equal(t, "p1", got.PatientID)
	assert.Empty(t, form.panel.GeneralError())
}

func TestCertFormKeepsUnknownPatient(t *testing.T) {
	form := newCertForm("Edit", models.CertificationInput{PatientID: "p9", Month: 3, Year: 2026}, nil, time.UTC, 3)
	in, err := form.input()
	require.NoError(t, err)
	assert.Equal(t, "p9", in.PatientID)
}

func TestPreviewText(t *testing.T) {
	text := previewText("Monday 09:00 45", 2026, 3, 2, time.UTC)
	assert.Contains(t, text, "Monday 09:00 (45m)")
	assert.Contains(t, text, "Mon 02 Mar 09:00")
	assert.Contains(t, text, "Mon 09 Mar 09:00")
	assert.NotContains(t, text, "Mon 16 Mar")

	assert.Contains(t, previewText("Monday 09:00 45", 2026, 0, 2, time.UTC), "Enter a month and year")
	assert.Contains(t, previewText("", 2026, 3, 2, time.UTC), "No schedules")
	assert.Contains(t, previewText("Someday", 2026, 3, 2, time.UTC), "Line 1")
}

func TestParseFilter(t *testing.T) {
	got := ParseFilter("Submitted 2026-03 ada lovelace")
	want := models.CertificationFilter{Status: models.StatusSubmitted, Year: 2026, Month: 3, Search: "ada lovelace"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseFilter mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "submitted 2026-03 ada lovelace", FormatFilter(got))
	assert.Equal(t, models.CertificationFilter{}, ParseFilter("   "))
}

func TestPDFFileName(t *testing.T) {
	cert := models.Certification{
		ID: "c1", Month: 3, Year: 2026,
		Patient: &models.PatientSummary{FirstName: "Zoë", LastName: "O'Brien-Smith"},
	}
	assert.Equal(t, "certification-zo-o-brien-smith-2026-03.pdf", PDFFileName(cert))

	cert.Patient = nil
	cert.PatientID = ""
	assert.Equal(t, "certification-c1-2026-03.pdf", PDFFileName(cert))
}

func TestNotesPreviewCutsOnRunes(t *testing.T) {
	assert.Equal(t, "walked to the door", notesPreview("walked to\nthe door"))

	long := strings.Repeat("日本", 20)
	got := notesPreview(long)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, runewidth.StringWidth(got), notesWidth)
	assert.True(t, strings.HasPrefix(long, strings.TrimSuffix(got, "...")))
}
