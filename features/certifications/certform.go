package certifications

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"certa/internal/forms"
	"certa/internal/models"
	"certa/internal/schedule"
	"certa/pkg/ui"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	fieldTherapyType = "therapyType"
	fieldNotes       = "notes"
)

// ParseSchedules reads the schedule editor: one "<weekday> <HH:MM>
// <minutes> [rule]" per line. Blank lines are skipped.
func ParseSchedules(text string) ([]models.TherapySchedule, error) {
	var out []models.TherapySchedule
	for n, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 || len(fields) > 4 {
			return nil, scheduleLineError(n+1, "expected <weekday> <HH:MM> <minutes> [rule]")
		}
		day, ok := parseWeekday(fields[0])
		if !ok {
			return nil, scheduleLineError(n+1, fmt.Sprintf("unknown weekday %q", fields[0]))
		}
		minutes, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, scheduleLineError(n+1, "duration must be a number of minutes")
		}
		s := models.TherapySchedule{Weekday: day, StartTime: fields[1], DurationMinutes: minutes}
		if len(fields) == 4 {
			s.RRule = fields[3]
		}
		out = append(out, s)
	}
	return out, nil
}

func scheduleLineError(line int, msg string) error {
	return &forms.ValidationError{Field: forms.FieldSchedules, Message: fmt.Sprintf("Line %d: %s", line, msg)}
}

// FormatSchedules renders schedules the way ParseSchedules reads them.
func FormatSchedules(schedules []models.TherapySchedule) string {
	lines := make([]string, len(schedules))
	for i, s := range schedules {
		lines[i] = fmt.Sprintf("%s %s %d", s.Weekday, s.StartTime, s.DurationMinutes)
		if s.RRule != "" {
			lines[i] += " " + s.RRule
		}
	}
	return strings.Join(lines, "\n")
}

func parseWeekday(v string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if strings.EqualFold(v, name) || strings.EqualFold(v, name[:3]) {
			return d, true
		}
	}
	return 0, false
}

// keepScheduleIDs carries ids over from previous to the parsed schedules
// that still describe the same weekday and start time.
func keepScheduleIDs(parsed, previous []models.TherapySchedule) {
	used := map[int]bool{}
	for i := range parsed {
		for j, p := range previous {
			if !used[j] && p.ID != "" && p.Weekday == parsed[i].Weekday && p.StartTime == parsed[i].StartTime {
				parsed[i].ID = p.ID
				used[j] = true
				break
			}
		}
	}
}

// certForm edits a CertificationInput: patient, period, therapy type,
// notes and the recurring schedules with a live preview.
type certForm struct {
	panel    *ui.FormPanel
	preview  *tview.TextView
	layout   *tview.Flex
	patients []models.Patient
	original models.CertificationInput
	loc      *time.Location
	previewN int
}

func newCertForm(title string, in models.CertificationInput, patients []models.Patient, loc *time.Location, previewN int) *certForm {
	c := &certForm{
		panel:    ui.NewFormPanel(title),
		preview:  tview.NewTextView(),
		original: in,
		loc:      loc,
		previewN: previewN,
	}

	options, selected := c.patientOptions(in.PatientID, patients)
	c.panel.AddDropDown(forms.FieldPatient, "Patient", options, selected, nil)
	c.panel.AddInput(forms.FieldMonth, "Month", intText(in.Month), 4)
	c.panel.AddInput(forms.FieldYear, "Year", intText(in.Year), 6)
	c.panel.AddInput(fieldTherapyType, "Therapy type", in.TherapyType, 30)
	c.panel.AddTextArea(fieldNotes, "Notes", in.Notes, 50, 3)
	c.panel.AddTextArea(forms.FieldSchedules, "Schedules", FormatSchedules(in.Schedules), 50, 5)

	for _, key := range []string{forms.FieldMonth, forms.FieldYear} {
		if input, ok := c.panel.Item(key).(*tview.InputField); ok {
			input.SetAcceptanceFunc(tview.InputFieldInteger)
			input.SetChangedFunc(func(string) { c.updatePreview() })
		}
	}
	if area, ok := c.panel.Item(forms.FieldSchedules).(*tview.TextArea); ok {
		area.SetChangedFunc(c.updatePreview)
	}

	c.preview.SetDynamicColors(true)
	c.preview.SetBorder(true)
	c.preview.SetBorderColor(tcell.ColorGray)
	c.preview.SetTitle(" Schedule preview ")
	c.preview.SetBackgroundColor(tcell.ColorDefault)

	help := tview.NewTextView().SetDynamicColors(true).
		SetText("[gray]One schedule per line: [white]Monday 09:00 45[gray] or [white]Monday 09:00 45 FREQ=WEEKLY;INTERVAL=2;BYDAY=MO")
	help.SetBackgroundColor(tcell.ColorDefault)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.preview, 0, 1, false).
		AddItem(help, 2, 0, false)
	c.layout = tview.NewFlex().
		AddItem(c.panel, 0, 3, true).
		AddItem(right, 0, 2, false)

	c.updatePreview()
	return c
}

func (c *certForm) patientOptions(id string, patients []models.Patient) ([]string, int) {
	c.patients = append([]models.Patient(nil), patients...)
	selected := 0
	for i, p := range c.patients {
		if p.ID == id {
			selected = i + 1
		}
	}
	if id != "" && selected == 0 {
		// Not loaded yet; keep the id selectable so edits don't drop it.
		c.patients = append(c.patients, models.Patient{ID: id, FirstName: id})
		selected = len(c.patients)
	}
	options := []string{"Select a patient"}
	for _, p := range c.patients {
		options = append(options, p.FullName())
	}
	return options, selected
}

// input collects the form. Unparseable schedules come back as a
// validation error on the schedules field.
func (c *certForm) input() (models.CertificationInput, error) {
	in := c.original
	in.PatientID = ""
	if idx := c.panel.Selected(forms.FieldPatient); idx > 0 && idx <= len(c.patients) {
		in.PatientID = c.patients[idx-1].ID
	}
	in.Month, _ = strconv.Atoi(c.panel.Text(forms.FieldMonth))
	in.Year, _ = strconv.Atoi(c.panel.Text(forms.FieldYear))
	in.TherapyType = c.panel.Text(fieldTherapyType)
	in.Notes = strings.TrimSpace(c.panel.Text(fieldNotes))

	schedules, err := ParseSchedules(c.panel.Text(forms.FieldSchedules))
	if err != nil {
		return in, err
	}
	keepScheduleIDs(schedules, c.original.Schedules)
	in.Schedules = schedules
	return in, nil
}

// validate runs the local checks and shows their errors. It reports
// whether in can be sent.
func (c *certForm) validate() (models.CertificationInput, bool) {
	in, err := c.input()
	if err == nil {
		err = forms.Certification(in, false)
	}
	if err == nil {
		if cerr := schedule.Conflicts(in.Schedules, in.Year, in.Month, c.loc); cerr != nil {
			err = &forms.ValidationError{Field: forms.FieldSchedules, Message: cerr.Error()}
		}
	}
	if err != nil {
		c.showError(err)
		return in, false
	}
	c.panel.ClearErrors()
	return in, true
}

func (c *certForm) showError(err error) {
	routed := forms.Route(err)
	c.panel.SetErrors(routed.Fields, routed.General)
}

func (c *certForm) updatePreview() {
	if c.preview == nil {
		return
	}
	month, _ := strconv.Atoi(c.panel.Text(forms.FieldMonth))
	year, _ := strconv.Atoi(c.panel.Text(forms.FieldYear))
	c.preview.SetText(previewText(c.panel.Text(forms.FieldSchedules), year, month, c.previewN, c.loc))
}

// previewText lists the first n dates of every schedule in the period,
// followed by any conflict between them.
func previewText(text string, year, month, n int, loc *time.Location) string {
	if month < 1 || month > 12 || year < forms.MinYear || year > forms.MaxYear {
		return "[gray]Enter a month and year to preview the sessions."
	}
	schedules, err := ParseSchedules(text)
	if err != nil {
		return "[red]" + tview.Escape(err.Error())
	}
	if len(schedules) == 0 {
		return "[gray]No schedules."
	}

	var b strings.Builder
	for _, s := range schedules {
		dates, err := schedule.Preview(s, year, month, n, loc)
		fmt.Fprintf(&b, "[yellow]%s[white]\n", tview.Escape(s.Label()))
		if err != nil {
			fmt.Fprintf(&b, "  [red]%s[white]\n", tview.Escape(err.Error()))
			continue
		}
		if len(dates) == 0 {
			b.WriteString("  [gray]no sessions this month[white]\n")
			continue
		}
		for _, d := range dates {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}
	if err := schedule.Conflicts(schedules, year, month, loc); err != nil {
		fmt.Fprintf(&b, "\n[red]%s[white]", tview.Escape(err.Error()))
	}
	return strings.TrimRight(b.String(), "\n")
}

func intText(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}
