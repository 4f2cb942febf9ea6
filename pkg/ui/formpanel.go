package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// FormPanel is a tview.Form with a general error banner above it and a
// per-field error list below it. Fields are addressed by key rather than
// by label so the labels can change freely.
type FormPanel struct {
	*tview.Flex
	form   *tview.Form
	banner *tview.TextView
	errs   *tview.TextView

	items  map[string]tview.FormItem
	labels map[string]string
	order  []string

	fieldErrors map[string]string
	general     string
}

// NewFormPanel builds an empty form titled title.
func NewFormPanel(title string) *FormPanel {
	f := &FormPanel{
		form:   tview.NewForm(),
		banner: tview.NewTextView(),
		errs:   tview.NewTextView(),
		items:  map[string]tview.FormItem{},
		labels: map[string]string{},
	}
	styleForm(f.form, title, tcell.ColorAqua)
	f.form.SetItemPadding(1)
	f.form.SetButtonsAlign(tview.AlignLeft)
	styleButtons(f.form, tcell.ColorAqua)

	f.banner.SetDynamicColors(true)
	f.banner.SetTextColor(tcell.ColorRed)
	f.banner.SetBackgroundColor(tcell.ColorDefault)
	f.errs.SetDynamicColors(true)
	f.errs.SetBackgroundColor(tcell.ColorDefault)

	f.Flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(f.banner, 1, 0, false).
		AddItem(f.form, 0, 1, true).
		AddItem(f.errs, 4, 0, false)
	return f
}

// Form exposes the underlying form.
func (f *FormPanel) Form() *tview.Form {
	return f.form
}

func (f *FormPanel) track(key, label string) {
	f.items[key] = f.form.GetFormItem(f.form.GetFormItemCount() - 1)
	f.labels[key] = label
	f.order = append(f.order, key)
}

// AddInput adds a single-line input.
func (f *FormPanel) AddInput(key, label, value string, width int) *FormPanel {
	f.form.AddInputField(label, value, width, nil, nil)
	f.track(key, label)
	return f
}

// AddTextArea adds a multi-line input.
func (f *FormPanel) AddTextArea(key, label, value string, width, height int) *FormPanel {
	f.form.AddTextArea(label, value, width, height, 0, nil)
	f.track(key, label)
	return f
}

// AddDropDown adds a choice; selected is an index into options.
func (f *FormPanel) AddDropDown(key, label string, options []string, selected int, changed func(option string, index int)) *FormPanel {
	f.form.AddDropDown(label, options, selected, changed)
	f.track(key, label)
	return f
}

// AddCheckbox adds a boolean.
func (f *FormPanel) AddCheckbox(key, label string, checked bool) *FormPanel {
	f.form.AddCheckbox(label, checked, nil)
	f.track(key, label)
	return f
}

// AddItem adds a custom form item, e.g. a signature pad.
func (f *FormPanel) AddItem(key string, item tview.FormItem) *FormPanel {
	f.form.AddFormItem(item)
	f.track(key, item.GetLabel())
	return f
}

// AddButton adds a button.
func (f *FormPanel) AddButton(label string, selected func()) *FormPanel {
	f.form.AddButton(label, selected)
	styleButtons(f.form, tcell.ColorAqua)
	return f
}

// SetCancelFunc runs on Esc inside the form.
func (f *FormPanel) SetCancelFunc(cancel func()) *FormPanel {
	f.form.SetCancelFunc(cancel)
	return f
}

// Text returns the value of an input, text area or the selected option of
// a drop-down.
func (f *FormPanel) Text(key string) string {
	switch item := f.items[key].(type) {
	case *tview.InputField:
		return strings.TrimSpace(item.GetText())
	case *tview.TextArea:
		return item.GetText()
	case *tview.DropDown:
		_, option := item.GetCurrentOption()
		return option
	}
	return ""
}

// SetText replaces the value of an input or text area.
func (f *FormPanel) SetText(key, value string) {
	switch item := f.items[key].(type) {
	case *tview.InputField:
		item.SetText(value)
	case *tview.TextArea:
		item.SetText(value, false)
	}
}

// Selected returns the drop-down index, or -1.
func (f *FormPanel) Selected(key string) int {
	if dd, ok := f.items[key].(*tview.DropDown); ok {
		idx, _ := dd.GetCurrentOption()
		return idx
	}
	return -1
}

// Checked returns a checkbox value.
func (f *FormPanel) Checked(key string) bool {
	if cb, ok := f.items[key].(*tview.Checkbox); ok {
		return cb.IsChecked()
	}
	return false
}

// Item returns the form item registered under key.
func (f *FormPanel) Item(key string) tview.FormItem {
	return f.items[key]
}

// SetErrors shows per-field messages and the general banner. Messages are
// displayed verbatim; keys without a field fall back to the banner.
func (f *FormPanel) SetErrors(fields map[string]string, general string) {
	f.fieldErrors = map[string]string{}
	var lines, orphans []string
	for _, key := range f.order {
		if msg, ok := fields[key]; ok {
			f.fieldErrors[key] = msg
			lines = append(lines, fmt.Sprintf("[red]%s:[white] %s", tview.Escape(strings.TrimSpace(f.labels[key])), tview.Escape(msg)))
		}
	}
	for key, msg := range fields {
		if _, known := f.items[key]; !known {
			orphans = append(orphans, msg)
		}
	}
	if general == "" && len(orphans) > 0 {
		general = strings.Join(orphans, "; ")
	}
	f.general = general
	f.errs.SetText(strings.Join(lines, "\n"))
	f.banner.SetText(tview.Escape(general))
}

// ClearErrors empties every error slot.
func (f *FormPanel) ClearErrors() {
	f.SetErrors(nil, "")
}

// FieldError returns the message shown for key.
func (f *FormPanel) FieldError(key string) string {
	return f.fieldErrors[key]
}

// GeneralError returns the banner message.
func (f *FormPanel) GeneralError() string {
	return f.general
}
