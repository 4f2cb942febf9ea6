package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Page ids of the standard modals.
const (
	ErrorModalPage        = "error-modal"
	ConfirmationModalPage = "confirmation-modal"
	InfoModalPage         = "info-modal"
	ListSelectorModalPage = "list-selector-modal"
	InputModalPage        = "compact-modal"
)

// RemovePage installs an app-level Esc handler that closes pageID and then
// restores the previous input capture.
func RemovePage(pages *tview.Pages, app *tview.Application, pageID string, callback func()) {
	oldCapture := app.GetInputCapture()
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape && pages.HasPage(pageID) {
			pages.RemovePage(pageID)
			app.SetInputCapture(oldCapture)
			if callback != nil {
				callback()
			}
			return nil
		}
		if oldCapture != nil {
			return oldCapture(event)
		}
		return event
	})
}

// Centered places p in the middle of the screen at width x height.
func Centered(p tview.Primitive, width, height int) *tview.Flex {
	inner := tview.NewFlex()
	inner.SetDirection(tview.FlexRow)
	inner.SetBackgroundColor(tcell.ColorDefault)
	inner.AddItem(nil, 0, 1, false).
		AddItem(p, height, 1, true).
		AddItem(nil, 0, 1, false)

	flex := tview.NewFlex()
	flex.SetBackgroundColor(tcell.ColorDefault)
	flex.AddItem(nil, 0, 1, false).
		AddItem(inner, width, 1, true).
		AddItem(nil, 0, 1, false)
	return flex
}

func styleForm(form *tview.Form, title string, border tcell.Color) {
	form.SetItemPadding(0)
	form.SetButtonsAlign(tview.AlignCenter)
	form.SetBackgroundColor(tcell.ColorDefault)
	form.SetButtonBackgroundColor(tcell.ColorDefault)
	form.SetButtonTextColor(tcell.ColorWhite)
	form.SetFieldBackgroundColor(tcell.ColorDefault)
	form.SetFieldTextColor(tcell.ColorWhite)
	form.SetBorder(true)
	form.SetTitle(" " + title + " ")
	form.SetTitleAlign(tview.AlignCenter)
	form.SetBorderColor(border)
	form.SetTitleColor(tcell.ColorOrange)
	form.SetBorderPadding(1, 1, 2, 2)
}

func styleButtons(form *tview.Form, active tcell.Color) {
	for i := 0; i < form.GetButtonCount(); i++ {
		if b := form.GetButton(i); b != nil {
			b.SetBackgroundColor(tcell.ColorDefault)
			b.SetLabelColor(tcell.ColorWhite)
			b.SetBackgroundColorActivated(active)
			b.SetLabelColorActivated(tcell.ColorBlack)
		}
	}
}

// ShowStandardErrorModal shows errorText verbatim with a single OK button.
func ShowStandardErrorModal(pages *tview.Pages, app *tview.Application, title, errorText string, callback func()) {
	if title == "" {
		title = "Error"
	}
	textView := tview.NewTextView()
	textView.SetText(errorText)
	textView.SetTextColor(tcell.ColorWhite)
	textView.SetScrollable(true)
	textView.SetWordWrap(true)
	textView.SetBorder(true)
	textView.SetBorderColor(tcell.ColorRed)
	textView.SetTitle(" " + title + " ")
	textView.SetTitleColor(tcell.ColorRed)
	textView.SetBorderPadding(1, 1, 2, 2)

	form := tview.NewForm()
	form.SetButtonsAlign(tview.AlignCenter)
	form.SetBackgroundColor(tcell.ColorDefault)
	form.AddButton("OK", func() {
		pages.RemovePage(ErrorModalPage)
		if callback != nil {
			callback()
		}
	})
	styleButtons(form, tcell.ColorRed)

	height := len(errorText)/50 + 7
	if height > 15 {
		height = 15
	}
	body := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(textView, 0, 1, false).
		AddItem(form, 3, 0, true)

	RemovePage(pages, app, ErrorModalPage, callback)
	pages.AddPage(ErrorModalPage, Centered(body, 60, height), true, true)
	app.SetFocus(form)
}

// ShowStandardConfirmationModal asks a yes/no question. Esc counts as no.
func ShowStandardConfirmationModal(pages *tview.Pages, app *tview.Application, title, text string, callback func(confirmed bool)) {
	form := tview.NewForm()
	styleForm(form, title, tcell.ColorAqua)
	form.AddTextView("", text, 0, 2, true, false)
	form.AddButton("Yes", func() {
		pages.RemovePage(ConfirmationModalPage)
		if callback != nil {
			callback(true)
		}
	})
	form.AddButton("No", func() {
		pages.RemovePage(ConfirmationModalPage)
		if callback != nil {
			callback(false)
		}
	})
	styleButtons(form, tcell.ColorWhite)

	RemovePage(pages, app, ConfirmationModalPage, func() {
		if callback != nil {
			callback(false)
		}
	})
	pages.AddPage(ConfirmationModalPage, Centered(form, 50, 8), true, true)
	app.SetFocus(form)
}

// ShowInfoModal shows scrollable text.
func ShowInfoModal(pages *tview.Pages, app *tview.Application, title, text string, callback func()) {
	textView := tview.NewTextView()
	textView.SetText(text)
	textView.SetTextColor(tcell.ColorWhite)
	textView.SetDynamicColors(true)
	textView.SetScrollable(true)
	textView.SetWordWrap(true)
	textView.SetBorder(true)
	textView.SetBorderColor(tcell.ColorAqua)
	textView.SetTitle(" " + title + " ")
	textView.SetTitleColor(tcell.ColorOrange)
	textView.SetBorderPadding(1, 1, 2, 2)
	textView.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			pages.RemovePage(InfoModalPage)
			if callback != nil {
				callback()
			}
		}
	})

	RemovePage(pages, app, InfoModalPage, callback)
	pages.AddPage(InfoModalPage, Centered(textView, 76, 26), true, true)
	app.SetFocus(textView)
}

// ShowStandardListSelectorModal lets the user pick one of items, each
// {name, description}. cancelled is true on Esc.
func ShowStandardListSelectorModal(
	pages *tview.Pages,
	app *tview.Application,
	title string,
	items [][]string,
	callback func(index int, name string, cancelled bool),
) {
	list := tview.NewList()
	list.SetHighlightFullLine(true)
	list.SetSelectedBackgroundColor(tcell.ColorAqua)
	list.SetSelectedTextColor(tcell.ColorBlack)
	list.SetBorder(true)
	list.SetBorderColor(tcell.ColorAqua)
	list.SetTitle(" " + title + " ")
	list.SetTitleColor(tcell.ColorOrange)
	list.SetBorderPadding(1, 1, 2, 2)

	for i, item := range items {
		description := ""
		if len(item) > 1 {
			description = item[1]
		}
		shortcut := rune(0)
		if i < 9 {
			shortcut = rune('1' + i)
		}
		list.AddItem(item[0], description, shortcut, nil)
	}
	list.SetSelectedFunc(func(index int, mainText, _ string, _ rune) {
		pages.RemovePage(ListSelectorModalPage)
		if callback != nil {
			callback(index, mainText, false)
		}
	})

	help := tview.NewTextView()
	help.SetText(" Enter: Select  •  Esc: Cancel ")
	help.SetTextAlign(tview.AlignCenter)
	help.SetTextColor(tcell.ColorYellow)

	height := len(items)*2 + 4
	if height > 24 {
		height = 24
	}
	body := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(list, 0, 1, true).
		AddItem(help, 1, 0, false)

	RemovePage(pages, app, ListSelectorModalPage, func() {
		if callback != nil {
			callback(-1, "", true)
		}
	})
	pages.AddPage(ListSelectorModalPage, Centered(body, 60, height+1), true, true)
	app.SetFocus(list)
}

// ShowCompactStyledInputModal asks for one line of text. cancelled is true
// only for Cancel or Esc, so an empty OK is a valid answer.
func ShowCompactStyledInputModal(
	pages *tview.Pages,
	app *tview.Application,
	title, inputLabel, initial string,
	inputFieldWidth int,
	fieldValidator func(textToCheck string, lastChar rune) bool,
	callback func(text string, cancelled bool),
) {
	form := tview.NewForm()
	styleForm(form, title, tcell.ColorAqua)
	form.AddInputField(inputLabel, initial, inputFieldWidth, fieldValidator, nil)
	input := form.GetFormItem(0).(*tview.InputField)

	closeModal := func(value string, cancelled bool) {
		pages.RemovePage(InputModalPage)
		if callback != nil {
			callback(value, cancelled)
		}
	}
	form.AddButton("OK", func() { closeModal(input.GetText(), false) })
	form.AddButton("Cancel", func() { closeModal("", true) })
	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			closeModal(input.GetText(), false)
		case tcell.KeyEscape:
			closeModal("", true)
		}
	})
	styleButtons(form, tcell.ColorAqua)

	pages.AddPage(InputModalPage, Centered(form, 50, 8), true, true)
	app.SetFocus(input)
}
