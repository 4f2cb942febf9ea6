package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"certa/pkg/appapi"
)

// ErrorLevel orders error severities.
type ErrorLevel int

const (
	ErrorLevelInfo ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelError
	ErrorLevelFatal
)

func (l ErrorLevel) String() string {
	switch l {
	case ErrorLevelInfo:
		return "INFO"
	case ErrorLevelWarning:
		return "WARN"
	case ErrorLevelError:
		return "ERROR"
	case ErrorLevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ErrorHandler routes an error to the view log, the log file and, for
// errors and above, the error modal.
type ErrorHandler struct {
	app     *tview.Application
	pages   *tview.Pages
	logFunc func(message string)
	message func(err error) string
}

// NewErrorHandler builds a handler. message extracts the user-facing text
// from an error; nil uses err.Error().
func NewErrorHandler(app *tview.Application, pages *tview.Pages, logFunc func(string), message func(error) string) *ErrorHandler {
	if message == nil {
		message = func(err error) string { return err.Error() }
	}
	return &ErrorHandler{app: app, pages: pages, logFunc: logFunc, message: message}
}

// HandleError reports err at level. Non-fatal modals close themselves after
// five seconds.
func (h *ErrorHandler) HandleError(err error, level ErrorLevel, title string) {
	if err == nil {
		return
	}
	text := h.message(err)

	if h.logFunc != nil {
		switch level {
		case ErrorLevelInfo:
			h.logFunc(fmt.Sprintf("[blue]INFO[white] %s", tview.Escape(text)))
		case ErrorLevelWarning:
			h.logFunc(fmt.Sprintf("[yellow]WARN[white] %s", tview.Escape(text)))
		case ErrorLevelError:
			h.logFunc(fmt.Sprintf("[red]ERROR[white] %s", tview.Escape(text)))
		case ErrorLevelFatal:
			h.logFunc(fmt.Sprintf("[red::b]FATAL[white::-] %s", tview.Escape(text)))
		}
	}
	if level >= ErrorLevelError {
		appapi.Log().Error("%s: %v", level, err)
	} else {
		appapi.Log().Warn("%s: %v", level, err)
	}

	if level < ErrorLevelError || h.pages == nil {
		return
	}
	ShowStandardErrorModal(h.pages, h.app, title, text, nil)
	if level < ErrorLevelFatal {
		time.AfterFunc(5*time.Second, func() {
			h.app.QueueUpdateDraw(func() {
				if h.pages.HasPage(ErrorModalPage) {
					h.pages.RemovePage(ErrorModalPage)
				}
			})
		})
	}
}
