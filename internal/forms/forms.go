// Package forms validates user input before it reaches the backend and
// decides where an error message belongs on screen.
package forms

import (
	"errors"
	"strings"

	"certa/internal/api"
	"certa/internal/schedule"
)

// Field names used as error slots by the form views.
const (
	FieldPatient   = "patient"
	FieldMonth     = "month"
	FieldYear      = "year"
	FieldSchedules = "schedules"
	FieldDate      = "date"
	FieldStartTime = "startTime"
	FieldEndTime   = "endTime"
	FieldStatus    = "status"
	FieldSignature = "signature"
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
)

// ValidationError is a client-side rejection of one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors collects every failing field of one form.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	out := make([]error, len(v))
	for i, e := range v {
		out[i] = e
	}
	return out
}

// errs accumulates validation failures in field order.
type errs struct {
	list ValidationErrors
}

func (e *errs) add(field, msg string) {
	e.list = append(e.list, &ValidationError{Field: field, Message: msg})
}

func (e *errs) err() error {
	if len(e.list) == 0 {
		return nil
	}
	return e.list
}

// FieldErrors is the routed form of an error: per-field messages plus a
// general banner.
type FieldErrors struct {
	Fields  map[string]string
	General string
}

// Empty reports whether there is nothing to show.
func (f FieldErrors) Empty() bool {
	return len(f.Fields) == 0 && f.General == ""
}

// Get returns the message for field, or "".
func (f FieldErrors) Get(field string) string {
	return f.Fields[field]
}

func (f *FieldErrors) set(field, msg string) {
	if field == "" {
		f.General = msg
		return
	}
	if f.Fields == nil {
		f.Fields = map[string]string{}
	}
	if _, taken := f.Fields[field]; !taken {
		f.Fields[field] = msg
	}
}

// Route places err in the slot the form shows it in. Validation failures
// go to their field, schedule conflicts (local or from the backend) go to
// the schedules slot, and everything else becomes the general banner.
// Messages are never rewritten.
func Route(err error) FieldErrors {
	var out FieldErrors
	if err == nil {
		return out
	}

	var many ValidationErrors
	if errors.As(err, &many) {
		for _, v := range many {
			out.set(v.Field, v.Message)
		}
		return out
	}
	var one *ValidationError
	if errors.As(err, &one) {
		out.set(one.Field, one.Message)
		return out
	}

	msg := api.Message(err)
	if schedule.IsConflictMessage(msg) {
		out.set(FieldSchedules, msg)
		return out
	}
	out.General = msg
	return out
}
