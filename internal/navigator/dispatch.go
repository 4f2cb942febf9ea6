package navigator

import (
	"errors"
	"fmt"
)

// ErrUnknownView is returned by Dispatch for a kind outside Kinds().
var ErrUnknownView = errors.New("navigator: unknown view")

// Renderer builds the content block for each kind. R is whatever the UI
// toolkit renders (a tview.Primitive in the terminal client).
type Renderer[R any] interface {
	CertificationDetails(certificationID string) R
	SessionsList(certificationID string) R
	SessionDetails(certificationID, sessionID string) R
	AddSession(certificationID string) R
	EditSession(certificationID, sessionID string) R
	CertificationEdit(certificationID string) R
}

// StatusRenderer adds the loading and error blocks that take priority over
// any view.
type StatusRenderer[R any] interface {
	Renderer[R]
	Loading() R
	Failed(err error) R
}

// Dispatch calls exactly one Renderer method, chosen by state's kind.
func Dispatch[R any](state ViewState, r Renderer[R]) (R, error) {
	switch state.kind {
	case KindCertification:
		return r.CertificationDetails(state.certificationID), nil
	case KindSessionsList:
		return r.SessionsList(state.certificationID), nil
	case KindSessionDetails:
		return r.SessionDetails(state.certificationID, state.sessionID), nil
	case KindAddSession:
		return r.AddSession(state.certificationID), nil
	case KindEditSession:
		return r.EditSession(state.certificationID, state.sessionID), nil
	case KindCertificationEdit:
		return r.CertificationEdit(state.certificationID), nil
	}
	var zero R
	return zero, fmt.Errorf("%w: %s", ErrUnknownView, state.kind)
}

// Resolve renders the loading block while loading, the error block when
// loadErr is set, and otherwise dispatches state.
func Resolve[R any](loading bool, loadErr error, state ViewState, r StatusRenderer[R]) R {
	if loading {
		return r.Loading()
	}
	if loadErr != nil {
		return r.Failed(loadErr)
	}
	out, err := Dispatch[R](state, r)
	if err != nil {
		return r.Failed(err)
	}
	return out
}
