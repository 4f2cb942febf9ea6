// Package navigator tracks which sub-view of a certification is on screen
// and the history needed to step back one view at a time.
package navigator

import "fmt"

// Kind is the discriminant of a ViewState.
type Kind int

const (
	KindCertification Kind = iota
	KindSessionsList
	KindSessionDetails
	KindAddSession
	KindEditSession
	KindCertificationEdit
)

// Kinds lists every discriminant in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindCertification,
		KindSessionsList,
		KindSessionDetails,
		KindAddSession,
		KindEditSession,
		KindCertificationEdit,
	}
}

func (k Kind) String() string {
	switch k {
	case KindCertification:
		return "certification"
	case KindSessionsList:
		return "sessions-list"
	case KindSessionDetails:
		return "session-details"
	case KindAddSession:
		return "add-session"
	case KindEditSession:
		return "edit-session"
	case KindCertificationEdit:
		return "certification-edit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ViewState describes the active sub-view. The zero value is not valid;
// build one with the constructors below so that session-scoped kinds always
// carry a session id.
type ViewState struct {
	kind            Kind
	certificationID string
	sessionID       string
}

// Certification is the root details view.
func Certification(certificationID string) ViewState {
	return ViewState{kind: KindCertification, certificationID: certificationID}
}

// SessionsList lists the certification's sessions.
func SessionsList(certificationID string) ViewState {
	return ViewState{kind: KindSessionsList, certificationID: certificationID}
}

// SessionDetails shows one session.
func SessionDetails(certificationID, sessionID string) ViewState {
	return ViewState{kind: KindSessionDetails, certificationID: certificationID, sessionID: sessionID}
}

// AddSession is the new-session form.
func AddSession(certificationID string) ViewState {
	return ViewState{kind: KindAddSession, certificationID: certificationID}
}

// EditSession is the edit form for one session.
func EditSession(certificationID, sessionID string) ViewState {
	return ViewState{kind: KindEditSession, certificationID: certificationID, sessionID: sessionID}
}

// CertificationEdit is the certification form.
func CertificationEdit(certificationID string) ViewState {
	return ViewState{kind: KindCertificationEdit, certificationID: certificationID}
}

func (v ViewState) Kind() Kind              { return v.kind }
func (v ViewState) CertificationID() string { return v.certificationID }

// SessionID is empty for kinds that are not about one session.
func (v ViewState) SessionID() string { return v.sessionID }

// Label is the breadcrumb text.
func (v ViewState) Label() string {
	switch v.kind {
	case KindCertification:
		return "Details"
	case KindSessionsList:
		return "Sessions"
	case KindSessionDetails:
		return "Session"
	case KindAddSession:
		return "Add Session"
	case KindEditSession:
		return "Edit Session"
	case KindCertificationEdit:
		return "Edit Certification"
	default:
		return v.kind.String()
	}
}

func (v ViewState) String() string {
	if v.sessionID != "" {
		return fmt.Sprintf("%s{certification=%s session=%s}", v.kind, v.certificationID, v.sessionID)
	}
	return fmt.Sprintf("%s{certification=%s}", v.kind, v.certificationID)
}
