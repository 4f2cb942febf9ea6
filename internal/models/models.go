// Package models holds the records exchanged with the certification backend.
package models

import (
	"fmt"
	"strings"
	"time"
)

// CertificationStatus is the lifecycle state of a certification document.
type CertificationStatus string

const (
	StatusDraft     CertificationStatus = "draft"
	StatusSubmitted CertificationStatus = "submitted"
	StatusApproved  CertificationStatus = "approved"
	StatusRejected  CertificationStatus = "rejected"
)

// SessionStatus is the state of a single therapy visit.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
	SessionMissed    SessionStatus = "missed"
)

// SessionStatuses lists the values offered by the session forms.
var SessionStatuses = []SessionStatus{SessionScheduled, SessionCompleted, SessionCancelled, SessionMissed}

// Patient is a person receiving therapy.
type Patient struct {
	ID                  string    `json:"id"`
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	DateOfBirth         string    `json:"dateOfBirth,omitempty"`
	MedicalRecordNumber string    `json:"medicalRecordNumber,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	Email               string    `json:"email,omitempty"`
	Address             string    `json:"address,omitempty"`
	Diagnosis           string    `json:"diagnosis,omitempty"`
	Active              bool      `json:"active"`
	CreatedAt           time.Time `json:"createdAt,omitempty"`
	UpdatedAt           time.Time `json:"updatedAt,omitempty"`
}

func (p Patient) RecordID() string { return p.ID }

// FullName returns "First Last".
func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PatientInput is the create/update payload for a patient.
type PatientInput struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	DateOfBirth         string `json:"dateOfBirth,omitempty"`
	MedicalRecordNumber string `json:"medicalRecordNumber,omitempty"`
	Phone               string `json:"phone,omitempty"`
	Email               string `json:"email,omitempty"`
	Address             string `json:"address,omitempty"`
	Diagnosis           string `json:"diagnosis,omitempty"`
	Active              bool   `json:"active"`
}

// InputFromPatient pre-fills an edit form.
func InputFromPatient(p Patient) PatientInput {
	return PatientInput{
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		DateOfBirth:         p.DateOfBirth,
		MedicalRecordNumber: p.MedicalRecordNumber,
		Phone:               p.Phone,
		Email:               p.Email,
		Address:             p.Address,
		Diagnosis:           p.Diagnosis,
		Active:              p.Active,
	}
}

// PatientFilter narrows GET /patients.
type PatientFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}

// TherapySchedule is a recurring weekly slot attached to a certification.
type TherapySchedule struct {
	ID              string       `json:"id,omitempty"`
	CertificationID string       `json:"certificationId,omitempty"`
	Weekday         time.Weekday `json:"weekday"`
	StartTime       string       `json:"startTime"` // HH:MM
	DurationMinutes int          `json:"durationMinutes"`
	// RRule optionally overrides the default weekly rule, RFC 5545 syntax
	// without DTSTART (e.g. "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO").
	RRule string `json:"rrule,omitempty"`
}

// Label renders "Monday 09:00 (45m)".
func (s TherapySchedule) Label() string {
	return fmt.Sprintf("%s %s (%dm)", s.Weekday, s.StartTime, s.DurationMinutes)
}

// TherapySession is one recorded (or planned) visit.
type TherapySession struct {
	ID              string        `json:"id"`
	CertificationID string        `json:"certificationId"`
	ScheduleID      string        `json:"scheduleId,omitempty"`
	Date            string        `json:"date"`      // YYYY-MM-DD
	StartTime       string        `json:"startTime"` // HH:MM
	EndTime         string        `json:"endTime"`   // HH:MM
	Status          SessionStatus `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	// Signature is a PNG image; encoding/json carries it as base64.
	Signature  []byte    `json:"signature,omitempty"`
	SignerName string    `json:"signerName,omitempty"`
	SignedAt   time.Time `json:"signedAt,omitempty"`
}

func (s TherapySession) RecordID() string { return s.ID }

// Signed reports whether a signature was captured for the visit.
func (s TherapySession) Signed() bool { return len(s.Signature) > 0 }

// SessionInput is the create/update payload for a session.
type SessionInput struct {
	ScheduleID string        `json:"scheduleId,omitempty"`
	Date       string        `json:"date"`
	StartTime  string        `json:"startTime"`
	EndTime    string        `json:"endTime"`
	Status     SessionStatus `json:"status"`
	Notes      string        `json:"notes,omitempty"`
	Signature  []byte        `json:"signature,omitempty"`
	SignerName string        `json:"signerName,omitempty"`
}

// InputFromSession pre-fills the edit-session form.
func InputFromSession(s TherapySession) SessionInput {
	return SessionInput{
		ScheduleID: s.ScheduleID,
		Date:       s.Date,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		Status:     s.Status,
		Notes:      s.Notes,
		Signature:  s.Signature,
		SignerName: s.SignerName,
	}
}

// PatientSummary is the patient as embedded in a certification.
type PatientSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Certification is a month of therapy for one patient.
type Certification struct {
	ID            string              `json:"id"`
	PatientID     string              `json:"patientId"`
	Patient       *PatientSummary     `json:"patient,omitempty"`
	TherapistID   string              `json:"therapistId,omitempty"`
	TherapistName string              `json:"therapistName,omitempty"`
	Month         int                 `json:"month"`
	Year          int                 `json:"year"`
	Status        CertificationStatus `json:"status"`
	TherapyType   string              `json:"therapyType,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	SubmittedAt   *time.Time          `json:"submittedAt,omitempty"`
	Schedules     []TherapySchedule   `json:"schedules,omitempty"`
	Sessions      []TherapySession    `json:"sessions,omitempty"`
	CreatedAt     time.Time           `json:"createdAt,omitempty"`
	UpdatedAt     time.Time           `json:"updatedAt,omitempty"`
}

func (c Certification) RecordID() string { return c.ID }

// PatientName returns the embedded patient's name, or the id when the
// backend did not expand it.
func (c Certification) PatientName() string {
	if c.Patient != nil {
		return strings.TrimSpace(c.Patient.FirstName + " " + c.Patient.LastName)
	}
	return c.PatientID
}

// Period renders "2026-03".
func (c Certification) Period() string {
	return fmt.Sprintf("%04d-%02d", c.Year, c.Month)
}

// Editable reports whether the certification can still be changed.
func (c Certification) Editable() bool {
	return c.Status == StatusDraft || c.Status == StatusRejected || c.Status == ""
}

// Session returns the session with id, if present.
func (c Certification) Session(id string) (TherapySession, bool) {
	for _, s := range c.Sessions {
		if s.ID == id {
			return s, true
		}
	}
	return TherapySession{}, false
}

// CertificationInput is the create/update payload for a certification.
type CertificationInput struct {
	PatientID   string            `json:"patientId"`
	TherapistID string            `json:"therapistId,omitempty"`
	Month       int               `json:"month"`
	Year        int               `json:"year"`
	TherapyType string            `json:"therapyType,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Schedules   []TherapySchedule `json:"schedules,omitempty"`
}

// InputFromCertification pre-fills the certification-edit form.
func InputFromCertification(c Certification) CertificationInput {
	schedules := make([]TherapySchedule, len(c.Schedules))
	copy(schedules, c.Schedules)
	return CertificationInput{
		PatientID:   c.PatientID,
		TherapistID: c.TherapistID,
		Month:       c.Month,
		Year:        c.Year,
		TherapyType: c.TherapyType,
		Notes:       c.Notes,
		Schedules:   schedules,
	}
}

// CertificationFilter narrows GET /certifications.
type CertificationFilter struct {
	PatientID   string
	TherapistID string
	Month       int
	Year        int
	Status      CertificationStatus
	Search      string
	DateFrom    string
	DateTo      string
	Page        int
	PageSize    int
	Sort        string
}

// Page is a paginated list response.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}
