package api

import (
	"context"
	"io"

	"certa/internal/models"
)

// CertificationBackend adapts Client to the store's backend contract for
// certifications.
type CertificationBackend struct {
	Client *Client
}

func (b CertificationBackend) List(ctx context.Context, f models.CertificationFilter) ([]models.Certification, error) {
	page, err := b.Client.ListCertifications(ctx, f)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (b CertificationBackend) Create(ctx context.Context, in models.CertificationInput) (models.Certification, error) {
	return b.Client.CreateCertification(ctx, in)
}

func (b CertificationBackend) Update(ctx context.Context, id string, in models.CertificationInput) (models.Certification, error) {
	return b.Client.UpdateCertification(ctx, id, in)
}

func (b CertificationBackend) Delete(ctx context.Context, id string) error {
	return b.Client.DeleteCertification(ctx, id)
}

func (b CertificationBackend) Submit(ctx context.Context, id string) (models.Certification, error) {
	return b.Client.SubmitCertification(ctx, id)
}

func (b CertificationBackend) Get(ctx context.Context, id string) (models.Certification, error) {
	return b.Client.GetCertification(ctx, id, true)
}

func (b CertificationBackend) Sessions(ctx context.Context, id string) ([]models.TherapySession, error) {
	return b.Client.ListSessions(ctx, id)
}

func (b CertificationBackend) DownloadPDF(ctx context.Context, id string, w io.Writer) (int64, error) {
	return b.Client.DownloadCertificationPDF(ctx, id, w)
}

// PatientBackend adapts Client to the store's backend contract for patients.
type PatientBackend struct {
	Client *Client
}

func (b PatientBackend) List(ctx context.Context, f models.PatientFilter) ([]models.Patient, error) {
	page, err := b.Client.ListPatients(ctx, f)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (b PatientBackend) Create(ctx context.Context, in models.PatientInput) (models.Patient, error) {
	return b.Client.CreatePatient(ctx, in)
}

func (b PatientBackend) Update(ctx context.Context, id string, in models.PatientInput) (models.Patient, error) {
	return b.Client.UpdatePatient(ctx, id, in)
}

func (b PatientBackend) Delete(ctx context.Context, id string) error {
	return b.Client.DeletePatient(ctx, id)
}
