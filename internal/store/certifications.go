package store

import (
	"context"
	"io"

	"certa/internal/models"

	"golang.org/x/sync/errgroup"
)

// CertificationBackend is the remote side of a CertificationStore.
type CertificationBackend interface {
	Backend[models.Certification, models.CertificationFilter, models.CertificationInput]
	Get(ctx context.Context, id string) (models.Certification, error)
	Sessions(ctx context.Context, id string) ([]models.TherapySession, error)
	Submit(ctx context.Context, id string) (models.Certification, error)
	DownloadPDF(ctx context.Context, id string, w io.Writer) (int64, error)
}

// CertificationStore is the shared certification list plus the
// certification-only operations.
type CertificationStore struct {
	*Store[models.Certification, models.CertificationFilter, models.CertificationInput]
	backend CertificationBackend
}

// NewCertificationStore returns an empty store over backend.
func NewCertificationStore(backend CertificationBackend) *CertificationStore {
	return &CertificationStore{
		Store:   New[models.Certification, models.CertificationFilter, models.CertificationInput]("certifications", backend),
		backend: backend,
	}
}

// Submit submits the certification and replaces it in place.
func (s *CertificationStore) Submit(ctx context.Context, id string) (models.Certification, error) {
	cert, err := s.backend.Submit(ctx, id)
	if err != nil {
		return models.Certification{}, err
	}
	s.apply(id, cert)
	return cert, nil
}

// Detail fetches one certification with its schedules and its sessions.
// The two requests run concurrently; the dedicated sessions listing wins
// over whatever the record embedded. The shared list is not touched.
func (s *CertificationStore) Detail(ctx context.Context, id string) (models.Certification, error) {
	var (
		cert     models.Certification
		sessions []models.TherapySession
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cert, err = s.backend.Get(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = s.backend.Sessions(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Certification{}, err
	}

	if sessions != nil {
		cert.Sessions = sessions
	}
	return cert, nil
}

// DownloadPDF streams the rendered certification into w.
func (s *CertificationStore) DownloadPDF(ctx context.Context, id string, w io.Writer) (int64, error) {
	return s.backend.DownloadPDF(ctx, id, w)
}

// PatientStore is the shared patient list.
type PatientStore = Store[models.Patient, models.PatientFilter, models.PatientInput]

// NewPatientStore returns an empty store over backend.
func NewPatientStore(backend Backend[models.Patient, models.PatientFilter, models.PatientInput]) *PatientStore {
	return New[models.Patient, models.PatientFilter, models.PatientInput]("patients", backend)
}
