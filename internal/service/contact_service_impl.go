package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iscbashan/contact/internal/metrics"
	"github.com/iscbashan/contact/internal/model"
	"github.com/iscbashan/contact/internal/repository"
)

// ContactServiceConfig selects the submission variant and bounds each external call.
// A zero timeout leaves the call bounded only by the caller's context.
type ContactServiceConfig struct {
	Kind          model.SubmissionKind
	UploadTimeout time.Duration
	DBTimeout     time.Duration
	EmailTimeout  time.Duration
}

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	cfg      ContactServiceConfig
	repo     repository.ContactRepository
	uploader *ImageUploader
	notifier Notifier
	metrics  *metrics.Metrics
}

// NewContactService creates a ContactService. uploader may be nil for the basic
// variant; notifier and m may be nil.
func NewContactService(
	repo repository.ContactRepository,
	uploader *ImageUploader,
	notifier Notifier,
	m *metrics.Metrics,
	cfg ContactServiceConfig,
) ContactService {
	return &contactServiceImpl{
		cfg:      cfg,
		repo:     repo,
		uploader: uploader,
		notifier: notifier,
		metrics:  m,
	}
}

// Submit runs validate → sanitize → [upload image] → persist → notify.
func (s *contactServiceImpl) Submit(ctx context.Context, in *model.ContactSubmission) (*model.ContactMessage, error) {
	if err := ValidateSubmission(s.cfg.Kind, in); err != nil {
		s.metrics.Submission(metrics.OutcomeRejectedInvalid)
		return nil, err
	}

	msg := SanitizeSubmission(in)

	var imageKey string
	if s.cfg.Kind.RequiresImage() {
		url, key, err := s.uploadImage(ctx, in.IdentityImageBase64)
		if err != nil {
			s.metrics.Submission(metrics.OutcomeUploadFailed)
			return nil, err
		}
		msg.IdentityImageURL = url
		imageKey = key
	}

	if err := s.persist(ctx, &msg); err != nil {
		s.metrics.Submission(metrics.OutcomePersistFailed)
		if imageKey != "" {
			s.discardImage(ctx, imageKey)
		}
		return nil, err
	}
	slog.Info("contact message saved", "contact_id", msg.ID, "variant", s.cfg.Kind.String())

	s.notify(ctx, &msg)

	s.metrics.Submission(metrics.OutcomeAccepted)
	return &msg, nil
}

func (s *contactServiceImpl) uploadImage(ctx context.Context, encoded string) (string, string, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()

	start := time.Now()
	defer s.metrics.ObserveStage(metrics.StageUpload, start)
	return s.uploader.Upload(ctx, encoded)
}

func (s *contactServiceImpl) persist(ctx context.Context, msg *model.ContactMessage) error {
	ctx, cancel := withTimeout(ctx, s.cfg.DBTimeout)
	defer cancel()

	start := time.Now()
	defer s.metrics.ObserveStage(metrics.StagePersist, start)
	if err := s.repo.Save(ctx, msg); err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

// notify runs detached from request cancellation: the message is already stored.
func (s *contactServiceImpl) notify(ctx context.Context, msg *model.ContactMessage) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := withTimeout(context.WithoutCancel(ctx), s.cfg.EmailTimeout)
	defer cancel()
	s.notifier.Notify(ctx, msg)
}

// discardImage removes an uploaded image whose record could not be stored.
func (s *contactServiceImpl) discardImage(ctx context.Context, key string) {
	ctx, cancel := withTimeout(context.WithoutCancel(ctx), s.cfg.UploadTimeout)
	defer cancel()
	if err := s.uploader.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete orphaned identity image", "key", key, "error", err)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
