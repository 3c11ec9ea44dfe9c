package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formhub/backend/internal/domain/forms"
	"github.com/formhub/backend/internal/domain/identity"
	"github.com/formhub/backend/internal/domain/shared"
)

// SheetAppender writes one row to a named tab, creating the tab with the
// given header when it does not exist yet.
type SheetAppender interface {
	AppendRow(ctx context.Context, sheetName string, header []string, row []interface{}) (string, error)
}

// Caller identifies the authenticated principal a request runs as
type Caller struct {
	UserID uuid.UUID
	Role   identity.Role
}

// IsAdmin reports whether the caller holds the admin role
func (c Caller) IsAdmin() bool {
	return c.Role == identity.RoleAdmin
}

// SubmissionService runs the submission pipeline: load form, validate the
// record against its schema, normalize constrained fields, append to the
// sheet destination when one is configured, and persist the row.
type SubmissionService struct {
	formRepo       forms.FormRepository
	submissionRepo forms.SubmissionRepository
	normalizer     *Normalizer
	appender       SheetAppender
	rows           *RowBuilder
	timeout        time.Duration
	logger         *zap.Logger
}

// NewSubmissionService creates a SubmissionService. The appender may be nil
// when no spreadsheet backend is configured; forms with a sheet destination
// then fail with a configuration error.
func NewSubmissionService(
	formRepo forms.FormRepository,
	submissionRepo forms.SubmissionRepository,
	normalizer *Normalizer,
	appender SheetAppender,
	rows *RowBuilder,
	timeout time.Duration,
	logger *zap.Logger,
) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		formRepo:       formRepo,
		submissionRepo: submissionRepo,
		normalizer:     normalizer,
		appender:       appender,
		rows:           rows,
		timeout:        timeout,
		logger:         logger,
	}
}

// Submit processes one submission under the configured deadline. The deadline
// cancels in-flight upstream calls so a timed-out submission cannot land in
// the sheet after the client has been told it failed.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest, submitterID *uuid.UUID) (*SubmitResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.submit(ctx, req, submitterID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("Submission timed out",
				zap.String("form_id", req.FormID.String()),
				zap.Duration("timeout", s.timeout))
			return nil, ErrSubmissionTimeout
		}
		return nil, err
	}
	return resp, nil
}

func (s *SubmissionService) submit(ctx context.Context, req SubmitRequest, submitterID *uuid.UUID) (*SubmitResponse, error) {
	form, err := s.formRepo.FindByID(ctx, req.FormID)
	if err != nil {
		return nil, err
	}
	if !form.IsActive {
		return nil, ErrFormInactive
	}

	schema, err := form.ParseSchema()
	if err != nil {
		// A stored schema that no longer parses is an operator problem,
		// not a submitter problem.
		s.logger.Error("Stored form schema is unreadable",
			zap.String("form_id", form.ID.String()),
			zap.Error(err))
		return nil, shared.ErrConfiguration
	}
	if fieldErrs := schema.ValidateRecord(req.Data); len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	data, err := s.normalizer.Normalize(ctx, req.Data)
	if err != nil {
		return nil, err
	}

	reference := NewReference(time.Now())
	submission, err := forms.NewSubmission(form.ID, reference, data, toDomainFiles(req.Files), submitterID)
	if err != nil {
		return nil, err
	}

	if form.HasSheetDestination() {
		if s.appender == nil || s.rows == nil {
			return nil, shared.ErrConfiguration
		}
		row := s.rows.AuditRow(form, data, time.Now())
		writtenRange, err := s.appender.AppendRow(ctx, form.SheetName, AuditRowHeader, row)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			s.logger.Error("Sheet append failed",
				zap.String("form_id", form.ID.String()),
				zap.String("sheet", form.SheetName),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %v", shared.ErrUpstream, err)
		}
		submission.SetSheetsRange(writtenRange)
	}

	if err := s.submissionRepo.Save(ctx, submission); err != nil {
		return nil, err
	}

	s.logger.Info("Submission recorded",
		zap.String("form_id", form.ID.String()),
		zap.String("reference", reference),
		zap.Bool("sheet_written", submission.SheetsRange != ""))

	return &SubmitResponse{
		ID:          reference,
		Message:     "Submission received",
		SubmittedAt: submission.CreatedAt,
		SheetsRange: submission.SheetsRange,
	}, nil
}

// ListByForm returns the submissions of a form visible to the caller: all of
// them for the form's owner and for admins, otherwise only the caller's own.
func (s *SubmissionService) ListByForm(ctx context.Context, formID uuid.UUID, caller Caller, filter SubmissionListFilter) ([]SubmissionResponse, error) {
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, err
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.Page == 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize == 0 {
		domainFilter.PageSize = 20
	}
	if !caller.IsAdmin() && !form.IsOwnedBy(caller.UserID) {
		domainFilter.Filters["submitter_id"] = caller.UserID
	}

	submissions, err := s.submissionRepo.FindByForm(ctx, formID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		resp, err := ToSubmissionResponse(&submissions[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// NewReference builds the public submission identifier: a UTC time component
// plus a random suffix. It is opaque and deliberately not the row id of any
// sink.
func NewReference(now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return now.UTC().Format("20060102T150405") + "-" + suffix
}
