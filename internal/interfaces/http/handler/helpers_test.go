package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	formsapp "github.com/formhub/backend/internal/application/forms"
	"github.com/formhub/backend/internal/domain/forms"
	"github.com/formhub/backend/internal/domain/shared"
	"github.com/formhub/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser injects an authenticated identity the way the JWT middleware would
func asUser(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID.String())
		c.Set(middleware.ContextKeyRole, role)
		c.Next()
	}
}

func performJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// MockFormRepository implements forms.FormRepository for testing
type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) FindByID(ctx context.Context, id uuid.UUID) (*forms.Form, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forms.Form), args.Error(1)
}

func (m *MockFormRepository) FindAll(ctx context.Context, filter shared.Filter) ([]forms.Form, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forms.Form), args.Error(1)
}

func (m *MockFormRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]forms.Form, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forms.Form), args.Error(1)
}

func (m *MockFormRepository) Save(ctx context.Context, form *forms.Form) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *MockFormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFormRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockSubmissionRepository implements forms.SubmissionRepository for testing
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*forms.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forms.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) FindByReference(ctx context.Context, reference string) (*forms.Submission, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forms.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) FindByForm(ctx context.Context, formID uuid.UUID, filter shared.Filter) ([]forms.Submission, error) {
	args := m.Called(ctx, formID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forms.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Save(ctx context.Context, submission *forms.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubmissionRepository) CountByForm(ctx context.Context, formID uuid.UUID) (int64, error) {
	args := m.Called(ctx, formID)
	return args.Get(0).(int64), args.Error(1)
}

// stubGateway serves fixed allow-lists
type stubGateway struct {
	employees []forms.Employee
	stores    []forms.Store
	err       error
}

func (g *stubGateway) Employees(ctx context.Context) ([]forms.Employee, error) {
	return g.employees, g.err
}

func (g *stubGateway) Stores(ctx context.Context) ([]forms.Store, error) {
	return g.stores, g.err
}

// stubAppender records appended rows; an optional delay simulates a slow
// spreadsheet backend and honors context cancellation.
type stubAppender struct {
	appendRange string
	err         error
	delay       time.Duration
	calls       int
}

func (a *stubAppender) AppendRow(ctx context.Context, sheetName string, header []string, row []interface{}) (string, error) {
	a.calls++
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if a.err != nil {
		return "", a.err
	}
	return a.appendRange, nil
}

func auditSchema() forms.Schema {
	return forms.Schema{
		Fields: []forms.FieldDefinition{
			{ID: "employee_name", Type: forms.FieldTypeText, Label: "Employee Name", Required: true},
			{ID: "store_location", Type: forms.FieldTypeText, Label: "Store Location", Required: true},
			{ID: "notes", Type: forms.FieldTypeTextarea, Label: "Notes"},
		},
	}
}

func newAuditForm(t *testing.T, ownerID uuid.UUID) *forms.Form {
	t.Helper()
	form, err := forms.NewForm("Store Audit", "Daily store audit", auditSchema(), ownerID)
	require.NoError(t, err)
	form.SetSheetDestination("Audit Log")
	return form
}

func newSubmissionService(formRepo forms.FormRepository, submissionRepo forms.SubmissionRepository, appender formsapp.SheetAppender, timeout time.Duration) *formsapp.SubmissionService {
	gateway := &stubGateway{
		employees: []forms.Employee{{Name: "Jane Doe"}},
		stores:    []forms.Store{{Name: "Store A", Location: "Jakarta"}},
	}
	rows, _ := formsapp.NewRowBuilder("UTC")
	return formsapp.NewSubmissionService(
		formRepo,
		submissionRepo,
		formsapp.NewNormalizer(gateway, 200),
		appender,
		rows,
		timeout,
		nil,
	)
}
