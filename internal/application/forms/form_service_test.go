package forms

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formhub/backend/internal/domain/forms"
	"github.com/formhub/backend/internal/domain/identity"
	"github.com/formhub/backend/internal/domain/shared"
)

func simpleSchema() forms.Schema {
	return forms.Schema{Fields: []forms.FieldDefinition{
		{ID: "notes", Type: forms.FieldTypeTextarea, Label: "Notes"},
	}}
}

func TestFormServiceCreate(t *testing.T) {
	repo := newMockFormRepository()
	svc := NewFormService(repo)
	owner := Caller{UserID: uuid.New(), Role: identity.RoleUser}

	t.Run("creates a form with a sheet destination", func(t *testing.T) {
		resp, err := svc.Create(context.Background(), owner, CreateFormRequest{
			Title:     "Store Audit",
			Schema:    simpleSchema(),
			SheetName: "Audits",
		})
		require.NoError(t, err)
		assert.Equal(t, "Store Audit", resp.Title)
		assert.Equal(t, "Audits", resp.SheetName)
		assert.True(t, resp.IsActive)
		assert.Equal(t, owner.UserID, resp.OwnerID)
	})

	t.Run("rejects an invalid schema", func(t *testing.T) {
		_, err := svc.Create(context.Background(), owner, CreateFormRequest{
			Title: "Broken",
			Schema: forms.Schema{Fields: []forms.FieldDefinition{
				{ID: "x", Type: "teleport", Label: "X"},
			}},
		})
		assert.Error(t, err)
	})
}

func TestFormServiceUpdate(t *testing.T) {
	ownerID := uuid.New()
	owner := Caller{UserID: ownerID, Role: identity.RoleUser}
	admin := Caller{UserID: uuid.New(), Role: identity.RoleAdmin}
	stranger := Caller{UserID: uuid.New(), Role: identity.RoleUser}

	newFormFor := func(t *testing.T) (*FormService, *FormResponse) {
		repo := newMockFormRepository()
		svc := NewFormService(repo)
		resp, err := svc.Create(context.Background(), owner, CreateFormRequest{Title: "Audit", Schema: simpleSchema()})
		require.NoError(t, err)
		return svc, resp
	}

	t.Run("owner updates title and active flag", func(t *testing.T) {
		svc, created := newFormFor(t)
		title := "Renamed"
		inactive := false
		updated, err := svc.Update(context.Background(), created.ID, owner, UpdateFormRequest{
			Title:    &title,
			IsActive: &inactive,
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.False(t, updated.IsActive)
	})

	t.Run("admin can update someone else's form", func(t *testing.T) {
		svc, created := newFormFor(t)
		title := "Admin Touch"
		_, err := svc.Update(context.Background(), created.ID, admin, UpdateFormRequest{Title: &title})
		assert.NoError(t, err)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		svc, created := newFormFor(t)
		title := "Nope"
		_, err := svc.Update(context.Background(), created.ID, stranger, UpdateFormRequest{Title: &title})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("unknown form", func(t *testing.T) {
		svc, _ := newFormFor(t)
		title := "Ghost"
		_, err := svc.Update(context.Background(), uuid.New(), owner, UpdateFormRequest{Title: &title})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestFormServiceDelete(t *testing.T) {
	ownerID := uuid.New()
	owner := Caller{UserID: ownerID, Role: identity.RoleUser}
	stranger := Caller{UserID: uuid.New(), Role: identity.RoleUser}

	repo := newMockFormRepository()
	svc := NewFormService(repo)
	created, err := svc.Create(context.Background(), owner, CreateFormRequest{Title: "Doomed", Schema: simpleSchema()})
	require.NoError(t, err)

	t.Run("stranger cannot delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(context.Background(), created.ID, stranger), shared.ErrForbidden)
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, svc.Delete(context.Background(), created.ID, owner))
		_, err := svc.GetByID(context.Background(), created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestFormServiceList(t *testing.T) {
	ownerID := uuid.New()
	owner := Caller{UserID: ownerID, Role: identity.RoleUser}

	repo := newMockFormRepository()
	svc := NewFormService(repo)
	_, err := svc.Create(context.Background(), owner, CreateFormRequest{Title: "Mine", Schema: simpleSchema()})
	require.NoError(t, err)

	out, total, err := svc.List(context.Background(), owner, FormListFilter{})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, int64(1), total)
}
