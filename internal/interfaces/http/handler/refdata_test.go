package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	formsapp "github.com/formhub/backend/internal/application/forms"
	"github.com/formhub/backend/internal/domain/forms"
	"github.com/formhub/backend/internal/domain/shared"
)

func newReferenceDataRouter(gateway forms.ReferenceDataGateway) *gin.Engine {
	h := NewReferenceDataHandler(formsapp.NewReferenceDataService(gateway))
	r := gin.New()
	r.GET("/reference-data", h.Get)
	return r
}

func TestReferenceDataBoth(t *testing.T) {
	r := newReferenceDataRouter(&stubGateway{
		employees: []forms.Employee{{Name: "Jane Doe"}},
		stores:    []forms.Store{{Name: "Store A", Location: "Jakarta"}},
	})

	w := performJSON(t, r, http.MethodGet, "/reference-data", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Jane Doe")
	assert.Contains(t, w.Body.String(), "Store A")
}

func TestReferenceDataEmployeesOnly(t *testing.T) {
	r := newReferenceDataRouter(&stubGateway{
		employees: []forms.Employee{{Name: "Jane Doe"}},
		stores:    []forms.Store{{Name: "Store A"}},
	})

	w := performJSON(t, r, http.MethodGet, "/reference-data?type=employees", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Jane Doe")
	assert.NotContains(t, w.Body.String(), "Store A")
}

func TestReferenceDataInvalidType(t *testing.T) {
	r := newReferenceDataRouter(&stubGateway{})

	w := performJSON(t, r, http.MethodGet, "/reference-data?type=products", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReferenceDataMissingTab(t *testing.T) {
	r := newReferenceDataRouter(&stubGateway{
		err: shared.NewDomainError("SHEET_NOT_FOUND", "Sheet tab not found"),
	})

	w := performJSON(t, r, http.MethodGet, "/reference-data", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "SHEET_NOT_FOUND")
}

func TestReferenceDataUnconfigured(t *testing.T) {
	r := newReferenceDataRouter(nil)

	w := performJSON(t, r, http.MethodGet, "/reference-data", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "CONFIGURATION_ERROR")
}
