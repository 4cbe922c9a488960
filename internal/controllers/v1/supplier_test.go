package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/orcamento-aberto/backend/internal/controllers/v1"
	"github.com/orcamento-aberto/backend/internal/models"
	"github.com/orcamento-aberto/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestSuppliersCreate() {
	supplier := createTestSupplier(suite.T(), v1.SupplierEditable{Name: "  Fundação São João  "})

	// The name is trimmed and the normalized name folds case and accents
	assert.Equal(suite.T(), "Fundação São João", supplier.Data.Name)
	assert.Equal(suite.T(), "fundacao sao joao", supplier.Data.NormalizedName)
}

func (suite *TestSuiteStandard) TestSuppliersCreateFails() {
	existing := createTestSupplier(suite.T(), v1.SupplierEditable{})

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"No body", "", http.StatusBadRequest},
		{"Invalid kind", v1.SupplierEditable{Name: "N", Kind: "charity", TaxID: uuid.NewString()}, http.StatusBadRequest},
		{"Duplicate tax ID", v1.SupplierEditable{Name: "N", Kind: models.SupplierCompany, TaxID: existing.Data.TaxID}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodPost, "http://example.com/v1/suppliers", tt.body)
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestSuppliersGetFilter() {
	_ = createTestSupplier(suite.T(), v1.SupplierEditable{Name: "EDP Comercial", Kind: models.SupplierCompany})
	_ = createTestSupplier(suite.T(), v1.SupplierEditable{Name: "Maria Silva", Kind: models.SupplierIndividual})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All", "", 2},
		{"Individuals", "kind=individual", 1},
		{"Fuzzy name", "name=EDP", 1},
		{"Limit 1", "limit=1", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var response v1.SupplierListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v1/suppliers?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &response)

			assert.Equal(t, tt.len, len(response.Data))
		})
	}
}

func (suite *TestSuiteStandard) TestSuppliersUpdate() {
	supplier := createTestSupplier(suite.T(), v1.SupplierEditable{Name: "Old Name"})

	recorder := test.Request(suite.T(), http.MethodPatch, supplier.Data.Links.Self, map[string]any{"name": "New Name"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.SupplierResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Equal(suite.T(), "New Name", response.Data.Name)
}

// TestSuppliersDelete verifies that a supplier with expenses is
// deactivated instead of deleted.
func (suite *TestSuiteStandard) TestSuppliersDelete() {
	unused := createTestSupplier(suite.T(), v1.SupplierEditable{})

	recorder := test.Request(suite.T(), http.MethodDelete, unused.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(suite.T(), http.MethodGet, unused.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)

	referenced := createTestSupplier(suite.T(), v1.SupplierEditable{})
	_ = createTestExpense(suite.T(), v1.ExpenseEditable{SupplierID: &referenced.Data.ID})

	recorder = test.Request(suite.T(), http.MethodDelete, referenced.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(suite.T(), http.MethodGet, referenced.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.SupplierResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.False(suite.T(), response.Data.Active)
}
