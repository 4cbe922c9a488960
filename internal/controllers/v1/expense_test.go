package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	v1 "github.com/orcamento-aberto/backend/internal/controllers/v1"
	"github.com/orcamento-aberto/backend/internal/models"
	"github.com/orcamento-aberto/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// TestExpensesCreate verifies that the fiscal year and month are derived
// on creation and that the expense starts out pending.
func (suite *TestSuiteStandard) TestExpensesCreate() {
	expense := createTestExpense(suite.T(), v1.ExpenseEditable{
		Description: "Paper",
		IssueDate:   time.Date(2025, 4, 17, 0, 0, 0, 0, time.UTC),
	})

	assert.Equal(suite.T(), 2025, expense.Data.FiscalYear)
	assert.Equal(suite.T(), 4, expense.Data.Month)
	assert.Equal(suite.T(), models.ExpensePending, expense.Data.Status)
}

func (suite *TestSuiteStandard) TestExpensesCreateFails() {
	rubrica := createTestRubrica(suite.T(), v1.RubricaEditable{})

	inactive := createTestRubrica(suite.T(), v1.RubricaEditable{})
	r := test.Request(suite.T(), http.MethodPatch, inactive.Data.Links.Self, `{"status": "inactive"}`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"No body", "", http.StatusBadRequest},
		{"Broken body", `{ "amount": "money" }`, http.StatusBadRequest},
		{"No rubrica", v1.ExpenseEditable{Amount: decimal.NewFromInt(10), IssueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}, http.StatusBadRequest},
		{"Non-existing rubrica", v1.ExpenseEditable{RubricaID: uuid.New(), Amount: decimal.NewFromInt(10), IssueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}, http.StatusNotFound},
		{"Zero amount", v1.ExpenseEditable{RubricaID: rubrica.Data.ID, IssueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}, http.StatusBadRequest},
		{"Issue date outside fiscal year", v1.ExpenseEditable{RubricaID: rubrica.Data.ID, Amount: decimal.NewFromInt(10), IssueDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)}, http.StatusBadRequest},
		{"Inactive rubrica", v1.ExpenseEditable{RubricaID: inactive.Data.ID, Amount: decimal.NewFromInt(10), IssueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodPost, "http://example.com/v1/expenses", tt.body)
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestExpensesGetFilter() {
	rubrica := createTestRubrica(suite.T(), v1.RubricaEditable{})
	supplier := createTestSupplier(suite.T(), v1.SupplierEditable{Name: "Papelaria Central"})

	_ = createTestExpense(suite.T(), v1.ExpenseEditable{
		RubricaID:   rubrica.Data.ID,
		SupplierID:  &supplier.Data.ID,
		Description: "Printer paper",
		IssueDate:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})

	_ = createTestExpense(suite.T(), v1.ExpenseEditable{
		RubricaID:   rubrica.Data.ID,
		Description: "Toner",
		IssueDate:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	_ = createTestExpense(suite.T(), v1.ExpenseEditable{
		Description: "Paper clips",
		BatchRef:    "2025-q1",
		IssueDate:   time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
	})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All", "", 3},
		{"By rubrica", fmt.Sprintf("rubrica=%s", rubrica.Data.ID), 2},
		{"By supplier", fmt.Sprintf("supplier=%s", supplier.Data.ID), 1},
		{"By month", "month=3", 2},
		{"By batch", "batch=2025-q1", 1},
		{"By status", "status=pending", 3},
		{"Search in description", "search=paper", 2},
		{"Limit 1", "limit=1", 1},
		{"Offset 2", "offset=2", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var response v1.ExpenseListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v1/expenses?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &response)

			assert.Equal(t, tt.len, len(response.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

// TestExpensesConfirm verifies the full lifecycle of an expense against
// the ledger.
func (suite *TestSuiteStandard) TestExpensesConfirm() {
	_ = setTestAllocation(suite.T(), 2025, decimal.NewFromInt(1000))

	expense := createTestExpense(suite.T(), v1.ExpenseEditable{
		Amount:    decimal.NewFromInt(300),
		IssueDate: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
	})

	recorder := test.Request(suite.T(), http.MethodPost, expense.Data.Links.Confirm, v1.ActorBody{Actor: "tester"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var confirmed v1.ExpenseResponse
	test.DecodeResponse(suite.T(), &recorder, &confirmed)
	assert.Equal(suite.T(), models.ExpenseConfirmed, confirmed.Data.Status)

	// The balance went down
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/allocation?year=2025", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var allocation v1.AllocationResponse
	test.DecodeResponse(suite.T(), &r, &allocation)
	assert.True(suite.T(), allocation.Data.AvailableBalance.Equal(decimal.NewFromInt(700)), "available balance is %s", allocation.Data.AvailableBalance)

	// Confirming again is a no-op
	recorder = test.Request(suite.T(), http.MethodPost, expense.Data.Links.Confirm, "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/allocation?year=2025", "")
	test.DecodeResponse(suite.T(), &r, &allocation)
	assert.True(suite.T(), allocation.Data.AvailableBalance.Equal(decimal.NewFromInt(700)))

	// Confirmed expenses can not be modified
	recorder = test.Request(suite.T(), http.MethodPatch, expense.Data.Links.Self, `{"description": "new"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	// Cancelling restores the balance
	recorder = test.Request(suite.T(), http.MethodPost, expense.Data.Links.Cancel, v1.ActorBody{Actor: "tester"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var cancelled v1.ExpenseResponse
	test.DecodeResponse(suite.T(), &recorder, &cancelled)
	assert.Equal(suite.T(), models.ExpenseCancelled, cancelled.Data.Status)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/allocation?year=2025", "")
	test.DecodeResponse(suite.T(), &r, &allocation)
	assert.True(suite.T(), allocation.Data.AvailableBalance.Equal(decimal.NewFromInt(1000)), "available balance is %s", allocation.Data.AvailableBalance)
}

func (suite *TestSuiteStandard) TestExpensesConfirmInsufficientBalance() {
	_ = setTestAllocation(suite.T(), 2025, decimal.NewFromInt(100))

	expense := createTestExpense(suite.T(), v1.ExpenseEditable{
		Amount: decimal.NewFromInt(300),
	})

	recorder := test.Request(suite.T(), http.MethodPost, expense.Data.Links.Confirm, "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusConflict)

	// The expense stays pending
	r := test.Request(suite.T(), http.MethodGet, expense.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ExpenseResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), models.ExpensePending, response.Data.Status)
}

func (suite *TestSuiteStandard) TestExpensesConfirmWithoutAllocation() {
	expense := createTestExpense(suite.T(), v1.ExpenseEditable{})

	recorder := test.Request(suite.T(), http.MethodPost, expense.Data.Links.Confirm, "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	var response v1.ExpenseResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Contains(suite.T(), *response.Error, models.ErrNoAllocationForYear.Error())
}

func (suite *TestSuiteStandard) TestExpensesUpdate() {
	expense := createTestExpense(suite.T(), v1.ExpenseEditable{Description: "Old"})

	recorder := test.Request(suite.T(), http.MethodPatch, expense.Data.Links.Self, `{"description": "New", "amount": "42.50"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.ExpenseResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Equal(suite.T(), "New", response.Data.Description)
	assert.True(suite.T(), response.Data.Amount.Equal(decimal.RequireFromString("42.50")))
}

func (suite *TestSuiteStandard) TestExpensesDelete() {
	tests := []struct {
		name   string
		id     string
		status int // expected response status
	}{
		{"Success", "", http.StatusNoContent},
		{"Non-existing Expense", uuid.New().String(), http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			if tt.id == "" {
				e := createTestExpense(t, v1.ExpenseEditable{})
				tt.id = e.Data.ID.String()
			}

			recorder := test.Request(t, http.MethodDelete, fmt.Sprintf("http://example.com/v1/expenses/%s", tt.id), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

// TestExpensesDeleteConfirmed verifies that confirmed expenses stay on
// record.
func (suite *TestSuiteStandard) TestExpensesDeleteConfirmed() {
	_ = setTestAllocation(suite.T(), 2025, decimal.NewFromInt(1000))

	expense := createTestExpense(suite.T(), v1.ExpenseEditable{})

	recorder := test.Request(suite.T(), http.MethodPost, expense.Data.Links.Confirm, "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	recorder = test.Request(suite.T(), http.MethodDelete, expense.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

// TestExpensesResolveSupplier verifies that a free text supplier name is
// resolved through the match rules.
func (suite *TestSuiteStandard) TestExpensesResolveSupplier() {
	supplier := createTestSupplier(suite.T(), v1.SupplierEditable{Name: "EDP Comercial"})
	_ = createTestMatchRule(suite.T(), v1.MatchRuleEditable{
		Match:      "EDP*",
		SupplierID: supplier.Data.ID,
	})

	expense := createTestExpense(suite.T(), v1.ExpenseEditable{
		SupplierName: "EDP Energia",
	})

	assert.NotNil(suite.T(), expense.Data.SupplierID)
	assert.Equal(suite.T(), supplier.Data.ID, *expense.Data.SupplierID)
}
