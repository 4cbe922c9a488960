package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/orcamento-aberto/backend/internal/controllers/v1"
	"github.com/orcamento-aberto/backend/internal/models"
	"github.com/orcamento-aberto/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestAllocationSetAndGet() {
	allocation := setTestAllocation(suite.T(), 2025, decimal.NewFromInt(100000))
	assert.True(suite.T(), allocation.Data.AvailableBalance.Equal(decimal.NewFromInt(100000)))

	// Lowering the annual value lowers the available balance by the same
	// difference
	allocation = setTestAllocation(suite.T(), 2025, decimal.NewFromInt(80000))
	assert.True(suite.T(), allocation.Data.AvailableBalance.Equal(decimal.NewFromInt(80000)), "available balance is %s", allocation.Data.AvailableBalance)

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/allocation?year=2025", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.AllocationResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.True(suite.T(), response.Data.AnnualValue.Equal(decimal.NewFromInt(80000)))
}

func (suite *TestSuiteStandard) TestAllocationGetFails() {
	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"Missing year", "", http.StatusBadRequest},
		{"Invalid year", "year=abc", http.StatusBadRequest},
		{"No allocation for year", "year=2025", http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/allocation?%s", tt.query), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationSetFails() {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"No body", "", http.StatusBadRequest},
		{"Broken body", `{ "annualValue": "money" }`, http.StatusBadRequest},
		{"Negative value", v1.AllocationEditable{FiscalYear: 2025, AnnualValue: decimal.NewFromInt(-1)}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodPost, "http://example.com/v1/allocation", tt.body)
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationReserve() {
	_ = setTestAllocation(suite.T(), 2025, decimal.NewFromInt(1000))

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocation/reserve", v1.AmountBody{
		FiscalYear: 2025,
		Amount:     decimal.NewFromInt(400),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.AllocationResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.True(suite.T(), response.Data.Reserved.Equal(decimal.NewFromInt(400)))
	assert.True(suite.T(), response.Data.AvailableBalance.Equal(decimal.NewFromInt(600)))

	// Reserving more than the available balance is a conflict
	recorder = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocation/reserve", v1.AmountBody{
		FiscalYear: 2025,
		Amount:     decimal.NewFromInt(601),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusConflict)

	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Contains(suite.T(), *response.Error, models.ErrInsufficientBalance.Error())
}

func (suite *TestSuiteStandard) TestAllocationCancelReservation() {
	_ = setTestAllocation(suite.T(), 2025, decimal.NewFromInt(1000))

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocation/reserve", v1.AmountBody{
		FiscalYear: 2025,
		Amount:     decimal.NewFromInt(400),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	recorder = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocation/reservations/cancel", v1.AmountBody{
		FiscalYear: 2025,
		Amount:     decimal.NewFromInt(150),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.AllocationResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.True(suite.T(), response.Data.Reserved.Equal(decimal.NewFromInt(250)))
	assert.True(suite.T(), response.Data.AvailableBalance.Equal(decimal.NewFromInt(750)))

	// Releasing more than is reserved fails
	recorder = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocation/reservations/cancel", v1.AmountBody{
		FiscalYear: 2025,
		Amount:     decimal.NewFromInt(251),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestAllocationMovements() {
	_ = setTestAllocation(suite.T(), 2025, decimal.NewFromInt(1000))
	_ = setTestAllocation(suite.T(), 2025, decimal.NewFromInt(1200))

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocation/reserve", v1.AmountBody{
		FiscalYear: 2025,
		Amount:     decimal.NewFromInt(100),
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All", "year=2025", 3},
		{"Limit 2", "year=2025&limit=2", 2},
		{"Offset 2", "year=2025&offset=2", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/allocation/movements?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.MovementListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.len)

			// The total always counts the full log, not the page
			assert.Equal(t, int64(3), response.Pagination.Total)
		})
	}

	// Newest first: the reservation tops the list
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/allocation/movements?year=2025", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MovementListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotEmpty(suite.T(), response.Data)
	assert.Equal(suite.T(), models.MovementReservation, response.Data[0].Kind)
}

func (suite *TestSuiteStandard) TestAllocationMovementsFails() {
	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"Missing year", "", http.StatusBadRequest},
		{"No allocation for year", "year=2024", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/allocation/movements?%s", tt.query), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}
