package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/orcamento-aberto/backend/internal/controllers/v1"
	"github.com/orcamento-aberto/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestMatchRulesCreateFails() {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"No body", "", http.StatusBadRequest},
		{"Non-existing supplier", v1.MatchRuleEditable{Match: "EDP*", SupplierID: uuid.New()}, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodPost, "http://example.com/v1/match-rules", tt.body)
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

// TestMatchRulesSorted verifies that match rules are returned in the
// order they are applied.
func (suite *TestSuiteStandard) TestMatchRulesSorted() {
	second := createTestMatchRule(suite.T(), v1.MatchRuleEditable{Priority: 20, Match: "B*"})
	first := createTestMatchRule(suite.T(), v1.MatchRuleEditable{Priority: 10, Match: "A*"})

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/match-rules", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.MatchRuleListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	require.Len(suite.T(), response.Data, 2)
	assert.Equal(suite.T(), first.Data.ID, response.Data[0].ID)
	assert.Equal(suite.T(), second.Data.ID, response.Data[1].ID)
}

func (suite *TestSuiteStandard) TestMatchRulesUpdate() {
	rule := createTestMatchRule(suite.T(), v1.MatchRuleEditable{Priority: 10, Match: "EDP*"})

	recorder := test.Request(suite.T(), http.MethodPatch, rule.Data.Links.Self, map[string]any{"priority": 5})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.MatchRuleResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Equal(suite.T(), uint(5), response.Data.Priority)
	assert.Equal(suite.T(), "EDP*", response.Data.Match)
}

func (suite *TestSuiteStandard) TestMatchRulesDelete() {
	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Success", "", http.StatusNoContent},
		{"Non-existing Match rule", uuid.New().String(), http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			if tt.id == "" {
				m := createTestMatchRule(t, v1.MatchRuleEditable{Match: fmt.Sprintf("pattern-%s*", uuid.NewString())})
				tt.id = m.Data.ID.String()
			}

			recorder := test.Request(t, http.MethodDelete, fmt.Sprintf("http://example.com/v1/match-rules/%s", tt.id), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}
