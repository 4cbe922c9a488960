package models_test

import (
	"time"

	"github.com/orcamento-aberto/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestUpsertExecutionValidation() {
	rubrica := suite.createTestRubrica(models.Rubrica{InitialAllocation: decimal.NewFromInt(100)})

	assert.ErrorIs(suite.T(), models.UpsertExecution(models.DB, rubrica.ID, 0, 2025), models.ErrExecutionPeriodInvalid)
	assert.ErrorIs(suite.T(), models.UpsertExecution(models.DB, rubrica.ID, 13, 2025), models.ErrExecutionPeriodInvalid)
}

func (suite *TestSuiteStandard) TestUpsertExecutionSumsConfirmedSpend() {
	_ = suite.createTestAllocation(2025, decimal.NewFromInt(10000))
	rubrica := suite.createTestRubrica(models.Rubrica{InitialAllocation: decimal.NewFromInt(1000)})

	issueDate := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

	for _, amount := range []int64{100, 250} {
		expense := suite.createTestExpense(models.Expense{
			RubricaID: rubrica.ID,
			Amount:    decimal.NewFromInt(amount),
			IssueDate: issueDate,
		})
		require.Nil(suite.T(), models.ConfirmExpense(models.DB, &expense, "test"))
	}

	// A pending expense in the same month does not count
	_ = suite.createTestExpense(models.Expense{
		RubricaID: rubrica.ID,
		Amount:    decimal.NewFromInt(999),
		IssueDate: issueDate,
	})

	var execution models.MonthlyExecution
	err := models.DB.Where("rubrica_id = ? AND year = ? AND month = ?", rubrica.ID, 2025, 6).First(&execution).Error
	require.Nil(suite.T(), err)

	assert.True(suite.T(), execution.Spend.Equal(decimal.NewFromInt(350)), "spend is %s", execution.Spend)
	assert.True(suite.T(), execution.Allocation.Equal(decimal.NewFromInt(1000)))
	assert.True(suite.T(), execution.Balance.Equal(decimal.NewFromInt(650)))
}

func (suite *TestSuiteStandard) TestExecutionAllocationFollowsTree() {
	_ = suite.createTestAllocation(2025, decimal.NewFromInt(10000))
	rubrica := suite.createTestRubrica(models.Rubrica{InitialAllocation: decimal.NewFromInt(1000)})

	expense := suite.createTestExpense(models.Expense{
		RubricaID: rubrica.ID,
		Amount:    decimal.NewFromInt(400),
	})
	require.Nil(suite.T(), models.ConfirmExpense(models.DB, &expense, "test"))

	// Changing the initial allocation refreshes the snapshot
	newValue := decimal.NewFromInt(2000)
	_, err := models.UpdateRubrica(models.DB, &rubrica, models.RubricaUpdate{InitialAllocation: &newValue})
	require.Nil(suite.T(), err)

	var execution models.MonthlyExecution
	err = models.DB.Where("rubrica_id = ? AND year = ? AND month = ?", rubrica.ID, 2025, 3).First(&execution).Error
	require.Nil(suite.T(), err)

	assert.True(suite.T(), execution.Allocation.Equal(newValue), "allocation snapshot is %s", execution.Allocation)
	assert.True(suite.T(), execution.Balance.Equal(decimal.NewFromInt(1600)))
}

func (suite *TestSuiteStandard) TestExecutionTable() {
	_ = suite.createTestAllocation(2025, decimal.NewFromInt(10000))

	root := suite.createTestRubrica(models.Rubrica{Code: "01"})
	left := suite.createTestRubrica(models.Rubrica{Code: "01.01", ParentID: &root.ID, InitialAllocation: decimal.NewFromInt(1000)})
	right := suite.createTestRubrica(models.Rubrica{Code: "01.02", ParentID: &root.ID, InitialAllocation: decimal.NewFromInt(500)})

	march := suite.createTestExpense(models.Expense{
		RubricaID: left.ID,
		Amount:    decimal.NewFromInt(100),
		IssueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Nil(suite.T(), models.ConfirmExpense(models.DB, &march, "test"))

	july := suite.createTestExpense(models.Expense{
		RubricaID: right.ID,
		Amount:    decimal.NewFromInt(50),
		IssueDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Nil(suite.T(), models.ConfirmExpense(models.DB, &july, "test"))

	rows, err := models.ExecutionTable(models.DB, 2025)
	require.Nil(suite.T(), err)
	require.Len(suite.T(), rows, 3)

	// Ordered by code, the root aggregates its descendants
	assert.Equal(suite.T(), "01", rows[0].Code)
	assert.True(suite.T(), rows[0].Months[2].Equal(decimal.NewFromInt(100)))
	assert.True(suite.T(), rows[0].Months[6].Equal(decimal.NewFromInt(50)))
	assert.True(suite.T(), rows[0].Total.Equal(decimal.NewFromInt(150)))
	assert.True(suite.T(), rows[0].Allocation.Equal(decimal.NewFromInt(1500)))
	assert.True(suite.T(), rows[0].Balance.Equal(decimal.NewFromInt(1350)))

	assert.Equal(suite.T(), "01.01", rows[1].Code)
	assert.True(suite.T(), rows[1].Total.Equal(decimal.NewFromInt(100)))

	assert.Equal(suite.T(), "01.02", rows[2].Code)
	assert.True(suite.T(), rows[2].Total.Equal(decimal.NewFromInt(50)))
}
