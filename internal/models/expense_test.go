package models_test

import (
	"testing"
	"time"

	"github.com/orcamento-aberto/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func (suite *TestSuiteStandard) TestExpenseCreateValidation() {
	root := suite.createTestRubrica(models.Rubrica{Code: "01", FiscalYear: 2025})
	leaf := suite.createTestRubrica(models.Rubrica{Code: "01.01", ParentID: &root.ID, InitialAllocation: decimal.NewFromInt(1000)})
	inactive := suite.createTestRubrica(models.Rubrica{Code: "02", FiscalYear: 2025, Status: models.StatusInactive})

	issueDate := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expense models.Expense
		err     error
	}{
		{
			"amount not positive",
			models.Expense{RubricaID: leaf.ID, Amount: decimal.Zero, IssueDate: issueDate},
			models.ErrAmountNotPositive,
		},
		{
			"missing rubrica",
			models.Expense{Amount: decimal.NewFromInt(10), IssueDate: issueDate},
			models.ErrExpenseRubricaRequired,
		},
		{
			"non-leaf rubrica",
			models.Expense{RubricaID: root.ID, Amount: decimal.NewFromInt(10), IssueDate: issueDate},
			models.ErrRubricaNotLeaf,
		},
		{
			"inactive rubrica",
			models.Expense{RubricaID: inactive.ID, Amount: decimal.NewFromInt(10), IssueDate: issueDate},
			models.ErrRubricaNotActive,
		},
		{
			"issue date in the future",
			models.Expense{RubricaID: leaf.ID, Amount: decimal.NewFromInt(10), IssueDate: time.Now().Add(48 * time.Hour)},
			models.ErrIssueDateInFuture,
		},
		{
			"issue date outside the fiscal year",
			models.Expense{RubricaID: leaf.ID, Amount: decimal.NewFromInt(10), IssueDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
			models.ErrIssueDateOutsideFiscalYear,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			expense := tt.expense
			err := models.CreateExpense(models.DB, &expense)
			assert.ErrorIs(t, err, tt.err, "Error is: %s", err)
		})
	}
}

func (suite *TestSuiteStandard) TestExpenseDerivesPeriod() {
	rubrica := suite.createTestRubrica(models.Rubrica{InitialAllocation: decimal.NewFromInt(100)})

	expense := suite.createTestExpense(models.Expense{
		RubricaID: rubrica.ID,
		IssueDate: time.Date(2025, 11, 3, 14, 30, 0, 0, time.UTC),
	})

	assert.Equal(suite.T(), 2025, expense.FiscalYear)
	assert.Equal(suite.T(), 11, expense.Month)
	assert.Equal(suite.T(), models.ExpensePending, expense.Status)
}

func (suite *TestSuiteStandard) TestExpenseSupplierValidation() {
	rubrica := suite.createTestRubrica(models.Rubrica{InitialAllocation: decimal.NewFromInt(100)})
	supplier := suite.createTestSupplier(models.Supplier{Name: "Construções Lda"})

	supplier.Active = false
	require.Nil(suite.T(), models.DB.Save(&supplier).Error)

	expense := models.Expense{
		RubricaID:  rubrica.ID,
		SupplierID: &supplier.ID,
		Amount:     decimal.NewFromInt(10),
		IssueDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	err := models.CreateExpense(models.DB, &expense)
	assert.ErrorIs(suite.T(), err, models.ErrSupplierNotActive)
}

func (suite *TestSuiteStandard) TestExpenseResolvesSupplierName() {
	rubrica := suite.createTestRubrica(models.Rubrica{InitialAllocation: decimal.NewFromInt(100)})
	supplier := suite.createTestSupplier(models.Supplier{Name: "Fundação São João"})

	expense := suite.createTestExpense(models.Expense{
		RubricaID:    rubrica.ID,
		SupplierName: "fundacao sao joao",
	})

	require.NotNil(suite.T(), expense.SupplierID)
	assert.Equal(suite.T(), supplier.ID, *expense.SupplierID)
	assert.Equal(suite.T(), "fundacao sao joao", expense.SupplierName)
}

func (suite *TestSuiteStandard) TestExpenseConfirm() {
	_ = suite.createTestAllocation(2025, decimal.NewFromInt(1000))
	rubrica := suite.createTestRubrica(models.Rubrica{InitialAllocation: decimal.NewFromInt(500)})

	expense := suite.createTestExpense(models.Expense{
		RubricaID: rubrica.ID,
		Amount:    decimal.NewFromInt(200),
	})

	require.Nil(suite.T(), models.ConfirmExpense(models.DB, &expense, "test"))
	assert.Equal(suite.T(), models.ExpenseConfirmed, expense.Status)

	allocation, err := models.AllocationForYear(models.DB, 2025)
	require.Nil(suite.T(), err)
	assert.True(suite.T(), allocation.AvailableBalance.Equal(decimal.NewFromInt(800)))

	movements, _, err := models.Movements(models.DB, 2025, 0, -1)
	require.Nil(suite.T(), err)
	require.Len(suite.T(), movements, 2)
	assert.Equal(suite.T(), models.MovementExpenseConfirmed, movements[0].Kind)
	assert.True(suite.T(), movements[0].Amount.Equal(decimal.NewFromInt(-200)))
	require.NotNil(suite.T(), movements[0].Reference)
	assert.Equal(suite.T(), expense.ID, *movements[0].Reference)

	// The monthly execution row is written in the same transaction
	var execution models.MonthlyExecution
	err = models.DB.Where("rubrica_id = ? AND year = ? AND month = ?", rubrica.ID, 2025, 3).First(&execution).Error
	require.Nil(suite.T(), err)
	assert.True(suite.T(), execution.Spend.Equal(decimal.NewFromInt(200)))
	assert.True(suite.T(), execution.Allocation.Equal(decimal.NewFromInt(500)))
	assert.True(suite.T(), execution.Balance.Equal(decimal.NewFromInt(300)))

	// Confirming again is a no-op
	require.Nil(suite.T(), models.ConfirmExpense(models.DB, &expense, "test"))

	movements, _, err = models.Movements(models.DB, 2025, 0, -1)
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), movements, 2)
}

func (suite *TestSuiteStandard) TestExpenseConfirmInsufficientBalance() {
	_ = suite.createTestAllocation(2025, decimal.NewFromInt(100))
	rubrica := suite.createTestRubrica(models.Rubrica{InitialAllocation: decimal.NewFromInt(500)})

	expense := suite.createTestExpense(models.Expense{
		RubricaID: rubrica.ID,
		Amount:    decimal.NewFromInt(200),
	})

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		return models.ConfirmExpense(tx, &expense, "test")
	})
	assert.ErrorIs(suite.T(), err, models.ErrInsufficientBalance)

	// Nothing was booked
	var reloaded models.Expense
	require.Nil(suite.T(), models.DB.First(&reloaded, expense.ID).Error)
	assert.Equal(suite.T(), models.ExpensePending, reloaded.Status)

	allocation, err := models.AllocationForYear(models.DB, 2025)
	require.Nil(suite.T(), err)
	assert.True(suite.T(), allocation.AvailableBalance.Equal(decimal.NewFromInt(100)))

	movements, _, err := models.Movements(models.DB, 2025, 0, -1)
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), movements, 1)
}

func (suite *TestSuiteStandard) TestExpenseConfirmWithoutAllocation() {
	rubrica := suite.createTestRubrica(models.Rubrica{InitialAllocation: decimal.NewFromInt(500)})
	expense := suite.createTestExpense(models.Expense{RubricaID: rubrica.ID})

	err := models.ConfirmExpense(models.DB, &expense, "test")
	assert.ErrorIs(suite.T(), err, models.ErrNoAllocationForYear)
}

func (suite *TestSuiteStandard) TestExpenseUpdate() {
	rubrica := suite.createTestRubrica(models.Rubrica{InitialAllocation: decimal.NewFromInt(500)})
	expense := suite.createTestExpense(models.Expense{RubricaID: rubrica.ID})

	description := "office supplies"
	amount := decimal.NewFromInt(42)
	err := models.UpdateExpense(models.DB, &expense, models.ExpenseUpdate{
		Description: &description,
		Amount:      &amount,
	})
	require.Nil(suite.T(), err)
	assert.Equal(suite.T(), "office supplies", expense.Description)
	assert.True(suite.T(), expense.Amount.Equal(amount))

	// Confirmed expenses are immutable
	_ = suite.createTestAllocation(2025, decimal.NewFromInt(1000))
	require.Nil(suite.T(), models.ConfirmExpense(models.DB, &expense, "test"))

	err = models.UpdateExpense(models.DB, &expense, models.ExpenseUpdate{Description: &description})
	assert.ErrorIs(suite.T(), err, models.ErrExpenseConfirmed)
}

func (suite *TestSuiteStandard) TestExpenseDelete() {
	_ = suite.createTestAllocation(2025, decimal.NewFromInt(1000))
	rubrica := suite.createTestRubrica(models.Rubrica{InitialAllocation: decimal.NewFromInt(500)})

	pending := suite.createTestExpense(models.Expense{RubricaID: rubrica.ID})
	require.Nil(suite.T(), models.DeleteExpense(models.DB, &pending))

	confirmed := suite.createTestExpense(models.Expense{RubricaID: rubrica.ID})
	require.Nil(suite.T(), models.ConfirmExpense(models.DB, &confirmed, "test"))
	assert.ErrorIs(suite.T(), models.DeleteExpense(models.DB, &confirmed), models.ErrExpenseConfirmed)

	cancelled := suite.createTestExpense(models.Expense{RubricaID: rubrica.ID})
	require.Nil(suite.T(), models.CancelExpense(models.DB, &cancelled, "test"))
	assert.ErrorIs(suite.T(), models.DeleteExpense(models.DB, &cancelled), models.ErrExpenseCancelled)
}

func (suite *TestSuiteStandard) TestExpenseCancel() {
	_ = suite.createTestAllocation(2025, decimal.NewFromInt(1000))
	rubrica := suite.createTestRubrica(models.Rubrica{InitialAllocation: decimal.NewFromInt(500)})

	expense := suite.createTestExpense(models.Expense{
		RubricaID: rubrica.ID,
		Amount:    decimal.NewFromInt(300),
	})

	require.Nil(suite.T(), models.ConfirmExpense(models.DB, &expense, "test"))
	require.Nil(suite.T(), models.CancelExpense(models.DB, &expense, "test"))
	assert.Equal(suite.T(), models.ExpenseCancelled, expense.Status)

	// The ledger movement was reversed
	allocation, err := models.AllocationForYear(models.DB, 2025)
	require.Nil(suite.T(), err)
	assert.True(suite.T(), allocation.AvailableBalance.Equal(decimal.NewFromInt(1000)))

	movements, _, err := models.Movements(models.DB, 2025, 0, -1)
	require.Nil(suite.T(), err)
	require.Len(suite.T(), movements, 3)
	assert.Equal(suite.T(), models.MovementExpenseCancelled, movements[0].Kind)

	// The execution row no longer counts the expense
	var execution models.MonthlyExecution
	err = models.DB.Where("rubrica_id = ? AND year = ? AND month = ?", rubrica.ID, 2025, 3).First(&execution).Error
	require.Nil(suite.T(), err)
	assert.True(suite.T(), execution.Spend.IsZero())

	// A cancelled expense can not be confirmed
	err = models.ConfirmExpense(models.DB, &expense, "test")
	assert.ErrorIs(suite.T(), err, models.ErrExpenseCancelled)

	// Cancelling a pending expense has no ledger effect
	pending := suite.createTestExpense(models.Expense{RubricaID: rubrica.ID})
	require.Nil(suite.T(), models.CancelExpense(models.DB, &pending, "test"))

	movements, _, err = models.Movements(models.DB, 2025, 0, -1)
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), movements, 3)
}
