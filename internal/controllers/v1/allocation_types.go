package v1

import (
	"github.com/orcamento-aberto/backend/internal/models"
	"github.com/shopspring/decimal"
)

// AllocationEditable sets the annual value of a fiscal year.
type AllocationEditable struct {
	FiscalYear  int             `json:"fiscalYear" example:"2025"`                          // Fiscal year the allocation is for
	AnnualValue decimal.Decimal `json:"annualValue" example:"1500000.00"`                   // New annual value
	Description string          `json:"description" example:"approved budget" default:""`   // Reason for the change, logged with the adjustment movement
	Actor       string          `json:"actor" example:"finance department" default:""`      // Who is making the change
}

// AmountBody carries the amount for reservations and their
// cancellation.
type AmountBody struct {
	FiscalYear  int             `json:"fiscalYear" example:"2025"`                        // Fiscal year of the allocation
	Amount      decimal.Decimal `json:"amount" example:"25000.00"`                        // Amount to reserve or release
	Description string          `json:"description" example:"public tender" default:""`   // Reason, logged with the movement
	Actor       string          `json:"actor" example:"finance department" default:""`    // Who is making the change
}

type AllocationResponse struct {
	Data  *models.GlobalAllocation `json:"data"`                                                 // The global allocation
	Error *string                  `json:"error" example:"the available balance is insufficient"` // The error, if any occurred
}

type MovementListResponse struct {
	Data       []models.AllocationMovement `json:"data"`                                                // Movement log, newest first
	Error      *string                     `json:"error" example:"the year query parameter must be set"` // The error, if any occurred
	Pagination *Pagination                 `json:"pagination"`                                          // Pagination information
}

type MovementQueryFilter struct {
	Year   int  `form:"year"`   // Fiscal year of the allocation
	Offset uint `form:"offset"` // The offset of the first movement returned. Defaults to 0.
	Limit  int  `form:"limit"`  // Maximum number of movements to return. Defaults to 50.
}
