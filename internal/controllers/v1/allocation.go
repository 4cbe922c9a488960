package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orcamento-aberto/backend/internal/events"
	"github.com/orcamento-aberto/backend/internal/httputil"
	"github.com/orcamento-aberto/backend/internal/models"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// RegisterAllocationRoutes registers the routes for the global
// allocation ledger with the RouterGroup that is passed.
func RegisterAllocationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", GetAllocation)
		r.POST("", SetAllocation)
	}

	{
		r.OPTIONS("/movements", httputil.OptionsGet)
		r.GET("/movements", GetMovements)

		r.OPTIONS("/reserve", httputil.OptionsPost)
		r.POST("/reserve", ReserveAllocation)

		r.OPTIONS("/reservations/cancel", httputil.OptionsPost)
		r.POST("/reservations/cancel", CancelReservation)
	}
}

// @Summary		Get global allocation
// @Description	Returns the global allocation of a fiscal year
// @Tags			Allocation
// @Produce		json
// @Success		200	{object}	AllocationResponse
// @Failure		400	{object}	AllocationResponse
// @Failure		404	{object}	AllocationResponse
// @Failure		500	{object}	AllocationResponse
// @Param			year	query	int	true	"Fiscal year"
// @Router			/v1/allocation [get]
func GetAllocation(c *gin.Context) {
	year, err := yearFromQuery(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &e,
		})
		return
	}

	allocation, err := models.AllocationForYear(models.DB, year)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusOK, AllocationResponse{Data: &allocation})
}

// @Summary		Set annual value
// @Description	Creates or adjusts the global allocation of a fiscal year. The difference to the previous annual value is applied to the available balance and logged as an adjustment movement.
// @Tags			Allocation
// @Accept			json
// @Produce		json
// @Success		200			{object}	AllocationResponse
// @Failure		400			{object}	AllocationResponse
// @Failure		500			{object}	AllocationResponse
// @Param			allocation	body		AllocationEditable	true	"Allocation"
// @Router			/v1/allocation [post]
func SetAllocation(c *gin.Context) {
	var editable AllocationEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &e,
		})
		return
	}

	var allocation models.GlobalAllocation
	err = models.Transaction(func(tx *gorm.DB) error {
		allocation, err = models.SetAnnualValue(tx, editable.FiscalYear, editable.AnnualValue, editable.Description, editable.Actor)
		return err
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &e,
		})
		return
	}

	broker.Publish(events.Event{Type: events.AllocationUpdated, FiscalYear: allocation.FiscalYear})

	c.JSON(http.StatusOK, AllocationResponse{Data: &allocation})
}

// @Summary		Get movements
// @Description	Returns the append-only movement log of a fiscal year, newest first
// @Tags			Allocation
// @Produce		json
// @Success		200	{object}	MovementListResponse
// @Failure		400	{object}	MovementListResponse
// @Failure		404	{object}	MovementListResponse
// @Failure		500	{object}	MovementListResponse
// @Param			year	query	int		true	"Fiscal year"
// @Param			offset	query	uint	false	"The offset of the first movement returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of movements to return. Defaults to 50."
// @Router			/v1/allocation/movements [get]
func GetMovements(c *gin.Context) {
	var filter MovementQueryFilter
	_ = c.Bind(&filter)

	if filter.Year == 0 {
		e := errYearNotSetInQuery.Error()
		c.JSON(http.StatusBadRequest, MovementListResponse{
			Error: &e,
		})
		return
	}

	_, setFields := httputil.GetURLFields(c.Request.URL, filter)

	// Default to 50 movements and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}

	movements, total, err := models.Movements(models.DB, filter.Year, int(filter.Offset), limit)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MovementListResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusOK, MovementListResponse{
		Data: movements,
		Pagination: &Pagination{
			Count:  len(movements),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  total,
		},
	})
}

// @Summary		Reserve budget
// @Description	Blocks part of the available balance for a planned spend
// @Tags			Allocation
// @Accept			json
// @Produce		json
// @Success		200			{object}	AllocationResponse
// @Failure		400			{object}	AllocationResponse
// @Failure		404			{object}	AllocationResponse
// @Failure		409			{object}	AllocationResponse
// @Failure		500			{object}	AllocationResponse
// @Param			reservation	body		AmountBody	true	"Reservation"
// @Router			/v1/allocation/reserve [post]
func ReserveAllocation(c *gin.Context) {
	var body AmountBody

	err := httputil.BindData(c, &body)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &e,
		})
		return
	}

	var allocation models.GlobalAllocation
	err = models.Transaction(func(tx *gorm.DB) error {
		allocation, err = models.Reserve(tx, body.FiscalYear, body.Amount, body.Description, body.Actor)
		return err
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &e,
		})
		return
	}

	broker.Publish(events.Event{Type: events.AllocationUpdated, FiscalYear: allocation.FiscalYear})

	c.JSON(http.StatusOK, AllocationResponse{Data: &allocation})
}

// @Summary		Cancel reservation
// @Description	Releases a previously reserved amount back into the available balance
// @Tags			Allocation
// @Accept			json
// @Produce		json
// @Success		200				{object}	AllocationResponse
// @Failure		400				{object}	AllocationResponse
// @Failure		404				{object}	AllocationResponse
// @Failure		500				{object}	AllocationResponse
// @Param			cancellation	body		AmountBody	true	"Cancellation"
// @Router			/v1/allocation/reservations/cancel [post]
func CancelReservation(c *gin.Context) {
	var body AmountBody

	err := httputil.BindData(c, &body)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &e,
		})
		return
	}

	var allocation models.GlobalAllocation
	err = models.Transaction(func(tx *gorm.DB) error {
		allocation, err = models.CancelReservation(tx, body.FiscalYear, body.Amount, body.Description, body.Actor)
		return err
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &e,
		})
		return
	}

	broker.Publish(events.Event{Type: events.AllocationUpdated, FiscalYear: allocation.FiscalYear})

	c.JSON(http.StatusOK, AllocationResponse{Data: &allocation})
}
