package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orcamento-aberto/backend/internal/httputil"
	"github.com/orcamento-aberto/backend/internal/models"
)

// RegisterExecutionRoutes registers the routes for the monthly
// execution table with the RouterGroup that is passed.
func RegisterExecutionRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGet)
	r.GET("", GetExecutionTable)
}

type ExecutionTableResponse struct {
	Data  []models.ExecutionRow `json:"data"`                                                 // Execution rows, one per active rubrica, ordered by code
	Error *string               `json:"error" example:"the year query parameter must be set"` // The error, if any occurred
}

// @Summary		Get execution table
// @Description	Returns the monthly execution table of a fiscal year. Each row carries the allocation of the rubrica, the confirmed spend per month, the yearly total and the remaining balance. Spend of inactive rubricas rolls up into their ancestors.
// @Tags			Executions
// @Produce		json
// @Success		200	{object}	ExecutionTableResponse
// @Failure		400	{object}	ExecutionTableResponse
// @Failure		500	{object}	ExecutionTableResponse
// @Param			year	query	int	true	"Fiscal year"
// @Router			/v1/executions [get]
func GetExecutionTable(c *gin.Context) {
	year, err := yearFromQuery(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ExecutionTableResponse{
			Error: &e,
		})
		return
	}

	rows, err := models.ExecutionTable(models.DB, year)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ExecutionTableResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusOK, ExecutionTableResponse{Data: rows})
}
