package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orcamento-aberto/backend/internal/httputil"
)

// RegisterRootRoutes registers the v1 API root.
func RegisterRootRoutes(r *gin.RouterGroup) {
	r.GET("", GetV1)
	r.OPTIONS("", OptionsV1)
}

type V1Response struct {
	Links V1Links `json:"links"`
}

type V1Links struct {
	Rubricas   string `json:"rubricas" example:"https://example.com/api/v1/rubricas"`
	Allocation string `json:"allocation" example:"https://example.com/api/v1/allocation"`
	Expenses   string `json:"expenses" example:"https://example.com/api/v1/expenses"`
	Executions string `json:"executions" example:"https://example.com/api/v1/executions"`
	Suppliers  string `json:"suppliers" example:"https://example.com/api/v1/suppliers"`
	Employees  string `json:"employees" example:"https://example.com/api/v1/employees"`
	MatchRules string `json:"matchRules" example:"https://example.com/api/v1/match-rules"`
	Events     string `json:"events" example:"https://example.com/api/v1/events"`
}

// @Summary		v1 API
// @Description	Returns general information about the v1 API
// @Tags			General
// @Success		200	{object}	V1Response
// @Router			/v1 [get]
func GetV1(c *gin.Context) {
	url := httputil.RequestPathV1(c)

	c.JSON(http.StatusOK, V1Response{
		Links: V1Links{
			Rubricas:   url + "/rubricas",
			Allocation: url + "/allocation",
			Expenses:   url + "/expenses",
			Executions: url + "/executions",
			Suppliers:  url + "/suppliers",
			Employees:  url + "/employees",
			MatchRules: url + "/match-rules",
			Events:     url + "/events",
		},
	})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			General
// @Success		204
// @Router			/v1 [options]
func OptionsV1(c *gin.Context) {
	httputil.OptionsGet(c)
}
