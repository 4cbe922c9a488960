package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/orcamento-aberto/backend/internal/events"
	"github.com/orcamento-aberto/backend/internal/httputil"
	"github.com/orcamento-aberto/backend/internal/models"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// RegisterRubricaRoutes registers the routes for rubricas with
// the RouterGroup that is passed.
func RegisterRubricaRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsRubricaList)
		r.GET("", GetRubricas)
		r.POST("", CreateRubrica)
	}

	// Batch create, tree view and recalculation
	{
		r.OPTIONS("/batch", httputil.OptionsPost)
		r.POST("/batch", CreateRubricaBatch)

		r.OPTIONS("/tree", httputil.OptionsGet)
		r.GET("/tree", GetRubricaTree)

		r.OPTIONS("/recalculate", httputil.OptionsPost)
		r.POST("/recalculate", RecalculateRubricas)
	}

	// Rubrica with ID
	{
		r.OPTIONS("/:id", OptionsRubricaDetail)
		r.GET("/:id", GetRubrica)
		r.PATCH("/:id", UpdateRubrica)
		r.DELETE("/:id", DeleteRubrica)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Rubricas
// @Success		204
// @Router			/v1/rubricas [options]
func OptionsRubricaList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Rubricas
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/rubricas/{id} [options]
func OptionsRubricaDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Rubrica{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create rubrica
// @Description	Creates a new rubrica and recomputes its ancestor chain
// @Tags			Rubricas
// @Produce		json
// @Success		201		{object}	RubricaResponse
// @Failure		400		{object}	RubricaResponse
// @Failure		404		{object}	RubricaResponse
// @Failure		500		{object}	RubricaResponse
// @Param			rubrica	body		RubricaEditable	true	"Rubrica"
// @Router			/v1/rubricas [post]
func CreateRubrica(c *gin.Context) {
	var editable RubricaEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RubricaResponse{
			Error: &e,
		})
		return
	}

	rubrica := editable.model()

	var changed []uuid.UUID
	err = models.Transaction(func(tx *gorm.DB) error {
		changed, err = models.CreateRubrica(tx, &rubrica)
		return err
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RubricaResponse{
			Error: &e,
		})
		return
	}

	publishRecalculated(rubrica.FiscalYear, changed)

	data := newRubrica(c, rubrica)
	c.JSON(http.StatusCreated, RubricaResponse{Data: &data})
}

// @Summary		Create rubricas
// @Description	Creates multiple rubricas. A failing item does not abort the batch, the response reports the outcome for every item in order.
// @Tags			Rubricas
// @Produce		json
// @Success		201			{object}	RubricaBatchResponse
// @Failure		400			{object}	RubricaBatchResponse
// @Failure		404			{object}	RubricaBatchResponse
// @Failure		500			{object}	RubricaBatchResponse
// @Param			rubricas	body		[]RubricaEditable	true	"Rubricas"
// @Router			/v1/rubricas/batch [post]
func CreateRubricaBatch(c *gin.Context) {
	var editables []RubricaEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RubricaBatchResponse{
			Error: &e,
		})
		return
	}

	rubricas := make([]models.Rubrica, 0, len(editables))
	for _, editable := range editables {
		rubricas = append(rubricas, editable.model())
	}

	var results []models.RubricaBatchResult
	var changed []uuid.UUID
	err = models.Transaction(func(tx *gorm.DB) error {
		results, changed, err = models.CreateRubricaBatch(tx, rubricas)
		return err
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RubricaBatchResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	httpStatus := http.StatusCreated
	r := RubricaBatchResponse{}

	for i, result := range results {
		if result.Error != nil {
			httpStatus = r.appendError(result.Error, httpStatus)
			continue
		}

		data := newRubrica(c, rubricas[i])
		r.Data = append(r.Data, RubricaResponse{Data: &data})
	}

	if len(editables) > 0 {
		publishRecalculated(editables[0].FiscalYear, changed)
	}

	c.JSON(httpStatus, r)
}

// @Summary		Get rubricas
// @Description	Returns a list of rubricas
// @Tags			Rubricas
// @Produce		json
// @Success		200	{object}	RubricaListResponse
// @Failure		400	{object}	RubricaListResponse
// @Failure		500	{object}	RubricaListResponse
// @Router			/v1/rubricas [get]
// @Param			year	query	int		false	"Filter by fiscal year"
// @Param			kind	query	string	false	"Filter by kind"
// @Param			status	query	string	false	"Filter by status"
// @Param			parent	query	string	false	"Filter by parent rubrica ID"
// @Param			level	query	int		false	"Filter by level"
// @Param			code	query	string	false	"Filter by code"
// @Param			name	query	string	false	"Filter by name"
// @Param			offset	query	uint	false	"The offset of the first rubrica returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of rubricas to return. Defaults to 50."
func GetRubricas(c *gin.Context) {
	var filter RubricaQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we are filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("code ASC").
		Where(filter.model(), queryFields...)

	q = nameFilter(q, setFields, filter.Name)

	if filter.Code != "" {
		q = q.Where("code LIKE ?", filter.Code+"%")
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 rubricas and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var rubricas []models.Rubrica
	err := q.Find(&rubricas).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RubricaListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RubricaListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Rubrica, 0, len(rubricas))
	for _, rubrica := range rubricas {
		data = append(data, newRubrica(c, rubrica))
	}

	c.JSON(http.StatusOK, RubricaListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get rubrica tree
// @Description	Returns the rubrica hierarchy of a fiscal year with computed allocations, confirmed spend and balance per node
// @Tags			Rubricas
// @Produce		json
// @Success		200	{object}	RubricaTreeResponse
// @Failure		400	{object}	RubricaTreeResponse
// @Failure		500	{object}	RubricaTreeResponse
// @Param			year	query	int	true	"Fiscal year"
// @Router			/v1/rubricas/tree [get]
func GetRubricaTree(c *gin.Context) {
	year, err := yearFromQuery(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RubricaTreeResponse{
			Error: &e,
		})
		return
	}

	tree, err := models.FetchTree(models.DB, year)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RubricaTreeResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusOK, RubricaTreeResponse{Data: tree})
}

// @Summary		Recalculate rubricas
// @Description	Recomputes the allocation of every rubrica of the fiscal year bottom-up and returns the IDs of the changed rubricas
// @Tags			Rubricas
// @Produce		json
// @Success		200	{object}	RecalculateResponse
// @Failure		400	{object}	RecalculateResponse
// @Failure		500	{object}	RecalculateResponse
// @Param			year	query	int	true	"Fiscal year"
// @Router			/v1/rubricas/recalculate [post]
func RecalculateRubricas(c *gin.Context) {
	year, err := yearFromQuery(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RecalculateResponse{
			Error: &e,
		})
		return
	}

	var changed []uuid.UUID
	err = models.Transaction(func(tx *gorm.DB) error {
		changed, err = models.RecalculateFiscalYear(tx, year)
		return err
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RecalculateResponse{
			Error: &e,
		})
		return
	}

	publishRecalculated(year, changed)

	c.JSON(http.StatusOK, RecalculateResponse{Data: changed})
}

// @Summary		Get rubrica
// @Description	Returns a specific rubrica
// @Tags			Rubricas
// @Produce		json
// @Success		200	{object}	RubricaResponse
// @Failure		400	{object}	RubricaResponse
// @Failure		404	{object}	RubricaResponse
// @Failure		500	{object}	RubricaResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/rubricas/{id} [get]
func GetRubrica(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RubricaResponse{
			Error: &s,
		})
		return
	}

	var rubrica models.Rubrica
	err = models.DB.First(&rubrica, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RubricaResponse{
			Error: &s,
		})
		return
	}

	data := newRubrica(c, rubrica)
	c.JSON(http.StatusOK, RubricaResponse{Data: &data})
}

// @Summary		Update rubrica
// @Description	Update an existing rubrica. Only values to be updated need to be specified. Changing the initial allocation or the status recomputes the ancestor chain.
// @Tags			Rubricas
// @Accept			json
// @Produce		json
// @Success		200		{object}	RubricaResponse
// @Failure		400		{object}	RubricaResponse
// @Failure		404		{object}	RubricaResponse
// @Failure		500		{object}	RubricaResponse
// @Param			id		path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			rubrica	body		RubricaUpdateBody	true	"Rubrica"
// @Router			/v1/rubricas/{id} [patch]
func UpdateRubrica(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RubricaResponse{
			Error: &s,
		})
		return
	}

	var rubrica models.Rubrica
	err = models.DB.First(&rubrica, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RubricaResponse{
			Error: &s,
		})
		return
	}

	var body RubricaUpdateBody
	err = httputil.BindData(c, &body)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RubricaResponse{
			Error: &s,
		})
		return
	}

	var changed []uuid.UUID
	err = models.Transaction(func(tx *gorm.DB) error {
		changed, err = models.UpdateRubrica(tx, &rubrica, models.RubricaUpdate{
			Name:              body.Name,
			Status:            body.Status,
			InitialAllocation: body.InitialAllocation,
		})
		return err
	})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RubricaResponse{
			Error: &s,
		})
		return
	}

	broker.Publish(events.Event{Type: events.RubricaUpdated, FiscalYear: rubrica.FiscalYear, AffectedIDs: []uuid.UUID{rubrica.ID}})
	publishRecalculated(rubrica.FiscalYear, changed)

	data := newRubrica(c, rubrica)
	c.JSON(http.StatusOK, RubricaResponse{Data: &data})
}

// @Summary		Delete rubrica
// @Description	Deletes a rubrica. A rubrica that is referenced by expenses or has children is deactivated instead, its expense history stays on record.
// @Tags			Rubricas
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/rubricas/{id} [delete]
func DeleteRubrica(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var rubrica models.Rubrica
	err = models.DB.First(&rubrica, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var changed []uuid.UUID
	err = models.Transaction(func(tx *gorm.DB) error {
		changed, err = models.DeleteRubrica(tx, &rubrica)

		// Referenced rubricas are deactivated instead of deleted
		if errors.Is(err, models.ErrRubricaHasChildren) || errors.Is(err, models.ErrRubricaReferencedByExpense) {
			changed, err = models.DeactivateRubrica(tx, &rubrica)
		}

		return err
	})
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	publishRecalculated(rubrica.FiscalYear, changed)

	c.JSON(http.StatusNoContent, nil)
}

// publishRecalculated notifies subscribers about changed computed
// allocations. Nothing is published when nothing changed.
func publishRecalculated(fiscalYear int, changed []uuid.UUID) {
	if len(changed) == 0 {
		return
	}

	broker.Publish(events.Event{
		Type:        events.RubricasRecalculated,
		FiscalYear:  fiscalYear,
		AffectedIDs: changed,
	})
}
