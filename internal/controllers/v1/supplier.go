package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orcamento-aberto/backend/internal/httputil"
	"github.com/orcamento-aberto/backend/internal/models"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// RegisterSupplierRoutes registers the routes for suppliers with
// the RouterGroup that is passed.
func RegisterSupplierRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsSupplierList)
		r.GET("", GetSuppliers)
		r.POST("", CreateSupplier)
	}

	// Supplier with ID
	{
		r.OPTIONS("/:id", OptionsSupplierDetail)
		r.GET("/:id", GetSupplier)
		r.PATCH("/:id", UpdateSupplier)
		r.DELETE("/:id", DeleteSupplier)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Suppliers
// @Success		204
// @Router			/v1/suppliers [options]
func OptionsSupplierList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Suppliers
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/suppliers/{id} [options]
func OptionsSupplierDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Supplier{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create supplier
// @Description	Creates a new supplier
// @Tags			Suppliers
// @Produce		json
// @Success		201			{object}	SupplierResponse
// @Failure		400			{object}	SupplierResponse
// @Failure		500			{object}	SupplierResponse
// @Param			supplier	body		SupplierEditable	true	"Supplier"
// @Router			/v1/suppliers [post]
func CreateSupplier(c *gin.Context) {
	var editable SupplierEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SupplierResponse{
			Error: &e,
		})
		return
	}

	supplier := editable.model()

	err = models.DB.Create(&supplier).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SupplierResponse{
			Error: &e,
		})
		return
	}

	data := newSupplier(c, supplier)
	c.JSON(http.StatusCreated, SupplierResponse{Data: &data})
}

// @Summary		Get suppliers
// @Description	Returns a list of suppliers
// @Tags			Suppliers
// @Produce		json
// @Success		200	{object}	SupplierListResponse
// @Failure		500	{object}	SupplierListResponse
// @Router			/v1/suppliers [get]
// @Param			name	query	string	false	"Filter by name"
// @Param			kind	query	string	false	"Filter by kind"
// @Param			taxId	query	string	false	"Filter by tax ID"
// @Param			active	query	bool	false	"Is the supplier active?"
// @Param			offset	query	uint	false	"The offset of the first supplier returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of suppliers to return. Defaults to 50."
func GetSuppliers(c *gin.Context) {
	var filter SupplierQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we are filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("normalized_name ASC").
		Where(filter.model(), queryFields...)

	q = nameFilter(q, setFields, filter.Name)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 suppliers and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var suppliers []models.Supplier
	err := q.Find(&suppliers).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SupplierListResponse{
			Error: &e,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SupplierListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Supplier, 0, len(suppliers))
	for _, supplier := range suppliers {
		data = append(data, newSupplier(c, supplier))
	}

	c.JSON(http.StatusOK, SupplierListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get supplier
// @Description	Returns a specific supplier
// @Tags			Suppliers
// @Produce		json
// @Success		200	{object}	SupplierResponse
// @Failure		400	{object}	SupplierResponse
// @Failure		404	{object}	SupplierResponse
// @Failure		500	{object}	SupplierResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/suppliers/{id} [get]
func GetSupplier(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SupplierResponse{
			Error: &e,
		})
		return
	}

	var supplier models.Supplier
	err = models.DB.First(&supplier, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SupplierResponse{
			Error: &e,
		})
		return
	}

	data := newSupplier(c, supplier)
	c.JSON(http.StatusOK, SupplierResponse{Data: &data})
}

// @Summary		Update supplier
// @Description	Updates a supplier. Only values to be updated need to be specified.
// @Tags			Suppliers
// @Accept			json
// @Produce		json
// @Success		200			{object}	SupplierResponse
// @Failure		400			{object}	SupplierResponse
// @Failure		404			{object}	SupplierResponse
// @Failure		500			{object}	SupplierResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			supplier	body		SupplierEditable	true	"Supplier"
// @Router			/v1/suppliers/{id} [patch]
func UpdateSupplier(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SupplierResponse{
			Error: &e,
		})
		return
	}

	var supplier models.Supplier
	err = models.DB.First(&supplier, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SupplierResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, SupplierEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SupplierResponse{
			Error: &e,
		})
		return
	}

	var data SupplierEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SupplierResponse{
			Error: &e,
		})
		return
	}

	// Only apply the fields that were set in the request body, then save
	// the full record so the normalized name stays in sync
	for _, field := range updateFields {
		switch field {
		case "Name":
			supplier.Name = data.Name
		case "Kind":
			supplier.Kind = data.Kind
		case "TaxID":
			supplier.TaxID = data.TaxID
		case "InternalCode":
			supplier.InternalCode = data.InternalCode
		case "Active":
			supplier.Active = data.Active
		}
	}

	err = models.DB.Save(&supplier).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SupplierResponse{
			Error: &e,
		})
		return
	}

	response := newSupplier(c, supplier)
	c.JSON(http.StatusOK, SupplierResponse{Data: &response})
}

// @Summary		Delete supplier
// @Description	Deletes a supplier. A supplier that is referenced by expenses is deactivated instead so the record stays intact.
// @Tags			Suppliers
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/suppliers/{id} [delete]
func DeleteSupplier(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var supplier models.Supplier
	err = models.DB.First(&supplier, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.Transaction(func(tx *gorm.DB) error {
		return models.DeactivateOrDeleteSupplier(tx, &supplier)
	})
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
