package handler

import (
	"fmt"
	"net/http"

	catalogapp "github.com/catalogsync/backend/internal/application/catalog"
	reportapp "github.com/catalogsync/backend/internal/application/report"
	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ReportExporter renders a custom report as a downloadable file
type ReportExporter interface {
	ContentType() string
	Filename(r *reportapp.CustomReport) string
	CustomReport(r *reportapp.CustomReport) ([]byte, error)
}

// ReportHandler serves aggregate reports over the product store
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
	exporter      ReportExporter
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService, exporter ReportExporter) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		exporter:      exporter,
	}
}

// PercentageResponse is a percentage report
// @Description Percentage report
type PercentageResponse struct {
	Percentage string  `json:"percentage" example:"33.33%"`
	Value      float64 `json:"value" example:"33.33"`
}

func toPercentageResponse(p reportapp.Percentage) PercentageResponse {
	return PercentageResponse{Percentage: p.String(), Value: p.Float()}
}

// NonDeletedPercentageRequest is the query of the non-deleted percentage report
type NonDeletedPercentageRequest struct {
	WithPrice *bool   `form:"withPrice"`
	StartDate *string `form:"startDate"`
	EndDate   *string `form:"endDate"`
}

// CustomReportRequest is the query of a custom report
type CustomReportRequest struct {
	Criteria string `form:"criteria" binding:"required,criterion"`
	Value    string `form:"value"`
}

// CustomReportResponse lists the products matching a custom report
// @Description Custom report result
type CustomReportResponse struct {
	Criteria string                       `json:"criteria" example:"brand"`
	Value    string                       `json:"value" example:"Apple"`
	Count    int                          `json:"count" example:"2"`
	Products []catalogapp.ProductResponse `json:"products"`
}

// DeletedPercentage godoc
// @ID           getDeletedPercentage
// @Summary      Share of deleted products
// @Description  Deleted products over all stored products, in percent.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[PercentageResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /reports/deleted-percentage [get]
func (h *ReportHandler) DeletedPercentage(c *gin.Context) {
	p, err := h.reportService.DeletedPercentage(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPercentageResponse(p))
}

// NonDeletedPercentage godoc
// @ID           getNonDeletedPercentage
// @Summary      Share of non-deleted products
// @Description  Non-deleted products matching the filters over all stored products, rounded to two decimals. startDate and endDate bound the upstream creation date inclusively and must be given together.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        withPrice query bool   false "true counts products with a price, false those without one"
// @Param        startDate query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param        endDate   query string false "End date (YYYY-MM-DD or RFC3339)"
// @Success      200 {object} APIResponse[PercentageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /reports/non-deleted-percentage [get]
func (h *ReportHandler) NonDeletedPercentage(c *gin.Context) {
	var req NonDeletedPercentageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	p, err := h.reportService.NonDeletedPercentage(c.Request.Context(), reportapp.NonDeletedFilter{
		WithPrice: req.WithPrice,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPercentageResponse(p))
}

// CustomReport godoc
// @ID           getCustomReport
// @Summary      Products matching one attribute
// @Description  Lists every product, deleted or not, whose attribute equals value. price and stock compare numerically.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        criteria query string true  "Attribute" Enums(sku, name, brand, model, category, color, price, currency, stock, createdAt, updatedAt)
// @Param        value    query string false "Value to match"
// @Success      200 {object} APIResponse[CustomReportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /reports/custom-report [get]
func (h *ReportHandler) CustomReport(c *gin.Context) {
	r, ok := h.customReport(c)
	if !ok {
		return
	}

	h.Success(c, CustomReportResponse{
		Criteria: r.Criteria.String(),
		Value:    r.Value,
		Count:    r.Count,
		Products: catalogapp.ToProductResponses(r.Products),
	})
}

// ExportCustomReport godoc
// @ID           exportCustomReport
// @Summary      Download a custom report
// @Description  Same query as the custom report, returned as an Excel workbook.
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        criteria query string true  "Attribute" Enums(sku, name, brand, model, category, color, price, currency, stock, createdAt, updatedAt)
// @Param        value    query string false "Value to match"
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /reports/custom-report/export [get]
func (h *ReportHandler) ExportCustomReport(c *gin.Context) {
	r, ok := h.customReport(c)
	if !ok {
		return
	}

	data, err := h.exporter.CustomReport(r)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.exporter.Filename(r)))
	c.Data(http.StatusOK, h.exporter.ContentType(), data)
}

// customReport binds the query and runs the report, answering the request on failure
func (h *ReportHandler) customReport(c *gin.Context) (*reportapp.CustomReport, bool) {
	var req CustomReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if middleware.HasTagError(err, middleware.CriterionTag) {
			h.HandleError(c, catalog.ErrInvalidCriteria.WithMessage("Invalid criteria: "+c.Query("criteria")))
			return nil, false
		}
		middleware.HandleValidationError(c, err)
		return nil, false
	}

	r, err := h.reportService.CustomReport(c.Request.Context(), req.Criteria, req.Value)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return r, true
}
