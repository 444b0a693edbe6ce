package handler

import (
	catalogapp "github.com/catalogsync/backend/internal/application/catalog"
	"github.com/catalogsync/backend/internal/interfaces/http/dto"
	"github.com/catalogsync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// DeleteAllMessage is returned after the product store has been cleared
const DeleteAllMessage = "All products have been deleted successfully."

// ProductHandler handles product listing and local deletion
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Description  Returns one page of five non-deleted products. Every filter is an exact, case-sensitive match.
// @Tags         products
// @Produce      json
// @Param        page      query int    false "Page number (default 1)" minimum(1)
// @Param        sku       query string false "SKU"
// @Param        name      query string false "Name"
// @Param        brand     query string false "Brand"
// @Param        model     query string false "Model"
// @Param        category  query string false "Category"
// @Param        color     query string false "Color"
// @Param        price     query number false "Price"
// @Param        currency  query string false "Currency"
// @Param        stock     query int    false "Stock"
// @Success      200 {object} PagedResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var req catalogapp.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := req.PageOrDefault()
	products, err := h.productService.List(c.Request.Context(), page, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, dto.PageMeta{Page: page, Count: len(products)})
}

// Delete godoc
// @ID           deleteProduct
// @Summary      Mark a product as deleted
// @Description  Sets the local deletion flag. The flag survives later synchronizations. Served on both POST and DELETE.
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	product, err := h.productService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// DeleteAll godoc
// @ID           deleteAllProducts
// @Summary      Delete every product
// @Description  Physically removes every stored product. Fails when the store is already empty.
// @Tags         products
// @Produce      json
// @Success      200 {object} APIResponse[string]
// @Failure      400 {object} ErrorResponse
// @Router       /products/all [delete]
func (h *ProductHandler) DeleteAll(c *gin.Context) {
	if err := h.productService.DeleteAll(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, DeleteAllMessage)
}
