// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/giftcraft/storefront/internal/catalog"
	"github.com/giftcraft/storefront/internal/filterstate"
	"github.com/giftcraft/storefront/internal/strapi"
	"github.com/giftcraft/storefront/internal/utils"
)

type ProductHandler struct {
	catalogService *catalog.Service
	taxonomies     *catalog.Taxonomies
	pageSize       int
}

func NewProductHandler(catalogService *catalog.Service, taxonomies *catalog.Taxonomies, pageSize int) *ProductHandler {
	if pageSize < 1 {
		pageSize = strapi.DefaultPageSize
	}
	return &ProductHandler{
		catalogService: catalogService,
		taxonomies:     taxonomies,
		pageSize:       pageSize,
	}
}

// GET /proxy/products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	state := filterstate.FromQuery(c.Request.URL.Query())
	query := state.Query(h.pageSize)

	result, err := h.catalogService.Search(c.Request.Context(), query)
	if err != nil {
		// A failed fetch degrades to an empty listing; the storefront
		// renders an empty state instead of an error page.
		logrus.WithError(err).Warn("Product search failed, returning empty page")
		result = catalog.Result{Products: []strapi.Product{}, Page: 1, PageSize: h.pageSize}
	}

	utils.SuccessResponseWithMeta(c, result.Products, gin.H{
		"pagination": gin.H{
			"page":      result.Page,
			"pageSize":  result.PageSize,
			"pageCount": result.PageCount,
			"total":     result.Total,
		},
		"merged": result.Merged,
	})
}

// GET /proxy/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		utils.BadRequestResponse(c, "Missing product id", nil)
		return
	}

	product, err := h.catalogService.Get(c.Request.Context(), id)
	if err != nil {
		logrus.WithError(err).WithField("product_id", id).Error("Product fetch failed")
		utils.InternalErrorResponse(c, "")
		return
	}
	if product == nil {
		utils.NotFoundResponse(c, "Product")
		return
	}

	utils.SuccessResponse(c, product)
}

// GET /proxy/taxonomies
func (h *ProductHandler) GetTaxonomies(c *gin.Context) {
	set, err := h.taxonomies.GetAll(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Warn("Taxonomy fetch failed, returning empty lists")
	}

	utils.SuccessResponse(c, set)
}
