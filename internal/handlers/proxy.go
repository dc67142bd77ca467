// internal/handlers/proxy.go
package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/giftcraft/storefront/internal/services"
	"github.com/giftcraft/storefront/internal/utils"
)

type ProxyHandler struct {
	proxyService *services.ProxyService
}

func NewProxyHandler(proxyService *services.ProxyService) *ProxyHandler {
	return &ProxyHandler{proxyService: proxyService}
}

// Any /proxy/* — wired through NoRoute so the dedicated product routes
// can coexist with the wildcard.
func (h *ProxyHandler) Forward(c *gin.Context) {
	path := c.Param("path")
	if path == "" {
		path = strings.TrimPrefix(c.Request.URL.Path, "/proxy")
	}

	resp, err := h.proxyService.Forward(
		c.Request.Context(),
		c.Request.Method,
		path,
		c.Request.URL.Query(),
		c.Request.Header,
		c.Request.Body,
	)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "CMS is unreachable", nil)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
	c.Status(resp.StatusCode)
	io.Copy(c.Writer, resp.Body)
}
