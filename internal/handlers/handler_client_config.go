package handlers

import (
	"maps"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/koperasi_ledger/internal/dto"
	"github.com/SscSPs/koperasi_ledger/internal/platform/config"
)

// clientConfigHandler serves the static dashboard configuration.
type clientConfigHandler struct {
	resp dto.ClientConfigResponse
}

func registerClientConfigRoutes(rg *gin.RouterGroup, cfg *config.Config) {
	jenis := maps.Clone(cfg.ClientJenis)
	if jenis == nil {
		jenis = map[string]int64{}
	}
	h := &clientConfigHandler{resp: dto.ClientConfigResponse{Jenis: jenis}}
	rg.GET("/client-config", h.getClientConfig)
}

// getClientConfig godoc
// @Summary Dashboard configuration
// @Description Returns the jenis simpanan mapping the dashboard needs at startup
// @Tags config
// @Produce json
// @Success 200 {object} dto.ClientConfigResponse
// @Router /client-config [get]
func (h *clientConfigHandler) getClientConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.resp)
}
