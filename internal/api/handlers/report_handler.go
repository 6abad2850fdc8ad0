package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chiesa2k/testeagent/internal/tools"
)

const htmlDoctype = "<!DOCTYPE html>"

type ReportHandler struct {
	registry *tools.Registry
}

func NewReportHandler(registry *tools.Registry) *ReportHandler {
	return &ReportHandler{registry: registry}
}

// YTD renders the management dashboard. Apologies and unavailability
// messages are served as plain text.
func (h *ReportHandler) YTD(c *gin.Context) {
	output, err := h.registry.Invoke(c.Request.Context(), tools.ReportTool, tools.Args{})
	if err != nil {
		errorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	if isHTMLDocument(output) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(output))
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(output))
}

func isHTMLDocument(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), htmlDoctype)
}
