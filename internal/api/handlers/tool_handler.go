package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/chiesa2k/testeagent/internal/tools"
)

type ToolHandler struct {
	registry *tools.Registry
}

func NewToolHandler(registry *tools.Registry) *ToolHandler {
	return &ToolHandler{registry: registry}
}

type invokeResponse struct {
	Tool   string `json:"tool"`
	Output string `json:"output"`
	HTML   bool   `json:"html"`
}

// List returns the tool catalogue
func (h *ToolHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.registry.List()})
}

// Invoke runs one tool. An empty body means no arguments.
func (h *ToolHandler) Invoke(c *gin.Context) {
	name := c.Param("name")
	tool, ok := h.registry.Lookup(name)
	if !ok {
		errorResponse(c, http.StatusNotFound, "unknown tool: "+name)
		return
	}

	var args tools.Args
	if err := c.ShouldBindJSON(&args); err != nil && !errors.Is(err, io.EOF) {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	output, err := h.registry.Invoke(c.Request.Context(), name, args)
	if err != nil {
		errorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	c.JSON(http.StatusOK, invokeResponse{Tool: name, Output: output, HTML: tool.HTML && isHTMLDocument(output)})
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Int("status", statusCode).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
