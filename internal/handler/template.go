package handler

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/necfill/api/pkg/response"
)

// TemplateHandler serves the default-format workbook so operators can start
// from headers that match the mapping exactly.
type TemplateHandler struct {
	path string
}

func NewTemplateHandler(path string) *TemplateHandler {
	return &TemplateHandler{path: path}
}

// Download handles GET /download-template
// @Summary      Download the default workbook format
// @Tags         Generate
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} binary
// @Failure      404 {object} response.ErrorResponse
// @Router       /download-template [get]
func (h *TemplateHandler) Download(c *fiber.Ctx) error {
	if _, err := os.Stat(h.path); err != nil {
		return response.NotFound(c, "Default workbook format not found on server")
	}
	return c.Download(h.path, filepath.Base(h.path))
}
