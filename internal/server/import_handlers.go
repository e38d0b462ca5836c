package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timeledger/internal/importer"
)

// importFile extracts the multipart "file" field, bounded by the
// configured upload limit.
func (h *Handlers) importFile(c *gin.Context) (io.ReadCloser, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Import.MaxUploadBytes)

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field 'file' is required")
		return nil, false
	}
	return file, true
}

func (h *Handlers) respondSummary(c *gin.Context, summary *importer.Summary, err error, action string) {
	if err != nil {
		h.logger.Error("Import failed", zap.String("action", action), zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	// The summary is the documented response shape, no envelope.
	c.JSON(http.StatusOK, summary)
}

// ImportTasks handles POST /api/v1/import/tasks. Rows with no username
// column fall back to the caller.
func (h *Handlers) ImportTasks(c *gin.Context) {
	file, ok := h.importFile(c)
	if !ok {
		return
	}
	defer file.Close()

	summary, err := h.importer.ImportTaskActivities(c.Request.Context(), file, identity(c).Username)
	h.respondSummary(c, summary, err, "import tasks")
}

// ImportExpenses handles POST /api/v1/import/expenses
func (h *Handlers) ImportExpenses(c *gin.Context) {
	file, ok := h.importFile(c)
	if !ok {
		return
	}
	defer file.Close()

	summary, err := h.importer.ImportExpenses(c.Request.Context(), file, identity(c).Username)
	h.respondSummary(c, summary, err, "import expenses")
}

// ImportDropdowns handles POST /api/v1/import/dropdowns
func (h *Handlers) ImportDropdowns(c *gin.Context) {
	file, ok := h.importFile(c)
	if !ok {
		return
	}
	defer file.Close()

	summary, err := h.importer.ImportDropdownValues(c.Request.Context(), file)
	h.respondSummary(c, summary, err, "import dropdowns")
}
