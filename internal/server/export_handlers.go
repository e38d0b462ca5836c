package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timeledger/internal/exporter"
	"timeledger/internal/models"
	"timeledger/internal/repository"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Non-admin exports are limited to the caller's own records.
func exportTaskFilter(c *gin.Context) repository.TaskActivityFilter {
	claims := identity(c)
	filter := repository.TaskActivityFilter{Username: c.Query("username")}
	if claims.Role != models.RoleAdmin {
		filter.Username = claims.Username
	}
	return filter
}

func exportExpenseFilter(c *gin.Context) repository.ExpenseFilter {
	claims := identity(c)
	filter := repository.ExpenseFilter{
		Username: c.Query("username"),
		Status:   c.Query("status"),
	}
	if claims.Role != models.RoleAdmin {
		filter.Username = claims.Username
	}
	return filter
}

func (h *Handlers) sendExport(c *gin.Context, filename, contentType string, content []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, content)
}

// ExportTasksCSV handles GET /api/v1/export/tasks.csv
func (h *Handlers) ExportTasksCSV(c *gin.Context) {
	activities, err := h.tasks.List(c.Request.Context(), exportTaskFilter(c))
	if err != nil {
		h.respondRepoError(c, err, "export tasks")
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteTaskActivitiesCSV(&buf, activities); err != nil {
		h.logger.Error("CSV export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "export failed"})
		return
	}
	h.sendExport(c, "tasks.csv", contentTypeCSV, buf.Bytes())
}

// ExportTasksXLSX handles GET /api/v1/export/tasks.xlsx
func (h *Handlers) ExportTasksXLSX(c *gin.Context) {
	activities, err := h.tasks.List(c.Request.Context(), exportTaskFilter(c))
	if err != nil {
		h.respondRepoError(c, err, "export tasks")
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteTaskActivitiesXLSX(&buf, activities); err != nil {
		h.logger.Error("XLSX export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "export failed"})
		return
	}
	h.sendExport(c, "tasks.xlsx", contentTypeXLSX, buf.Bytes())
}

// ExportExpensesCSV handles GET /api/v1/export/expenses.csv
func (h *Handlers) ExportExpensesCSV(c *gin.Context) {
	expenses, err := h.expenses.List(c.Request.Context(), exportExpenseFilter(c))
	if err != nil {
		h.respondRepoError(c, err, "export expenses")
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteExpensesCSV(&buf, expenses); err != nil {
		h.logger.Error("CSV export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "export failed"})
		return
	}
	h.sendExport(c, "expenses.csv", contentTypeCSV, buf.Bytes())
}

// ExportExpensesXLSX handles GET /api/v1/export/expenses.xlsx
func (h *Handlers) ExportExpensesXLSX(c *gin.Context) {
	expenses, err := h.expenses.List(c.Request.Context(), exportExpenseFilter(c))
	if err != nil {
		h.respondRepoError(c, err, "export expenses")
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteExpensesXLSX(&buf, expenses); err != nil {
		h.logger.Error("XLSX export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "export failed"})
		return
	}
	h.sendExport(c, "expenses.xlsx", contentTypeXLSX, buf.Bytes())
}
