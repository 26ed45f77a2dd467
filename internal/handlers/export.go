package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
	"spendwise/internal/money"
)

const exportSheet = "Expenses"

var exportHeader = []string{"Date", "Category", "Amount", "Description"}

// ExportExpenses streams the caller's expenses as CSV or XLSX.
// @Summary     Export expenses
// @Description Download the authenticated user's expenses, most recent date first
// @Tags        expenses
// @Produce     text/csv
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       format   query string false "csv (default) or xlsx"
// @Param       from     query string false "First date (YYYY-MM-DD), inclusive"
// @Param       to       query string false "Last date (YYYY-MM-DD), inclusive"
// @Param       category query string false "Category, case-insensitive"
// @Success     200 {file} file "Export file"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/export [get]
func (h *ExpenseHandler) ExportExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindingError(err))
		return
	}
	filter, err := query.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if query.Format == "xlsx" {
		writeXLSX(c, expenses)
		return
	}
	writeCSV(c, expenses)
}

func exportRow(e *models.Expense) []string {
	description := ""
	if e.Description != nil {
		description = *e.Description
	}
	return []string{
		e.Date.UTC().Format(models.DateLayout),
		e.Category,
		money.FormatCents(e.Amount),
		description,
	}
}

// csvText prefixes user text that a spreadsheet would evaluate as a formula
// with a single quote so it is shown literally.
func csvText(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

func exportFilename(ext string) string {
	return fmt.Sprintf("attachment; filename=\"expenses_%s.%s\"", time.Now().UTC().Format("20060102"), ext)
}

func writeCSV(c *gin.Context, expenses []models.Expense) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", exportFilename("csv"))
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(exportHeader)
	for i := range expenses {
		row := exportRow(&expenses[i])
		row[1], row[3] = csvText(row[1]), csvText(row[3])
		_ = writer.Write(row)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		logger.Get().Warnw("csv export interrupted", "error", err)
	}
}

func writeXLSX(c *gin.Context, expenses []models.Expense) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	for i := range expenses {
		e := &expenses[i]
		row := exportRow(e)
		cells := []interface{}{row[0], row[1], float64(e.Amount) / 100, row[3]}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}
		if err := f.SetSheetRow(exportSheet, cell, &cells); err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "A", 12)
	_ = f.SetColWidth(exportSheet, "B", "B", 18)
	_ = f.SetColWidth(exportSheet, "C", "C", 12)
	_ = f.SetColWidth(exportSheet, "D", "D", 40)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", exportFilename("xlsx"))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.Get().Warnw("xlsx export interrupted", "error", err)
	}
}
