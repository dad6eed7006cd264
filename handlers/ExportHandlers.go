package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"portal/models"
	"portal/repository"
	"portal/services"
	"portal/utils"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// defaultExportFields is the column set used when the request carries no
// fields parameters
var defaultExportFields = []string{
	"State", "Project", "Council", "Program", "Street", "Suburb", "Postcode",
	"Work Type", "Output Type", "Bedrooms", "Output Quantity",
	"Estimated Cost", "Actual Cost", "Start Date", "End Date",
}

func exportFieldValue(field string, project *models.Project, address *models.Address, work *models.Work) interface{} {
	switch field {
	case "State":
		return project.State
	case "Project":
		return project.Name
	case "Council":
		return project.Council.Name
	case "Program":
		if project.Program != nil {
			return project.Program.Name
		}
	case "Street":
		return address.Street
	case "Suburb":
		return address.Suburb
	case "Postcode":
		return address.Postcode
	case "Work Type":
		if work != nil && work.WorkType != nil {
			return work.WorkType.Name
		}
	case "Output Type":
		if work != nil && work.OutputType != nil {
			return work.OutputType.Name
		}
	case "Bedrooms":
		if work != nil && work.Bedrooms != nil {
			return *work.Bedrooms
		}
	case "Output Quantity":
		if work != nil {
			return work.OutputQuantity
		}
	case "Estimated Cost":
		if work != nil && work.EstimatedCost != nil {
			return *work.EstimatedCost
		}
	case "Actual Cost":
		if work != nil && work.ActualCost != nil {
			return *work.ActualCost
		}
	case "Start Date":
		if work != nil && work.StartDate != nil {
			return work.StartDate.Format("02/01/2006")
		}
	case "End Date":
		if work != nil && work.EndDate != nil {
			return work.EndDate.Format("02/01/2006")
		}
	}
	return ""
}

// ExportWorksExcelHandler exports addresses and works to a spreadsheet.
// Requested columns come from repeated fields parameters; an address with
// no works still gets one row so vacant lots are not lost from the export.
// @Summary Export works to Excel
// @Tags Export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param fields query []string false "Columns to export" collectionFormat(multi)
// @Success 200 {file} binary
// @Failure 401 {object} utils.Response
// @Router /api/export/works [get]
func ExportWorksExcelHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		fields := c.QueryArray("fields")
		if len(fields) == 0 {
			fields = defaultExportFields
		}

		query, err := repository.ScopeProjectsToUser(gdb, gdb.Model(&models.Project{}), user.ID)
		if err != nil {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}
		var projects []models.Project
		err = query.
			Preload("Council").
			Preload("Program").
			Preload("Addresses").
			Preload("Addresses.Works").
			Preload("Addresses.Works.WorkType").
			Preload("Addresses.Works.OutputType").
			Find(&projects).Error
		if err != nil {
			utils.ErrorResponse(c, "Failed to load projects", http.StatusInternalServerError)
			return
		}

		f := excelize.NewFile()
		sheet := "Works"
		f.SetSheetName("Sheet1", sheet)

		widths := make([]int, len(fields))
		for col, field := range fields {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, field)
			widths[col] = len(field)
		}

		rowNum := 2
		writeRow := func(project *models.Project, address *models.Address, work *models.Work) {
			for col, field := range fields {
				value := exportFieldValue(field, project, address, work)
				cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
				f.SetCellValue(sheet, cell, value)
				if text := fmt.Sprintf("%v", value); len(text) > widths[col] {
					widths[col] = len(text)
				}
			}
			rowNum++
		}

		for i := range projects {
			project := &projects[i]
			for j := range project.Addresses {
				address := &project.Addresses[j]
				if len(address.Works) == 0 {
					writeRow(project, address, nil)
					continue
				}
				for k := range address.Works {
					writeRow(project, address, &address.Works[k])
				}
			}
		}

		for col := range fields {
			name, _ := excelize.ColumnNumberToName(col + 1)
			f.SetColWidth(sheet, name, name, float64(widths[col]+2))
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment;filename=works_export.xlsx")
		if err := f.Write(c.Writer); err != nil {
			utils.ErrorResponse(c, "Failed to write spreadsheet", http.StatusInternalServerError)
		}
	}
}

// ExportAlertsPDFHandler exports the current report alerts as a PDF
// @Summary Export report alerts to PDF
// @Tags Export
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 401 {object} utils.Response
// @Router /api/export/alerts [get]
func ExportAlertsPDFHandler(db *sql.DB, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		_, projects, err := visibleProjectIDs(gdb, user.ID)
		if err != nil {
			utils.ErrorResponse(c, "No council access", http.StatusForbidden)
			return
		}

		now := time.Now()
		statuses := services.BuildProjectReportStatuses(gdb, projects, now)
		alerts := services.AnalyzeReportAlerts(statuses, now)

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)

		pdf.SetFont("Arial", "B", 16)
		pdf.Cell(190, 10, "Outstanding Report Alerts")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 9)
		pdf.Cell(190, 6, fmt.Sprintf("Generated %s", now.Format("02/01/2006 15:04")))
		pdf.Ln(10)

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(50, 8, "Council", "1", 0, "L", true, 0, "")
		pdf.CellFormat(55, 8, "Project", "1", 0, "L", true, 0, "")
		pdf.CellFormat(60, 8, "Alert", "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 8, "Severity", "1", 0, "C", true, 0, "")
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 9)
		for _, a := range alerts {
			pdf.CellFormat(50, 7, a.Council, "1", 0, "L", false, 0, "")
			pdf.CellFormat(55, 7, a.Project, "1", 0, "L", false, 0, "")
			pdf.CellFormat(60, 7, a.Type, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 7, a.Severity, "1", 0, "C", false, 0, "")
			pdf.Ln(7)
		}
		if len(alerts) == 0 {
			pdf.CellFormat(190, 7, "No outstanding alerts", "1", 0, "C", false, 0, "")
			pdf.Ln(7)
		}

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", "attachment;filename=report_alerts.pdf")
		if err := pdf.Output(c.Writer); err != nil {
			utils.ErrorResponse(c, "Failed to write PDF", http.StatusInternalServerError)
		}
	}
}
