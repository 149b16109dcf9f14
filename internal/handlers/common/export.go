package common

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"millflow/internal/audit"
	"millflow/internal/response"
	"millflow/internal/validation"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func exportFormat(w http.ResponseWriter, r *http.Request) (string, bool) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	ve := &validation.ValidationErrors{}
	validation.ValidateEnum(ve, "format", format, validation.ValidExportFormats)
	if ve.HasErrors() {
		response.Err(w, ve.Error(), 400)
		return "", false
	}
	return format, true
}

// ExportWorkOrders exports work orders to CSV or Excel.
func (h *Handler) ExportWorkOrders(w http.ResponseWriter, r *http.Request) {
	format, ok := exportFormat(w, r)
	if !ok {
		return
	}
	wos, err := h.Svc.ListWorkOrders(r.Context())
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}

	headers := []string{"WO Number", "SO Number", "Client", "Priority", "Status", "Approval", "Production", "Delivery Date", "Expected Completion", "Operations", "Material Request", "Created At"}
	var data [][]string
	for _, wo := range wos {
		data = append(data, []string{
			wo.ID, wo.SONumber, wo.ClientName, wo.Priority, wo.Status, wo.ApprovalStatus, wo.ProductionStatus,
			wo.DeliveryDate, wo.ExpectedCompletion, strings.Join(wo.RequiredOperations, "; "),
			wo.MaterialRequestStatus, wo.CreatedAt,
		})
	}

	h.logExport(r, "workorders", format, len(data))
	if format == "xlsx" {
		ExportExcel(w, "WorkOrders", headers, data)
	} else {
		ExportCSV(w, "work_orders.csv", headers, data)
	}
}

// ExportProduction exports production records to CSV or Excel.
func (h *Handler) ExportProduction(w http.ResponseWriter, r *http.Request) {
	format, ok := exportFormat(w, r)
	if !ok {
		return
	}
	views, err := h.Svc.ListProduction(r.Context())
	if err != nil {
		response.Fail(w, h.Log, err)
		return
	}

	headers := []string{"Production ID", "WO Number", "Client", "Team Leader", "Operators", "Completed Operations", "Total Operations", "Final Status", "Started At", "Completed At"}
	var data [][]string
	for _, v := range views {
		final := v.FinalStatus
		if final == "" {
			final = "in progress"
		}
		data = append(data, []string{
			v.ID, v.WOID, v.ClientName, v.TeamLeader, strings.Join(v.Operators, ", "),
			strconv.Itoa(v.CompletedOperations), strconv.Itoa(v.TotalOperations), final, v.StartedAt, v.CompletedAt,
		})
	}

	h.logExport(r, "production", format, len(data))
	if format == "xlsx" {
		ExportExcel(w, "Production", headers, data)
	} else {
		ExportCSV(w, "production.csv", headers, data)
	}
}

func (h *Handler) logExport(r *http.Request, module, format string, count int) {
	err := audit.Log(r.Context(), h.Svc.Store(), audit.GetUsername(r), audit.ActionExport, module, "",
		fmt.Sprintf("Exported %d %s records as %s", count, module, format))
	if err != nil {
		h.Log.Warn("export audit failed", zap.Error(err))
	}
}

// ExportCSV writes data to CSV format.
func ExportCSV(w http.ResponseWriter, filename string, headers []string, data [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		http.Error(w, "Failed to write CSV headers", 500)
		return
	}
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			http.Error(w, "Failed to write CSV row", 500)
			return
		}
	}
}

// ExportExcel writes data to Excel format.
func ExportExcel(w http.ResponseWriter, sheetName string, headers []string, data [][]string) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		http.Error(w, "Failed to create Excel sheet", 500)
		return
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		http.Error(w, "Failed to create header style", 500)
		return
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(sheetName, "A", last, 18)

	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", strings.ToLower(sheetName)))

	if err := f.Write(w); err != nil {
		http.Error(w, "Failed to write Excel file", 500)
		return
	}
}
