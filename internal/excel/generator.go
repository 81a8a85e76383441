package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/clm-workflow/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the approvals register: a summary sheet with totals per
// type and status, and a detail sheet with one row per approval.
func (g *Generator) Generate(register model.ApprovalsRegister) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, register); err != nil {
		return nil, err
	}

	detailSheet := "Approvals"
	file.NewSheet(detailSheet)
	if err := g.writeDetail(file, detailSheet, register); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, register model.ApprovalsRegister) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	byType := map[model.ApprovalType]int{}
	byStatus := map[model.ApprovalStatus]int{}
	for _, row := range register.Rows {
		byType[row.Type]++
		byStatus[row.Status]++
	}

	set("A1", "Period start")
	set("B1", formatDate(register.PeriodStart))
	set("A2", "Period end")
	set("B2", formatDate(register.PeriodEnd))
	set("A3", "Total approvals")
	set("B3", len(register.Rows))

	tableRow := 5
	set(fmt.Sprintf("A%d", tableRow), "Type")
	set(fmt.Sprintf("B%d", tableRow), "Count")
	for i, t := range []model.ApprovalType{model.ApprovalTypeLegal, model.ApprovalTypeFinance} {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), string(t))
		set(fmt.Sprintf("B%d", row), byType[t])
	}

	tableRow = 9
	set(fmt.Sprintf("A%d", tableRow), "Status")
	set(fmt.Sprintf("B%d", tableRow), "Count")
	statuses := []model.ApprovalStatus{
		model.ApprovalStatusPending,
		model.ApprovalStatusApproved,
		model.ApprovalStatusRejected,
		model.ApprovalStatusSuperseded,
	}
	for i, status := range statuses {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), string(status))
		set(fmt.Sprintf("B%d", row), byStatus[status])
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 16)
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, register model.ApprovalsRegister) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Contract reference",
		"Contract title",
		"Contract status",
		"Approval type",
		"Approval status",
		"Assigned to",
		"Comment",
		"Due date",
		"Created",
		"Resolved",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, row := range register.Rows {
		values := []interface{}{
			row.ContractReference,
			row.ContractTitle,
			string(row.ContractStatus),
			string(row.Type),
			string(row.Status),
			row.ActorName,
			derefString(row.Comment),
			formatOptionalDate(row.DueDate),
			formatDate(row.CreatedAt),
			formatOptionalDate(row.ResolvedAt),
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			set(cell, value)
		}
	}

	_ = file.SetColWidth(sheet, "A", "B", 28)
	_ = file.SetColWidth(sheet, "C", "F", 20)
	_ = file.SetColWidth(sheet, "G", "G", 40)
	_ = file.SetColWidth(sheet, "H", "J", 14)
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
