// Package export produces spreadsheet reports of a template's field layout.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/mergefields"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
)

const fieldsSheet = "Fields"

var FieldsHeader = []string{
	"Page",
	"Field ID",
	"Type",
	"Label",
	"X",
	"Y",
	"Width",
	"Height",
	"Required",
	"Merge Token",
	"Merge Label",
	"Default Value",
	"Options",
}

// FieldsWorkbook renders one row per field, ordered as stored.
func FieldsWorkbook(tpl *models.Template, reg *mergefields.Registry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", fieldsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range FieldsHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(fieldsSheet, cell, h)
		f.SetCellStyle(fieldsSheet, cell, cell, headerStyle)
	}

	for r, field := range tpl.Fields {
		row := r + 2
		mergeLabel := ""
		if field.MergeField != "" && reg != nil {
			mergeLabel = reg.Label(field.MergeField)
		}
		values := []interface{}{
			field.Page,
			field.ID,
			string(field.Type),
			field.Label,
			field.Position.X,
			field.Position.Y,
			field.Position.Width,
			field.Position.Height,
			yesNo(field.Required),
			field.MergeField,
			mergeLabel,
			field.DefaultValue,
			strings.Join(field.Options, ", "),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			f.SetCellValue(fieldsSheet, cell, v)
		}
	}

	if err := f.SetColWidth(fieldsSheet, "A", "M", 16); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
