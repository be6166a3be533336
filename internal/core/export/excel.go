package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter writes a single-sheet workbook using excelize
type ExcelExporter struct {
	sheetName string
}

func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{sheetName: "Report"}
}

func (e *ExcelExporter) Export(data *Table, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	row := 1
	if data.Title != "" {
		titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
		if err != nil {
			return fmt.Errorf("failed to create title style: %w", err)
		}
		cell := cellName(1, row)
		f.SetCellValue(e.sheetName, cell, data.Title)
		f.SetCellStyle(e.sheetName, cell, cell, titleStyle)
		row++
		if data.Description != "" {
			f.SetCellValue(e.sheetName, cellName(1, row), data.Description)
			row++
		}
		row++
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: data.Style.FontSize, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{stripHash(data.Style.HeaderBgColor)}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	headerRow := row
	for col, header := range data.Headers {
		cell := cellName(col+1, row)
		f.SetCellValue(e.sheetName, cell, header)
		f.SetCellStyle(e.sheetName, cell, cell, headerStyle)
		if width, ok := data.Style.ColumnWidths[col]; ok {
			name, _ := excelize.ColumnNumberToName(col + 1)
			f.SetColWidth(e.sheetName, name, name, width)
		}
	}
	row++

	odd, err := e.rowStyle(f, data.Style, data.Style.RowBgColor1)
	if err != nil {
		return err
	}
	even := odd
	if data.Style.AlternateRows {
		if even, err = e.rowStyle(f, data.Style, data.Style.RowBgColor2); err != nil {
			return err
		}
	}

	for i, values := range data.Rows {
		style := odd
		if i%2 == 1 {
			style = even
		}
		for col, v := range values {
			cell := cellName(col+1, row)
			f.SetCellValue(e.sheetName, cell, v)
			f.SetCellStyle(e.sheetName, cell, cell, style)
		}
		row++
	}

	if data.Style.FreezeHeader {
		f.SetPanes(e.sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      headerRow,
			TopLeftCell: cellName(1, headerRow+1),
			ActivePane:  "bottomLeft",
		})
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func (e *ExcelExporter) rowStyle(f *excelize.File, style Style, bg string) (int, error) {
	s := &excelize.Style{Font: &excelize.Font{Size: style.FontSize}}
	if bg != "" && bg != "#FFFFFF" {
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{stripHash(bg)}}
	}
	id, err := f.NewStyle(s)
	if err != nil {
		return 0, fmt.Errorf("failed to create row style: %w", err)
	}
	return id, nil
}

func (e *ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *ExcelExporter) Extension() string {
	return ".xlsx"
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func stripHash(color string) string {
	if len(color) > 0 && color[0] == '#' {
		return color[1:]
	}
	return color
}
