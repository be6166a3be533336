package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Format is an export file format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

// ParseFormat accepts the format names used on the console API and in config
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// Exporter writes a table in one file format
type Exporter interface {
	Export(data *Table, w io.Writer) error
	ContentType() string
	Extension() string
}

// Table is a titled two-dimensional dataset
type Table struct {
	Title       string
	Description string
	CreatedAt   time.Time

	Headers []string
	Rows    [][]interface{}

	Style Style
}

// Style holds the presentation knobs the Excel and PDF exporters honor
type Style struct {
	HeaderBgColor string
	AlternateRows bool
	RowBgColor1   string
	RowBgColor2   string
	FontSize      float64
	FreezeHeader  bool
	ColumnWidths  map[int]float64
}

func DefaultStyle() Style {
	return Style{
		HeaderBgColor: "#25D366",
		AlternateRows: true,
		RowBgColor1:   "#FFFFFF",
		RowBgColor2:   "#F2F2F2",
		FontSize:      10,
		FreezeHeader:  true,
		ColumnWidths:  map[int]float64{0: 32, 1: 16},
	}
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", t)
	}
}
