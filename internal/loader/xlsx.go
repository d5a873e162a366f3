package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"

	"github.com/Carrerajorge/Hola-sub011/internal/grid"
	"github.com/Carrerajorge/Hola-sub011/internal/logging"
)

// Excel sizing units to pixels: column widths are in character units
// (~8.3px each), row heights in points (96/72 px per pt).
const (
	xlsxColUnitPx = 8.3
	xlsxPtToPx    = 1.333
)

// OpenXLSX parses the first worksheet of an XLSX file, harvesting values,
// formulas, basic formatting and the per-row/column sizing overrides.
func OpenXLSX(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	wb, err := spreadsheet.Read(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}
	sheet := sheets[0]

	// Pass 1: extent
	maxRow, maxCol := 0, 0
	for _, row := range sheet.Rows() {
		if ri := int(row.RowNumber()) - 1; ri > maxRow {
			maxRow = ri
		}
		for _, cell := range row.Cells() {
			colName, err := cell.Column()
			if err != nil {
				continue
			}
			if ci := int(reference.ColumnToIndex(colName)); ci > maxCol {
				maxCol = ci
			}
		}
	}

	rows := maxRow + 1
	cols := maxCol + 1
	if rows < minFileRows {
		rows = minFileRows
	}
	if cols < minFileCols {
		cols = minFileCols
	}
	g := grid.New(rows, cols)

	// Column width overrides, in pixels
	colWidths := make(map[int]float64)
	for c := 0; c <= maxCol; c++ {
		colObj := sheet.Column(uint32(c + 1))
		if colObj.X().CustomWidthAttr != nil && *colObj.X().CustomWidthAttr && colObj.X().WidthAttr != nil {
			colWidths[c] = *colObj.X().WidthAttr * xlsxColUnitPx
		}
	}

	// Pass 2: rows, heights, cells
	rowHeights := make(map[int]float64)
	for _, row := range sheet.Rows() {
		ri := int(row.RowNumber()) - 1
		if row.X().CustomHeightAttr != nil && *row.X().CustomHeightAttr && row.X().HtAttr != nil {
			rowHeights[ri] = *row.X().HtAttr * xlsxPtToPx
		}

		for _, cell := range row.Cells() {
			colName, err := cell.Column()
			if err != nil {
				continue
			}
			ci := int(reference.ColumnToIndex(colName))

			gc := grid.Cell{Value: cell.GetFormattedValue()}
			if xc := cell.X(); xc.F != nil && xc.F.Content != "" {
				gc.Formula = "=" + strings.TrimPrefix(xc.F.Content, "=")
			}
			if xc := cell.X(); xc.SAttr != nil {
				applyCellStyle(wb, *xc.SAttr, &gc)
			}
			g.PutCell(ri, ci, gc)
		}
	}

	logging.Loader.Printf("[Open] %s: sheet %q, %d cells, %d col overrides, %d row overrides",
		path, sheet.Name(), g.Len(), len(colWidths), len(rowHeights))

	return &FileSource{
		name:       path,
		backing:    g,
		colWidths:  colWidths,
		rowHeights: rowHeights,
	}, nil
}

// applyCellStyle copies font, fill and alignment attributes for a style ID
// onto the cell.
func applyCellStyle(wb *spreadsheet.Workbook, styleID uint32, gc *grid.Cell) {
	xfs := wb.StyleSheet.X().CellXfs
	if xfs == nil || int(styleID) >= len(xfs.Xf) {
		return
	}
	xf := xfs.Xf[styleID]

	if font := fontForStyle(wb, xf); font != nil {
		gc.Bold = boolPropSet(font.B)
		gc.Italic = boolPropSet(font.I)
		gc.Underline = len(font.U) > 0
		if len(font.Name) > 0 {
			gc.Font = font.Name[0].ValAttr
		}
		if len(font.Color) > 0 && font.Color[0].RgbAttr != nil {
			gc.Color = normalizeColor(*font.Color[0].RgbAttr)
		}
	}

	if fill := fillForStyle(wb, xf); fill != nil && fill.PatternFill != nil {
		if fg := fill.PatternFill.FgColor; fg != nil && fg.RgbAttr != nil {
			gc.Background = normalizeColor(*fg.RgbAttr)
		}
	}

	if xf.Alignment != nil {
		switch xf.Alignment.HorizontalAttr.String() {
		case "center", "centerContinuous", "distributed":
			gc.Align = "center"
		case "right":
			gc.Align = "right"
		case "justify":
			gc.Align = "justify"
		case "left":
			gc.Align = "left"
		}
	}
}

func fontForStyle(wb *spreadsheet.Workbook, xf *sml.CT_Xf) *sml.CT_Font {
	if xf.FontIdAttr == nil {
		return nil
	}
	fonts := wb.StyleSheet.X().Fonts
	idx := int(*xf.FontIdAttr)
	if fonts == nil || idx < 0 || idx >= len(fonts.Font) {
		return nil
	}
	return fonts.Font[idx]
}

func fillForStyle(wb *spreadsheet.Workbook, xf *sml.CT_Xf) *sml.CT_Fill {
	if xf.FillIdAttr == nil {
		return nil
	}
	fills := wb.StyleSheet.X().Fills
	idx := int(*xf.FillIdAttr)
	if fills == nil || idx < 0 || idx >= len(fills.Fill) {
		return nil
	}
	return fills.Fill[idx]
}

// boolPropSet reports whether a boolean font property is present and true.
// A property element without an explicit val attribute means true.
func boolPropSet(props []*sml.CT_BooleanProperty) bool {
	if len(props) == 0 {
		return false
	}
	return props[0].ValAttr == nil || *props[0].ValAttr
}

// normalizeColor converts an 8-digit ARGB hex string to 6-digit RGB.
func normalizeColor(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 8 {
		return hex[2:]
	}
	return hex
}
