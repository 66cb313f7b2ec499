package benchmark

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// headerColumn is one fixed leading column every worksheet carries
// before its per-toolchain data columns begin (spec §4.5 "Spreadsheet
// emitter": "Columns are toolchains, interned on first encounter,
// allocating stable IDs" implies the row key columns precede them),
// grounded on
// original_source/solx-benchmark-converter/src/output/xlsx/mod.rs's
// `Worksheet::new(name, vec![("Project", 15), ...])` call sites.
type headerColumn struct {
	Title string
	Width float64
}

// Worksheet is one sheet of the benchmark workbook: a set of fixed
// row-identifying columns (project/contract/function) followed by one
// data column per toolchain, interned by ID on first use.
type Worksheet struct {
	file *excelize.File
	name string

	headers []headerColumn

	rowKeys []string
	rowIdx  map[string]int // row key -> 1-based sheet row

	toolchainCols map[int]int // toolchain ID -> 1-based sheet column
	nextDataCol   int
}

// newWorksheet creates sheet within file with the given leading
// header columns, writing their titles and widths immediately.
func newWorksheet(file *excelize.File, name string, headers []headerColumn) (*Worksheet, error) {
	if _, err := file.NewSheet(name); err != nil {
		return nil, fmt.Errorf("benchmark: creating worksheet %q: %w", name, err)
	}
	w := &Worksheet{
		file:          file,
		name:          name,
		headers:       headers,
		rowIdx:        map[string]int{},
		toolchainCols: map[int]int{},
		nextDataCol:   len(headers) + 1,
	}
	for i, h := range headers {
		col := i + 1
		axis, err := excelize.CoordinatesToCellName(col, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(name, axis, h.Title); err != nil {
			return nil, err
		}
		colName, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return nil, err
		}
		if err := file.SetColWidth(name, colName, colName, h.Width); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// AddToolchainColumn allocates (or reuses) the data column for
// toolchainID, writing its header label on first use.
func (w *Worksheet) AddToolchainColumn(toolchainName string, toolchainID int) error {
	if _, ok := w.toolchainCols[toolchainID]; ok {
		return nil
	}
	col := w.nextDataCol
	w.nextDataCol++
	w.toolchainCols[toolchainID] = col

	axis, err := excelize.CoordinatesToCellName(col, 1)
	if err != nil {
		return err
	}
	return w.file.SetCellValue(w.name, axis, toolchainName)
}

// rowKey identifies a row by its (project, contract, function) triple.
func rowKey(project string, contract, function *string) string {
	key := project
	if contract != nil {
		key += "\x00" + *contract
	}
	if function != nil {
		key += "\x00" + *function
	}
	return key
}

// rowFor locates or creates the sheet row for (project, contract,
// function), writing the fixed header-column values on first use.
func (w *Worksheet) rowFor(project string, contract, function *string) (int, error) {
	key := rowKey(project, contract, function)
	if row, ok := w.rowIdx[key]; ok {
		return row, nil
	}

	row := len(w.rowKeys) + 2 // row 1 is the header
	w.rowKeys = append(w.rowKeys, key)
	w.rowIdx[key] = row

	values := []interface{}{project}
	if len(w.headers) > 1 {
		if contract != nil {
			values = append(values, *contract)
		} else {
			values = append(values, "")
		}
	}
	if len(w.headers) > 2 {
		if function != nil {
			values = append(values, *function)
		} else {
			values = append(values, "")
		}
	}
	for i, v := range values {
		axis, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return 0, err
		}
		if err := w.file.SetCellValue(w.name, axis, v); err != nil {
			return 0, err
		}
	}
	return row, nil
}

// WriteTestValue writes value into the cell for (project, contract,
// function, toolchainID), creating the row and/or toolchain column as
// needed.
func (w *Worksheet) WriteTestValue(project string, contract, function *string, toolchainID int, value uint64) error {
	row, err := w.rowFor(project, contract, function)
	if err != nil {
		return err
	}
	col, ok := w.toolchainCols[toolchainID]
	if !ok {
		return fmt.Errorf("benchmark: worksheet %q: no column allocated for toolchain ID %d", w.name, toolchainID)
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return w.file.SetCellValue(w.name, axis, value)
}

// SetTotals appends a trailing "Total" row summing every allocated
// toolchain column over all data rows.
func (w *Worksheet) SetTotals(toolchainCount int) error {
	if len(w.rowKeys) == 0 {
		return nil
	}
	totalRow := len(w.rowKeys) + 2
	labelAxis, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return err
	}
	if err := w.file.SetCellValue(w.name, labelAxis, "Total"); err != nil {
		return err
	}

	ids := make([]int, 0, toolchainCount)
	for id := range w.toolchainCols {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		col := w.toolchainCols[id]
		colName, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		formula := fmt.Sprintf("=SUM(%s2:%s%d)", colName, colName, totalRow-1)
		axis, err := excelize.CoordinatesToCellName(col, totalRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellFormula(w.name, axis, formula); err != nil {
			return err
		}
	}
	return nil
}

// SetDiffs appends one "<candidate> vs <reference>" column per
// pairing, holding the relative difference (reference - candidate) /
// reference, left blank where the reference value is 0, per spec §4.5 "Spreadsheet emitter... a per-worksheet
// set_diffs pass emits appended diff columns for a fixed pairing
// scheme". index offsets each pairing's column so multiple diff
// columns on one sheet don't collide.
func (w *Worksheet) SetDiffs(referenceID int, referenceName string, candidateID int, candidateName string, toolchainCount int, index int) error {
	refCol, ok := w.toolchainCols[referenceID]
	if !ok {
		return nil
	}
	candCol, ok := w.toolchainCols[candidateID]
	if !ok {
		return nil
	}

	diffCol := w.nextDataCol + index
	headerAxis, err := excelize.CoordinatesToCellName(diffCol, 1)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s vs %s", candidateName, referenceName)
	if err := w.file.SetCellValue(w.name, headerAxis, title); err != nil {
		return err
	}

	refColName, err := excelize.ColumnNumberToName(refCol)
	if err != nil {
		return err
	}
	candColName, err := excelize.ColumnNumberToName(candCol)
	if err != nil {
		return err
	}

	for _, key := range w.rowKeys {
		row := w.rowIdx[key]
		formula := fmt.Sprintf("=IF(%s%d=0,\"\",(%s%d-%s%d)/%s%d)", refColName, row, candColName, row, refColName, row, refColName, row)
		axis, err := excelize.CoordinatesToCellName(diffCol, row)
		if err != nil {
			return err
		}
		if err := w.file.SetCellFormula(w.name, axis, formula); err != nil {
			return err
		}
	}
	return nil
}
