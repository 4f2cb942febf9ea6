package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// SetTableHeaders sets the header row.
func (c *CoreView) SetTableHeaders(headers []string) *CoreView {
	c.tableHeaders = headers
	c.refreshTable()
	return c
}

// SetTableData replaces the rows, re-applying the current filter and
// keeping the selection on the same record when it is still present.
func (c *CoreView) SetTableData(data [][]string) *CoreView {
	c.dataMutex.Lock()
	defer c.dataMutex.Unlock()
	c.rawTableData = data
	c.tableData = c.applyFilter(data)
	c.refreshTable()
	return c
}

// SetSelectionKey names the column that identifies a row across refreshes.
func (c *CoreView) SetSelectionKey(column string) *CoreView {
	c.selectionKey = column
	return c
}

// GetTableData returns the visible (filtered) rows.
func (c *CoreView) GetTableData() [][]string {
	return c.tableData
}

// GetSelectedRow returns the index of the selected row in the data passed
// to SetTableData, or -1.
func (c *CoreView) GetSelectedRow() int {
	if c.selectedRow < 0 || c.selectedRow >= len(c.tableData) {
		return -1
	}
	return c.sourceIndex(c.selectedRow)
}

// GetSelectedRowData returns the selected row or nil.
func (c *CoreView) GetSelectedRowData() []string {
	if c.selectedRow >= 0 && c.selectedRow < len(c.tableData) {
		return c.tableData[c.selectedRow]
	}
	return nil
}

// SetFilterQuery narrows the visible rows to those containing query in any
// cell, case-insensitively. An empty query clears the filter.
func (c *CoreView) SetFilterQuery(query string) *CoreView {
	c.dataMutex.Lock()
	defer c.dataMutex.Unlock()
	c.filterQuery = strings.TrimSpace(query)
	before := len(c.rawTableData)
	c.tableData = c.applyFilter(c.rawTableData)
	c.refreshTable()
	if c.filterQuery == "" {
		c.Log("[yellow]Filter cleared")
		c.table.SetTitle(fmt.Sprintf(" [yellow]%s[white] ", c.title))
	} else {
		c.Log(fmt.Sprintf("[green]Filter '%s': %d/%d rows", c.filterQuery, len(c.tableData), before))
		c.table.SetTitle(fmt.Sprintf(" [yellow]%s[white] [gray](filter: %s)[white] ", c.title, c.filterQuery))
	}
	return c
}

// GetFilterQuery returns the active filter.
func (c *CoreView) GetFilterQuery() string {
	return c.filterQuery
}

func (c *CoreView) applyFilter(data [][]string) [][]string {
	if c.filterQuery == "" {
		c.filteredIdx = nil
		return data
	}
	query := strings.ToLower(c.filterQuery)
	filtered := make([][]string, 0, len(data))
	c.filteredIdx = make([]int, 0, len(data))
	for i, row := range data {
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell), query) {
				filtered = append(filtered, row)
				c.filteredIdx = append(c.filteredIdx, i)
				break
			}
		}
	}
	return filtered
}

func (c *CoreView) sourceIndex(visible int) int {
	if c.filteredIdx == nil {
		return visible
	}
	if visible < 0 || visible >= len(c.filteredIdx) {
		return -1
	}
	return c.filteredIdx[visible]
}

func (c *CoreView) getRowSignature(row []string) string {
	if c.selectionKey != "" {
		for i, header := range c.tableHeaders {
			if header == c.selectionKey && i < len(row) {
				return row[i]
			}
		}
	}
	var sb strings.Builder
	for i := 0; i < len(row) && i < 3; i++ {
		sb.WriteString(row[i])
		sb.WriteString("|")
	}
	return sb.String()
}

func (c *CoreView) refreshTable() {
	var signature string
	previous := c.selectedRow
	if c.selectedRow >= 0 && c.selectedRow < len(c.tableData) {
		signature = c.getRowSignature(c.tableData[c.selectedRow])
	}

	c.table.Clear()
	for col, h := range c.tableHeaders {
		c.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false).
			SetExpansion(1))
	}
	for r, row := range c.tableData {
		for col, v := range row {
			c.table.SetCell(r+1, col, tview.NewTableCell(v).
				SetTextColor(tcell.ColorWhite).
				SetExpansion(1))
		}
	}

	if len(c.tableData) == 0 {
		c.selectedRow = -1
		return
	}
	if signature != "" {
		for i, row := range c.tableData {
			if c.getRowSignature(row) == signature {
				c.selectedRow = i
				c.table.Select(i+1, 0)
				return
			}
		}
	}
	if previous < 0 {
		previous = 0
	}
	if previous >= len(c.tableData) {
		previous = len(c.tableData) - 1
	}
	c.selectedRow = previous
	c.table.Select(previous+1, 0)
}
