package domain

import (
	"fmt"
	"time"
)

// Matrix is a (period × group) table of optional values. Rows are periods
// sorted ascending, columns follow the group order given at construction.
// Cells default to absent until set.
type Matrix struct {
	periods []time.Time
	groups  []string

	periodIdx map[int64]int  // unix day -> row
	groupIdx  map[string]int // group name -> column

	cells [][]Cell // [row][col]
}

// NewMatrix creates a matrix with the given sorted periods and group columns.
// The caller is responsible for passing periods in ascending order.
func NewMatrix(periods []time.Time, groups []string) *Matrix {
	m := &Matrix{
		periods:   make([]time.Time, len(periods)),
		groups:    make([]string, len(groups)),
		periodIdx: make(map[int64]int, len(periods)),
		groupIdx:  make(map[string]int, len(groups)),
		cells:     make([][]Cell, len(periods)),
	}
	copy(m.periods, periods)
	copy(m.groups, groups)

	for i, p := range m.periods {
		m.periodIdx[dayKey(p)] = i
	}
	for j, g := range m.groups {
		m.groupIdx[g] = j
	}
	for i := range m.cells {
		m.cells[i] = make([]Cell, len(groups))
	}
	return m
}

// NewMatrixLike creates an empty matrix with the same shape as src.
func NewMatrixLike(src *Matrix) *Matrix {
	return NewMatrix(src.periods, src.groups)
}

func dayKey(t time.Time) int64 {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC).Unix()
}

// Rows returns the number of periods.
func (m *Matrix) Rows() int {
	return len(m.periods)
}

// Periods returns the row axis. The returned slice must not be mutated.
func (m *Matrix) Periods() []time.Time {
	return m.periods
}

// Groups returns the column axis. The returned slice must not be mutated.
func (m *Matrix) Groups() []string {
	return m.groups
}

// Period returns the period at row i.
func (m *Matrix) Period(i int) time.Time {
	return m.periods[i]
}

// At returns the cell at row i for the given group. Unknown groups read as
// absent.
func (m *Matrix) At(i int, group string) Cell {
	j, ok := m.groupIdx[group]
	if !ok {
		return Absent()
	}
	return m.cells[i][j]
}

// Set writes the cell at row i for the given group.
func (m *Matrix) Set(i int, group string, c Cell) error {
	j, ok := m.groupIdx[group]
	if !ok {
		return fmt.Errorf("unknown group %q", group)
	}
	m.cells[i][j] = c
	return nil
}

// SetByDate writes the cell for the row matching the given period date.
func (m *Matrix) SetByDate(period time.Time, group string, c Cell) error {
	i, ok := m.periodIdx[dayKey(period)]
	if !ok {
		return fmt.Errorf("unknown period %s", period.Format(DateFormat))
	}
	return m.Set(i, group, c)
}

// Column returns the cells of one group in row order. Unknown groups return
// an all-absent column.
func (m *Matrix) Column(group string) []Cell {
	col := make([]Cell, len(m.periods))
	j, ok := m.groupIdx[group]
	if !ok {
		return col
	}
	for i := range m.periods {
		col[i] = m.cells[i][j]
	}
	return col
}

// TableRow is one row of the serialized matrix. Absent cells marshal as
// JSON null so consumers can tell "no data" from a computed zero.
type TableRow struct {
	Period string              `json:"period"`
	Values map[string]*float64 `json:"values"`
}

// Table serializes the matrix row-major for charting and API responses.
func (m *Matrix) Table() []TableRow {
	rows := make([]TableRow, len(m.periods))
	for i, p := range m.periods {
		values := make(map[string]*float64, len(m.groups))
		for _, g := range m.groups {
			c := m.At(i, g)
			if c.Valid {
				v := c.Value
				values[g] = &v
			} else {
				values[g] = nil
			}
		}
		rows[i] = TableRow{Period: p.Format(DateFormat), Values: values}
	}
	return rows
}
