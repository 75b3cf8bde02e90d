package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMatrix_AbsentByDefault(t *testing.T) {
	m := NewMatrix([]time.Time{day("2024-01-31")}, []string{"Small Cap"})

	c := m.At(0, "Small Cap")
	assert.False(t, c.Valid, "unset cell should be absent")
}

func TestMatrix_SetAndGet(t *testing.T) {
	m := NewMatrix([]time.Time{day("2024-01-31"), day("2024-02-29")}, []string{"Small Cap", "Large Cap"})

	require.NoError(t, m.Set(0, "Small Cap", Present(0.05)))
	require.NoError(t, m.SetByDate(day("2024-02-29"), "Large Cap", Present(0.0)))

	assert.Equal(t, Present(0.05), m.At(0, "Small Cap"))
	assert.Equal(t, Present(0.0), m.At(1, "Large Cap"))
	assert.False(t, m.At(1, "Small Cap").Valid)
}

func TestMatrix_SetUnknownGroup(t *testing.T) {
	m := NewMatrix([]time.Time{day("2024-01-31")}, []string{"Small Cap"})

	err := m.Set(0, "No Such Group", Present(1))
	assert.Error(t, err)
}

func TestMatrix_TableDistinguishesAbsentFromZero(t *testing.T) {
	m := NewMatrix([]time.Time{day("2024-01-31")}, []string{"Small Cap", "Large Cap"})
	require.NoError(t, m.Set(0, "Small Cap", Present(0.0)))

	rows := m.Table()
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-31", rows[0].Period)

	require.NotNil(t, rows[0].Values["Small Cap"], "computed zero must serialize as 0, not null")
	assert.Equal(t, 0.0, *rows[0].Values["Small Cap"])
	assert.Nil(t, rows[0].Values["Large Cap"], "absent cell must serialize as null")
}

func TestMatrix_ColumnOrder(t *testing.T) {
	periods := []time.Time{day("2024-01-31"), day("2024-02-29"), day("2024-03-31")}
	m := NewMatrix(periods, []string{"Mid Cap"})
	require.NoError(t, m.Set(1, "Mid Cap", Present(0.02)))

	col := m.Column("Mid Cap")
	require.Len(t, col, 3)
	assert.False(t, col[0].Valid)
	assert.Equal(t, Present(0.02), col[1])
	assert.False(t, col[2].Valid)
}
