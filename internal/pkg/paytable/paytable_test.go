package paytable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Salary(t *testing.T) {
	t.Parallel()

	tab := New()
	tab.SetGrade("DC", 12, [MaxStep]float64{81000, 83700, 86400, 89100, 91800, 94500, 97200, 99900, 102600, 105300})

	sal, err := tab.Salary("DC", 12, 1)
	require.NoError(t, err)
	assert.Equal(t, 81000.0, sal)

	sal, err = tab.Salary("DC", 12, 10)
	require.NoError(t, err)
	assert.Equal(t, 105300.0, sal)

	_, err = tab.Salary("DC", 12, 0)
	assert.ErrorIs(t, err, ErrStepOutOfRange)
	_, err = tab.Salary("DC", 12, 11)
	assert.ErrorIs(t, err, ErrStepOutOfRange)
	_, err = tab.Salary("NOPE", 12, 1)
	assert.ErrorIs(t, err, ErrLocalityNotFound)
	_, err = tab.Salary("DC", 9, 1)
	assert.ErrorIs(t, err, ErrGradeNotFound)
}

func TestNextStep_Bands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		step, days int
		want       int
	}{
		{"step 1 before a year", 1, 364, 1},
		{"step 1 at a year", 1, 365, 2},
		{"step 3 at a year", 3, 365, 4},
		{"step 4 at one year holds", 4, 365, 4},
		{"step 4 at two years", 4, 730, 5},
		{"step 6 at two years", 6, 730, 7},
		{"step 7 at two years holds", 7, 730, 7},
		{"step 7 at three years", 7, 1095, 8},
		{"step 9 at three years", 9, 1095, 10},
		{"step 10 is terminal", 10, 10000, 10},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NextStep(tt.step, tt.days))
		})
	}
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	const data = `LOCNAME,GRADE,ANNUAL1,ANNUAL2,ANNUAL3,ANNUAL4,ANNUAL5,ANNUAL6,ANNUAL7,ANNUAL8,ANNUAL9,ANNUAL10
DC,7,"45,972","47,504","49,036","50,568","52,100","53,632","55,164","56,696","58,228","59,760"
DC,12,81000,83700,86400,89100,91800,94500,97200,99900,102600,105300
REST OF US,7,42000,43400,44800,46200,47600,49000,50400,51800,53200,54600
`
	tab, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)

	sal, err := tab.Salary("DC", 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 45972.0, sal)

	sal, err = tab.Salary("REST OF US", 7, 5)
	require.NoError(t, err)
	assert.Equal(t, 47600.0, sal)

	assert.ElementsMatch(t, []string{"DC", "REST OF US"}, tab.Localities())
}

func TestReadCSV_MissingColumns(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader("LOCNAME,ANNUAL1\nDC,1000\n"))
	assert.Error(t, err)
}
