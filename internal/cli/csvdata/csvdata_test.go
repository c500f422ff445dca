package csvdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsCSV(t *testing.T) {
	cols, err := Columns("people.csv", "name,age,salary\nalice,30,1200\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "salary"}, cols)
}

func TestColumnsCSVStripsCarriageReturn(t *testing.T) {
	cols, err := Columns("people.csv", "name,age,salary\r\nalice,30,1200\r\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "salary"}, cols)
}

func TestColumnsTSV(t *testing.T) {
	cols, err := Columns("people.tsv", "name\tage\tsalary\nalice\t30\t1200\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "salary"}, cols)
}

func TestColumnsUnsupportedExtension(t *testing.T) {
	_, err := Columns("people.xlsx", "whatever")
	assert.Error(t, err)
}

func TestFilterColumnsKeepAll(t *testing.T) {
	in := "name,age\nalice,30\nbob,41\n"
	out := FilterColumns(in, []bool{true, true})
	assert.Equal(t, "name,age\nalice,30\nbob,41\n", out)
}

func TestFilterColumnsDropMiddle(t *testing.T) {
	in := "name,age,salary\nalice,30,1200\nbob,41,1500\n"
	out := FilterColumns(in, []bool{true, false, true})
	assert.Equal(t, "name,salary\nalice,1200\nbob,1500\n", out)
}

func TestFilterColumnsDropLast(t *testing.T) {
	in := "name,age\nalice,30\nbob,41\n"
	out := FilterColumns(in, []bool{true, false})
	assert.Equal(t, "name\nalice\nbob\n", out)
}

func TestFilterColumnsNoneChecked(t *testing.T) {
	assert.Equal(t, "", FilterColumns("a,b\n1,2\n", []bool{false, false}))
}
