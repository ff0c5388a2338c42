package sheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ',', DetectDelimiter("a,b,c"))
	assert.Equal(t, ';', DetectDelimiter("a;b;c"))
	assert.Equal(t, '\t', DetectDelimiter("a\tb\tc"))
	assert.Equal(t, '|', DetectDelimiter("a|b|c,d"))
	// no delimiter at all defaults to comma
	assert.Equal(t, ',', DetectDelimiter("single"))
	// a tie keeps comma
	assert.Equal(t, ',', DetectDelimiter("a,b;c"))
	// even a tie between two non-comma candidates
	assert.Equal(t, ',', DetectDelimiter("a;b|c;d|e"))
	// a tie broken by a later strictly higher count still wins
	assert.Equal(t, '|', DetectDelimiter("a;b;c|d|e|f"))
}

func TestParse(t *testing.T) {
	table, err := Parse("Site,Building,HardwareID\nRX,7,AA11\nRX,8,BB22", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Site", "Building", "HardwareID"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, "7", table.Rows[0].Get("Building"))
	assert.Equal(t, 3, table.Rows[1].Line)
	assert.Equal(t, "BB22", table.Rows[1].Get("HardwareID"))
}

func TestParse_QuotedFields(t *testing.T) {
	table, err := Parse("name,notes\n\"Acme, Inc.\",\"she said \"\"hi\"\"\"", 0)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Acme, Inc.", table.Rows[0].Get("name"))
	assert.Equal(t, `she said "hi"`, table.Rows[0].Get("notes"))
}

func TestParse_MissingTrailingFields(t *testing.T) {
	table, err := Parse("a,b,c\n1,2", 0)
	require.NoError(t, err)
	assert.Equal(t, "2", table.Rows[0].Get("b"))
	assert.Equal(t, "", table.Rows[0].Get("c"))
}

func TestParse_SkipsBlankLinesAndTrims(t *testing.T) {
	table, err := Parse("a;b\n\n  1 ; 2 \n\n", 0)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "1", table.Rows[0].Get("a"))
	assert.Equal(t, "2", table.Rows[0].Get("b"))
	// blank lines still count toward the original line number
	assert.Equal(t, 3, table.Rows[0].Line)
}

func TestParse_ForcedDelimiter(t *testing.T) {
	table, err := Parse("a|b\n1|2,3", '|')
	require.NoError(t, err)
	assert.Equal(t, "2,3", table.Rows[0].Get("b"))
}

func TestParse_StripsBOM(t *testing.T) {
	table, err := Parse("\ufeffa,b\n1,2", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Headers)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("", 0)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Parse("\n  \n", 0)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Parse(`""`, 0)
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.xlsx")

	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheetName, "A1", &[]any{"Site", "HardwareID"}))
	require.NoError(t, f.SetSheetRow(sheetName, "A2", &[]any{"RX", "AA11"}))
	require.NoError(t, f.SetSheetRow(sheetName, "A4", &[]any{"RX", "BB22"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := Read(path, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Site", "HardwareID"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "AA11", table.Rows[0].Get("HardwareID"))
	assert.Equal(t, "BB22", table.Rows[1].Get("HardwareID"))
}
