package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadCSVLatin1(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("nombre_dpto\nAdministración\n")
	require.NoError(t, err)
	require.NotEqual(t, "nombre_dpto\nAdministración\n", latin1)

	table, err := ReadCSV(strings.NewReader(latin1), ',')
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Administración", table.Rows[0].Cells[0])
}

func TestReadCSVNormalizes(t *testing.T) {
	// "Mari" + combining acute accent.
	table, err := ReadCSV(strings.NewReader("nombre_dpto\nMari\u0301a\n"), ',')
	require.NoError(t, err)
	assert.Equal(t, "Mar\u00eda", table.Rows[0].Cells[0])
}

func TestReadCSVLines(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("a;b\r\n1;2\r\n\r\n3;4\r\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Header)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, 3, table.Rows[1].Line)
	assert.Empty(t, table.Rows[1].Cells)
	assert.Equal(t, 4, table.Rows[2].Line)
	assert.Equal(t, []string{"3", "4"}, table.Rows[2].Cells)
}

func TestReadCSVBlankLines(t *testing.T) {
	text := "nombre_dpto\n\nNuevo\n\"Dos\nLineas\"\n\n\nOtro\n"
	table, err := ReadCSV(strings.NewReader(text), ',')
	require.NoError(t, err)

	var lines []int
	for _, row := range table.Rows {
		lines = append(lines, row.Line)
	}
	assert.Equal(t, []int{2, 3, 4, 6, 7, 8}, lines)
	assert.Empty(t, table.Rows[0].Cells)
	assert.Equal(t, []string{"Dos\nLineas"}, table.Rows[2].Cells)
	assert.Empty(t, table.Rows[3].Cells)
	assert.Empty(t, table.Rows[4].Cells)
	assert.Equal(t, []string{"Otro"}, table.Rows[5].Cells)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), ',')
	assert.Error(t, err)
}

func TestReadXLSX(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"id_persona", "nombre_persona", "sexo", "nombre_dpto", "nombre_tipopersona", "nombre_control"},
		[]interface{}{"1001", "Ana Gomez", "F", "Primaria", "Estudiante", "Almuerzo Regular"},
		[]interface{}{},
		[]interface{}{"1002", "Luis Perez", "M"},
	)

	table, err := ReadXLSX(buf)
	require.NoError(t, err)
	assert.Len(t, table.Header, 6)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, 3, table.Rows[1].Line)
	assert.Empty(t, table.Rows[1].Cells)
	assert.Equal(t, 4, table.Rows[2].Line)
	assert.Equal(t, []string{"1002", "Luis Perez", "M", "", "", ""}, table.Rows[2].Cells)
}

func TestRead(t *testing.T) {
	_, err := Read("personas.txt", KindPersons, strings.NewReader("x"))
	assert.Error(t, err)

	table, err := Read("DPTOS.CSV", KindDepartments, strings.NewReader("nombre_dpto\nA;B\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A;B"}, table.Rows[0].Cells)
}
