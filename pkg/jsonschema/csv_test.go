package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsFromCSV_Headers(t *testing.T) {
	rows, err := RowsFromCSV([]byte("name,price,active\npen,1.5,true\ncup,3,FALSE\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]any{"name": "pen", "price": 1.5, "active": true}, rows[0])
	assert.Equal(t, map[string]any{"name": "cup", "price": 3.0, "active": false}, rows[1])
}

func TestRowsFromCSV_NoHeaders(t *testing.T) {
	rows, err := RowsFromCSV([]byte("1,2\n3,4\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]any{"col_0": 1.0, "col_1": 2.0}, rows[0])
}

func TestRowsFromCSV_EmptyCellsAreOptional(t *testing.T) {
	rows, err := RowsFromCSV([]byte("sku,note\na1,\nb2,fragile\n"))
	require.NoError(t, err)

	inferred, err := Infer(rows...)
	require.NoError(t, err)
	assert.Equal(t, []string{"sku"}, inferred.Schema.Required)
}

func TestRowsFromCSV_MixedColumnIsString(t *testing.T) {
	rows, err := RowsFromCSV([]byte("code\n12\nA7\n"))
	require.NoError(t, err)
	assert.Equal(t, "12", rows[0].(map[string]any)["code"])
}

func TestRowsFromCSV_Errors(t *testing.T) {
	_, err := RowsFromCSV(nil)
	assert.Error(t, err)

	_, err = RowsFromCSV([]byte("only,headers\n"))
	assert.Error(t, err)
}
