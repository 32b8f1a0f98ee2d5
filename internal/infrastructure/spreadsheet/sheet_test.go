package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workbook(t *testing.T, header []string, rows ...[]any) *bytes.Buffer {
	t.Helper()
	w, err := NewWriter("Products")
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.WriteHeader(header))
	for _, r := range rows {
		require.NoError(t, w.WriteRow(r))
	}
	var buf bytes.Buffer
	_, err = w.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestReadXLSX_RoundTrip(t *testing.T) {
	buf := workbook(t, []string{"Name", "Sku", "Price"},
		[]any{"Mug", "MUG-1", 12.5},
		[]any{"", "", ""},
		[]any{" Lamp ", "LAMP-1"},
	)

	sheet, err := ReadXLSX(buf, 0)

	require.NoError(t, err)
	assert.Equal(t, "Products", sheet.Name)
	assert.Equal(t, []string{"Name", "Sku", "Price"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, 2, sheet.Rows[0].Number)
	assert.Equal(t, "12.5", sheet.Rows[0].Get("Price"))
	assert.Equal(t, 4, sheet.Rows[1].Number)
	assert.Equal(t, "Lamp", sheet.Rows[1].Get("Name"))
	assert.Equal(t, "", sheet.Rows[1].Get("Price"))
}

func TestReadXLSX_RowLimit(t *testing.T) {
	buf := workbook(t, []string{"Name"}, []any{"a"}, []any{"b"}, []any{"c"})
	_, err := ReadXLSX(buf, 2)
	assert.ErrorIs(t, err, ErrTooManyRows)
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	_, err := ReadXLSX(strings.NewReader("name,sku\nmug,1\n"), 0)
	assert.Error(t, err)
}

func TestSheet_MissingColumns(t *testing.T) {
	s := &Sheet{Headers: []string{"Name", "Price"}}
	assert.Equal(t, []string{"Sku"}, s.MissingColumns([]string{"Name", "Sku", "Price"}))
	assert.Empty(t, s.MissingColumns([]string{"Name"}))
}

func TestFieldValidator_ValidateRow(t *testing.T) {
	rules := []FieldRule{
		Field("Name").Required().MaxLength(5).Build(),
		Field("Sku").Unique().Build(),
		Field("Price").Decimal().NonNegative().Build(),
		Field("Published").Bool().Build(),
		Field("Id").UUID().Build(),
	}

	tests := []struct {
		name   string
		values map[string]string
		valid  bool
		code   string
	}{
		{"clean", map[string]string{"Name": "Mug", "Sku": "A", "Price": "1.5", "Published": "yes"}, true, ""},
		{"missing name", map[string]string{"Sku": "B"}, false, ErrCodeRequired},
		{"too long", map[string]string{"Name": "Teapots", "Sku": "C"}, false, ErrCodeInvalidLength},
		{"bad decimal", map[string]string{"Name": "Mug", "Sku": "D", "Price": "cheap"}, false, ErrCodeInvalidType},
		{"negative", map[string]string{"Name": "Mug", "Sku": "E", "Price": "-1"}, false, ErrCodeInvalidRange},
		{"bad bool", map[string]string{"Name": "Mug", "Sku": "F", "Published": "maybe"}, false, ErrCodeInvalidType},
		{"bad uuid", map[string]string{"Name": "Mug", "Sku": "G", "Id": "42"}, false, ErrCodeInvalidType},
		{"duplicate sku", map[string]string{"Name": "Mug", "Sku": "a"}, false, ErrCodeDuplicate},
	}

	v := NewFieldValidator(rules, 0)
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := v.Errors().Total()
			ok := v.ValidateRow(&Row{Number: i + 2, Values: tt.values})
			assert.Equal(t, tt.valid, ok)
			if !tt.valid {
				errs := v.Errors().Errors()
				require.Greater(t, len(errs), before)
				assert.Equal(t, tt.code, errs[before].Code)
				assert.Equal(t, i+2, errs[before].Row)
			}
		})
	}
}

func TestErrorCollection_Truncates(t *testing.T) {
	c := NewErrorCollection(2)
	for i := 0; i < 5; i++ {
		c.Add(RowError{Row: i, Code: ErrCodeRequired, Message: "value is required"})
	}
	assert.Len(t, c.Errors(), 2)
	assert.Equal(t, 5, c.Total())
	assert.True(t, c.IsTruncated())
	assert.Contains(t, c.String(), "and 3 more")
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"TRUE", "1", "Yes", "y"} {
		b, err := ParseBool(s)
		require.NoError(t, err)
		assert.True(t, b, s)
	}
	b, err := ParseBool("")
	require.NoError(t, err)
	assert.False(t, b)
}
