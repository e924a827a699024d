package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmigrate/hrmigrate/pkg/ingest"
	"github.com/hrmigrate/hrmigrate/pkg/models"
)

func TestWriteDelimited(t *testing.T) {
	table := models.NewTable("Employee", "USERID", "LASTNAME", "CITY")
	table.Append(models.Row{"USERID": "1001", "LASTNAME": "Müller, Jr.", "CITY": "Berlin"})
	table.Append(models.Row{"USERID": "1002", "LASTNAME": "Schmidt"})

	var buf bytes.Buffer
	require.NoError(t, WriteDelimited(&buf, table, ','))
	assert.Equal(t, "USERID,LASTNAME,CITY\n1001,\"Müller, Jr.\",Berlin\n1002,Schmidt,\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteDelimited(&buf, table, ';'))
	assert.Equal(t, "USERID;LASTNAME;CITY\n1001;Müller, Jr.;Berlin\n1002;Schmidt;\n", buf.String())
}

func TestWriteDelimited_RoundTrip(t *testing.T) {
	table := models.NewTable("Level1_LegalEntity", "externalCode", "name")
	table.Append(models.Row{"externalCode": "50000001", "name": "ACME \"Holding\""})

	var buf bytes.Buffer
	require.NoError(t, WriteDelimited(&buf, table, '\t'))

	res, err := ingest.Parse(buf.Bytes(), table.Name, ingest.Options{})
	require.NoError(t, err)
	assert.Equal(t, table.Columns, res.Table.Columns)
	assert.Equal(t, table.Rows, res.Table.Rows)
	assert.Equal(t, "\t", res.Delimiter)
}

func TestWriteDelimited_NilTable(t *testing.T) {
	assert.Error(t, WriteDelimited(&bytes.Buffer{}, nil, ','))
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{in: "", want: ','},
		{in: "semicolon", want: ';'},
		{in: "TAB", want: '\t'},
		{in: "|", want: '|'},
		{in: "\"", wantErr: true},
		{in: "ab", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDelimiter(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Association_Level2_Division.csv", FileName("Association_Level2_Division", ','))
	assert.Equal(t, "Employee_Data.tsv", FileName("Employee Data", '\t'))
}
