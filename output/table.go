package output

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/pq/codec"
	"github.com/vegasq/pq/schema"
)

// WriteTable renders rows as an aligned text table.
func WriteTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}

// SchemaHeader is the header of schema tables.
var SchemaHeader = []string{"name", "type", "physical_type", "logical_type", "required", "optional", "repeated"}

// SchemaTable returns one table row per column.
func SchemaTable(infos []schema.ColumnInfo) [][]string {
	rows := make([][]string, len(infos))
	for i, info := range infos {
		rows[i] = []string{
			info.Name,
			info.Type,
			info.PhysicalType,
			info.LogicalType,
			strconv.FormatBool(info.Required),
			strconv.FormatBool(info.Optional),
			strconv.FormatBool(info.Repeated),
		}
	}
	return rows
}

// SchemaRows returns one object per column, for the row formatters.
func SchemaRows(infos []schema.ColumnInfo) []codec.Value {
	rows := make([]codec.Value, len(infos))
	for i, info := range infos {
		rows[i] = codec.ObjectValue(codec.NewFields().
			Set("name", codec.StringValue(info.Name)).
			Set("type", codec.StringValue(info.Type)).
			Set("physical_type", codec.StringValue(info.PhysicalType)).
			Set("logical_type", codec.StringValue(info.LogicalType)).
			Set("required", codec.BoolValue(info.Required)).
			Set("optional", codec.BoolValue(info.Optional)).
			Set("repeated", codec.BoolValue(info.Repeated)))
	}
	return rows
}
