// Package output provides formatters for printing rows read from parquet
// files.
//
// Formatters stream codec values one row at a time. Tables for schema and
// metadata listings are rendered with github.com/olekukonko/tablewriter.
//
// # Supported Formats
//
//   - JSON Lines: One JSON object per line, optionally preceded by a
//     "#<index>" line holding the row ordinal
//   - CSV: Comma-separated values with a header row of the selected
//     top-level fields
//
// # Basic Usage
//
//	formatter, err := output.New("csv", os.Stdout, output.Options{Columns: names})
//	if err != nil {
//	    return err
//	}
//	for s.Next() {
//	    if err := formatter.WriteRow(s.Index(), s.Value()); err != nil {
//	        return err
//	    }
//	}
//	return formatter.Flush()
//
// # Type Handling
//
//   - JSON formatter preserves nested objects and arrays
//   - CSV formatter prints nested values as JSON and null as an empty cell
//   - CSV strings starting with formula characters are escaped
package output
