// Package reader scans Apache Parquet files into codec values.
//
// A File decodes its schema from the footer. Scan returns a pull iterator
// over the rows matching a compiled filter predicate, assembling each
// match with the fields of a projection. Row groups whose column
// statistics prove that no row can match are skipped.
//
// # Basic Usage
//
//	f, err := reader.Open("data.parquet")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	expr, err := filter.Parse(`age >= 18`)
//	...
//	s, err := f.Scan(pred, f.Schema())
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	for s.Next() {
//	    fmt.Println(s.Value())
//	}
//	return s.Err()
//
// # Counting
//
// Count answers unfiltered counts from the footer and otherwise scans
// without assembling values:
//
//	n, err := f.Count(pred)
//
// # Multi-file Operations
//
// Glob expands a pattern such as "data/*.parquet" into at most
// MaxGlobFiles paths.
//
// # Resource Management
//
// Always call Close() on scanners and files when done reading. Rows are
// decoded by github.com/parquet-go/parquet-go.
package reader
