// Package schema models the schema tree of a Parquet file.
//
// A Schema is a root name and a tree of Fields. Leaves carry a physical
// type, groups carry children and lists are groups annotated LIST. Every
// field knows its maximum definition and repetition level and the range of
// leaf columns it spans, which is what the reader uses to reassemble rows.
//
// Schemas are loaded from file footers with FromMetadata, parsed from the
// message text format with Parse, and converted to parquet-go schemas for
// writing with Parquet.
package schema
