package reader

import (
	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/pq/filter"
)

// Byte array bounds this long may have been truncated by the writer's
// column index size limit and are not used for pruning.
const truncatedBoundLength = 16

// rowGroupStats exposes the page statistics of a row group's column
// chunks to a predicate.
type rowGroupStats []parquet.ColumnChunk

func (chunks rowGroupStats) ColumnStats(column int) (filter.ColumnStats, bool) {
	if column < 0 || column >= len(chunks) {
		return filter.ColumnStats{}, false
	}
	chunk := chunks[column]
	index, err := chunk.ColumnIndex()
	if err != nil || index == nil || index.NumPages() == 0 {
		return filter.ColumnStats{}, false
	}

	typ := chunk.Type()
	stats := filter.ColumnStats{NumValues: chunk.NumValues()}
	bounded := true
	for page := 0; page < index.NumPages(); page++ {
		stats.NullCount += index.NullCount(page)
		if index.NullPage(page) {
			continue
		}
		min, max := index.MinValue(page), index.MaxValue(page)
		if min.IsNull() || max.IsNull() || truncated(min) || truncated(max) {
			bounded = false
			continue
		}
		if stats.Min.IsNull() || typ.Compare(min, stats.Min) < 0 {
			stats.Min = min
		}
		if stats.Max.IsNull() || typ.Compare(max, stats.Max) > 0 {
			stats.Max = max
		}
	}
	if !bounded {
		stats.Min, stats.Max = parquet.Value{}, parquet.Value{}
	}
	return stats, true
}

func truncated(v parquet.Value) bool {
	switch v.Kind() {
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return len(v.ByteArray()) >= truncatedBoundLength
	default:
		return false
	}
}
