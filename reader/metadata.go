package reader

import (
	"strings"

	"github.com/parquet-go/parquet-go/format"
)

// Block describes one row group of a file.
type Block struct {
	Index         int         `json:"index"`
	NumRows       int64       `json:"num_rows"`
	TotalByteSize int64       `json:"total_byte_size"`
	Columns       []ChunkInfo `json:"columns"`
}

// ChunkInfo describes one column chunk of a row group.
type ChunkInfo struct {
	Path             string   `json:"path"`
	Type             string   `json:"type"`
	Codec            string   `json:"codec"`
	Encodings        []string `json:"encodings"`
	NumValues        int64    `json:"num_values"`
	NullCount        int64    `json:"null_count"`
	CompressedSize   int64    `json:"compressed_size"`
	UncompressedSize int64    `json:"uncompressed_size"`
}

// KeyValue returns the key/value metadata of the footer as a map.
func (f *File) KeyValue() map[string]string {
	kv := make(map[string]string)
	for _, entry := range f.Metadata().KeyValueMetadata {
		kv[entry.Key] = entry.Value
	}
	return kv
}

// CreatedBy returns the application that wrote the file.
func (f *File) CreatedBy() string { return f.Metadata().CreatedBy }

// Blocks lists the row groups of the file with their column chunks.
func (f *File) Blocks() []Block {
	groups := f.Metadata().RowGroups
	blocks := make([]Block, 0, len(groups))
	for i, rg := range groups {
		b := Block{Index: i, NumRows: rg.NumRows, TotalByteSize: rg.TotalByteSize}
		for _, chunk := range rg.Columns {
			md := chunk.MetaData
			encodings := make([]string, len(md.Encoding))
			for j, e := range md.Encoding {
				encodings[j] = e.String()
			}
			b.Columns = append(b.Columns, ChunkInfo{
				Path:             strings.Join(md.PathInSchema, "."),
				Type:             md.Type.String(),
				Codec:            codecName(md.Codec),
				Encodings:        encodings,
				NumValues:        md.NumValues,
				NullCount:        md.Statistics.NullCount,
				CompressedSize:   md.TotalCompressedSize,
				UncompressedSize: md.TotalUncompressedSize,
			})
		}
		blocks = append(blocks, b)
	}
	return blocks
}

func codecName(c format.CompressionCodec) string {
	return strings.ToLower(c.String())
}
