//go:build ignore

// generate writes users.parquet, a small file with nested columns for
// trying out pq by hand:
//
//	go run testdata/generate.go
//	pq read --filter 'address.city == "Oslo"' testdata/users.parquet
package main

import (
	"log"

	"github.com/vegasq/pq/codec"
	"github.com/vegasq/pq/schema"
	"github.com/vegasq/pq/writer"
)

const users = `message users {
  required int64 id;
  optional binary name (STRING);
  optional int32 age;
  optional boolean active;
  optional double score;
  optional group address {
    required binary city (STRING);
    optional int32 zip;
  }
  optional group tags (LIST) {
    repeated group list {
      optional binary element (STRING);
    }
  }
}
`

var records = []string{
	`{"id":1,"name":"alice","age":30,"active":true,"score":95.5,"address":{"city":"Oslo","zip":150},"tags":["admin","dev"]}`,
	`{"id":2,"name":"bob","age":25,"active":false,"score":82.3,"tags":[]}`,
	`{"id":3,"name":"charlie","age":35,"active":true,"score":88.7,"address":{"city":"Rome"}}`,
	`{"id":4,"name":"diana","age":28,"active":true,"score":91.2,"tags":["dev",null]}`,
	`{"id":5,"name":null,"age":42,"active":false,"score":76.8,"address":{"city":"Oslo","zip":151}}`,
}

func main() {
	s, err := schema.Parse(users)
	if err != nil {
		log.Fatal(err)
	}

	w, err := writer.Create("testdata/users.parquet", s,
		writer.WithRowGroupSize(2),
		writer.WithKeyValue("generator", "testdata/generate.go"),
	)
	if err != nil {
		log.Fatal(err)
	}
	for _, text := range records {
		v, err := codec.ParseJSON([]byte(text))
		if err != nil {
			w.Abort()
			log.Fatal(err)
		}
		if err := w.Write(v); err != nil {
			w.Abort()
			log.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		log.Fatal(err)
	}

	log.Printf("Generated users.parquet with %d users", len(records))
}
