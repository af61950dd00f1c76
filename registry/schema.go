package registry

import (
	memdb "github.com/hashicorp/go-memdb"

	"github.com/on-the-ground/easing_ive_go/easing"
)

const (
	tableDefinitions = "definitions"
	tablePending     = "pending"

	indexID   = "id"
	indexName = "name"
)

// definitionRow is immutable once inserted.
type definitionRow struct {
	Name string
	Def  easing.Definition
}

// Pending is one undefined-but-requested record: a name that was looked up before
// it was registered, together with the consumer that depended on the lookup.
// Anonymous requests are tracked under the empty consumer.
type Pending struct {
	Key      string
	Name     string
	Consumer easing.ConsumerHandle
	// ArgsKey renders the raw tokens of the first request for diagnostics.
	ArgsKey  string
	Requests int
}

func pendingKey(name string, consumer easing.ConsumerHandle) string {
	return name + "\x00" + string(consumer)
}

func newSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableDefinitions: {
				Name: tableDefinitions,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
				},
			},
			tablePending: {
				Name: tablePending,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Key"},
					},
					indexName: {
						Name:    indexName,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
				},
			},
		},
	}
}
