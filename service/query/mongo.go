// Package query wraps the mongo driver for repositories. See
// https://pkg.go.dev/go.mongodb.org/mongo-driver/mongo for driver semantics.
package query

import (
	"fmt"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/domain"
)

var (
	// ErrNotFound is mongo document not found error
	ErrNotFound = fmt.Errorf("document not found")

	// ErrDuplicateKey is an error when violating unique index
	ErrDuplicateKey = fmt.Errorf("duplicate key")

	// ErrCollScan is error for unindexed query
	ErrCollScan = fmt.Errorf("COLLSCAN is not allowed")
)

// Index is a compound index. Keys follow the sort syntax, "-field" for descending.
type Index struct {
	Keys   []string
	Unique bool
}

// Mongo abstracts the mongo layer.
type Mongo interface {
	// Insert inserts a new document to the table
	Insert(context ctx.Ctx, table domain.Table, insert interface{}) error

	// InsertMany inserts docs unordered. Duplicated documents are skipped and
	// ErrDuplicateKey is returned once the others are written.
	InsertMany(context ctx.Ctx, table domain.Table, docs []interface{}) error

	// FindOne get data from the table
	FindOne(context ctx.Ctx, table domain.Table, query, result interface{}) error

	// Count return counting for matched entry in the table
	Count(context ctx.Ctx, table domain.Table, selector interface{}) (n int, err error)

	// Upsert replaces the entry matching selector or inserts it.
	Upsert(context ctx.Ctx, table domain.Table, selector, update interface{}) error

	// Search sorts with multiple fields ("timestamp" ascending, "-timestamp" descending).
	// Without sort fields mongo does not guarantee the order of results.
	Search(context ctx.Ctx, table domain.Table, offset, limit int, sortFields []string, query, results interface{}) error

	// RemoveAll remove all entries matching the selector from the table
	RemoveAll(context ctx.Ctx, table domain.Table, selector interface{}) (removedCnt int64, err error)

	// EnsureIndexes creates missing indexes of the table.
	EnsureIndexes(context ctx.Ctx, table domain.Table, indexes []Index) error
}
