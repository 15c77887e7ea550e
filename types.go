package sheetredirect

import (
	"context"
	"github.com/bwmarrin/snowflake"
	"github.com/patrickmn/go-cache"
	"sync"
	"sync/atomic"
	"time"
)

// Record is a single (link, redirect) pair from the data source.
type Record struct {
	Link     string
	Redirect string
}

// Table is an immutable snapshot of the redirect records, in fetch order.
type Table struct {
	ID        snowflake.ID
	Records   []Record
	FetchedAt time.Time
}

// FetchResult keeps "the source had no rows" apart from "the source call failed".
// Records is empty on failure.
type FetchResult struct {
	Records []Record
	Err     error
}

func (r FetchResult) Failed() bool {
	return r.Err != nil
}

// Source is an external tabular data source holding redirect rows.
type Source interface {
	FetchRecords(ctx context.Context) ([]Record, error)
}

type RecordEntry struct {
	Id       uint64
	Link     string
	Redirect string
}

type Backend interface {
	Source
	InsertRecord(entry *RecordEntry) error
	DeleteByLink(link string) (int64, error)
	QueryAll() ([]RecordEntry, error)
	ReplaceAll(entries []RecordEntry) error
	Close() error
	getNodeId() (int64, error)
}

type Store struct {
	node  *snowflake.Node
	value atomic.Pointer[Table]
}

type Refresher struct {
	src      Source
	store    *Store
	interval time.Duration
	wg       sync.WaitGroup
}

// Decision is the outcome of matching a request path. The zero value means pass.
type Decision struct {
	Matched  bool
	Location string
}

type Redirecter struct {
	store *Store
	cache *cache.Cache
}

type Manager struct {
	snode *snowflake.Node
	bk    Backend
}
