package sheetredirect

import (
	"github.com/bwmarrin/snowflake"
	"time"
)

// idEpoch is the snowflake epoch shared by table and row IDs.
const idEpoch = 1657436936000 // 2022/7/10 7:8:56 UTC

// NewStore returns a store holding an empty table with ID 0.
func NewStore() *Store {
	snowflake.Epoch = idEpoch
	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}
	s := &Store{node: node}
	s.value.Store(&Table{Records: []Record{}})
	return s
}

func (s *Store) Get() *Table {
	return s.value.Load()
}

// Replace swaps in a new snapshot built from records. The whole table is
// replaced in one pointer store; records must not be modified afterwards.
func (s *Store) Replace(records []Record) *Table {
	if records == nil {
		records = []Record{}
	}
	t := &Table{
		ID:        s.node.Generate(),
		Records:   records,
		FetchedAt: time.Now(),
	}
	s.value.Store(t)
	return t
}
