package sheetredirect

import (
	"context"
	"fmt"
	"github.com/bwmarrin/snowflake"
	"log"
	"strings"
)

func NewManager(bk Backend) (*Manager, error) {
	bkNodeId, err := bk.getNodeId()
	if err != nil {
		return nil, err
	}
	snowflake.Epoch = idEpoch
	node, err := snowflake.NewNode(bkNodeId)
	if err != nil {
		return nil, err
	}
	return &Manager{node, bk}, nil
}

// Add appends a redirect row. New rows sort after existing ones, so they
// lose to an earlier row with the same link.
func (m *Manager) Add(link, redirect string) (snowflake.ID, error) {
	link = strings.TrimSpace(link)
	redirect = strings.TrimSpace(redirect)
	if err := checkRow(link, redirect); err != nil {
		return 0, err
	}
	id := m.snode.Generate()
	err := m.bk.InsertRecord(&RecordEntry{Id: uint64(id), Link: link, Redirect: redirect})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (m *Manager) Remove(link string) (int64, error) {
	return m.bk.DeleteByLink(strings.TrimSpace(link))
}

func (m *Manager) List() ([]RecordEntry, error) {
	return m.bk.QueryAll()
}

// Import replaces the stored rows with the cleaned contents of src. Rows
// Add would reject are skipped. Unlike FetchRecords, a source error is
// returned and leaves the stored rows alone.
func (m *Manager) Import(ctx context.Context, src Source) (int, error) {
	raw, err := src.FetchRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	records := cleanRecords(raw)
	entries := make([]RecordEntry, 0, len(records))
	for _, r := range records {
		if err = checkRow(r.Link, r.Redirect); err != nil {
			log.Printf("import: skipping row: %v", err)
			continue
		}
		entries = append(entries, RecordEntry{Id: uint64(m.snode.Generate()), Link: r.Link, Redirect: r.Redirect})
	}
	if err = m.bk.ReplaceAll(entries); err != nil {
		return 0, fmt.Errorf("replace rows: %w", err)
	}
	return len(entries), nil
}

// checkRow holds stored rows to what a request path can match.
func checkRow(link, redirect string) error {
	if !strings.HasPrefix(link, "/") {
		return fmt.Errorf("link %q must start with /", link)
	}
	if redirect == "" {
		return fmt.Errorf("redirect for %q must not be empty", link)
	}
	return nil
}
