package sheetredirect

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// FetchRecords pulls rows from src and cleans them. It never returns an
// error: failures are logged and yield an empty record set, with the cause
// kept in the result.
func FetchRecords(ctx context.Context, src Source) (res FetchResult) {
	defer func() {
		if r := recover(); r != nil {
			res = FetchResult{Records: []Record{}, Err: fmt.Errorf("panic: %v", r)}
			log.Printf("error fetching redirect data: %v", res.Err)
		}
	}()
	raw, err := src.FetchRecords(ctx)
	if err != nil {
		log.Printf("error fetching redirect data: %v", err)
		return FetchResult{Records: []Record{}, Err: err}
	}
	records := cleanRecords(raw)
	log.Printf("fetched %d records: %v", len(records), records)
	return FetchResult{Records: records}
}

// cleanRecords trims both fields and drops records missing either one,
// keeping row order.
func cleanRecords(raw []Record) []Record {
	result := make([]Record, 0, len(raw))
	for _, r := range raw {
		link := strings.TrimSpace(r.Link)
		redirect := strings.TrimSpace(r.Redirect)
		if link == "" || redirect == "" {
			continue
		}
		result = append(result, Record{Link: link, Redirect: redirect})
	}
	return result
}
