package sheetredirect

import (
	"context"
	"fmt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"strings"
)

const (
	redirectColumn = "redirect"
	linkColumn     = "link"
)

type sheetsBackend struct {
	svc           *sheets.Service
	spreadsheetId string
	sheetName     string
}

// SheetsOpen connects to the Google Sheets API with an API key. Extra client
// options are appended after the key, so tests can point it at a fake endpoint.
func SheetsOpen(ctx context.Context, spreadsheetId, sheetName, apiKey string, opts ...option.ClientOption) (*sheetsBackend, error) {
	if spreadsheetId == "" || sheetName == "" || apiKey == "" {
		return nil, fmt.Errorf("spreadsheet id, sheet name and api key are required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &sheetsBackend{svc, spreadsheetId, sheetName}, nil
}

func (s *sheetsBackend) FetchRecords(ctx context.Context) ([]Record, error) {
	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetId).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("load spreadsheet info: %w", err)
	}
	found := false
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheetName {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("sheet with name %q not found", s.sheetName)
	}

	vr, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetId, quoteSheetTitle(s.sheetName)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}
	return recordsFromValues(vr.Values)
}

// quoteSheetTitle turns a sheet title into an A1 range covering the whole sheet.
func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// recordsFromValues maps a header row plus data rows to records. Cells are
// returned untrimmed; short rows produce empty fields.
func recordsFromValues(values [][]interface{}) ([]Record, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, fmt.Errorf("no values in the header row")
	}
	redirectIdx, linkIdx := -1, -1
	for i, h := range values[0] {
		name := strings.TrimSpace(cellString(h))
		var idx *int
		switch name {
		case redirectColumn:
			idx = &redirectIdx
		case linkColumn:
			idx = &linkIdx
		default:
			continue
		}
		if *idx >= 0 {
			return nil, fmt.Errorf("duplicate header %q in columns %d and %d", name, *idx+1, i+1)
		}
		*idx = i
	}
	if redirectIdx < 0 {
		return nil, fmt.Errorf("header row has no %q column", redirectColumn)
	}
	if linkIdx < 0 {
		return nil, fmt.Errorf("header row has no %q column", linkColumn)
	}

	result := make([]Record, 0, len(values)-1)
	for _, row := range values[1:] {
		result = append(result, Record{
			Link:     cellAt(row, linkIdx),
			Redirect: cellAt(row, redirectIdx),
		})
	}
	return result, nil
}

func cellAt(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	return cellString(row[i])
}

func cellString(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}
