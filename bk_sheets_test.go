package sheetredirect

import (
	"context"
	"encoding/json"
	"google.golang.org/api/option"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const (
	testSpreadsheetId = "sheet-id"
	testApiKey        = "test-key"
)

type fakeSheets struct {
	titles     []string
	values     [][]interface{}
	infoStatus int
	ranges     []string
}

func (f *fakeSheets) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/spreadsheets/"+testSpreadsheetId, func(w http.ResponseWriter, r *http.Request) {
		if f.infoStatus != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.infoStatus)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
			return
		}
		sheets := make([]map[string]interface{}, 0, len(f.titles))
		for _, title := range f.titles {
			sheets = append(sheets, map[string]interface{}{"properties": map[string]interface{}{"title": title}})
		}
		writeJSON(w, map[string]interface{}{"sheets": sheets})
	})
	mux.HandleFunc("/v4/spreadsheets/"+testSpreadsheetId+"/values/", func(w http.ResponseWriter, r *http.Request) {
		f.ranges = append(f.ranges, strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/"+testSpreadsheetId+"/values/"))
		writeJSON(w, map[string]interface{}{
			"range":          "Redirects!A1:Z100",
			"majorDimension": "ROWS",
			"values":         f.values,
		})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func openFakeSheets(t *testing.T, f *fakeSheets, sheetName string) *sheetsBackend {
	t.Helper()
	ts := f.start(t)
	bk, err := SheetsOpen(context.Background(), testSpreadsheetId, sheetName, testApiKey,
		option.WithEndpoint(ts.URL+"/"))
	if err != nil {
		t.Fatal("failed on opening sheets.", err)
	}
	return bk
}

func TestSheets_FetchRecords(t *testing.T) {
	f := &fakeSheets{
		titles: []string{"Other", "Redirects"},
		values: [][]interface{}{
			{"note", " link ", "redirect"},
			{"a", "/go", "example.com/target"},
			{"b", "  /padded ", "  https://example.org  "},
			{"c", "", "example.net"},
			{"d", "/nodest"},
			{"e", "/ws", "   "},
			{"f", "/go", "second.example.com"},
		},
	}
	bk := openFakeSheets(t, f, "Redirects")

	res := FetchRecords(context.Background(), bk)
	if res.Failed() {
		t.Fatal("fetch failed.", res.Err)
	}
	want := []Record{
		{Link: "/go", Redirect: "example.com/target"},
		{Link: "/padded", Redirect: "https://example.org"},
		{Link: "/go", Redirect: "second.example.com"},
	}
	if len(res.Records) != len(want) {
		t.Fatalf("got %v, want %v", res.Records, want)
	}
	for i := range want {
		if res.Records[i] != want[i] {
			t.Errorf("record %d = %v, want %v", i, res.Records[i], want[i])
		}
	}
	if len(f.ranges) != 1 || f.ranges[0] != "'Redirects'" {
		t.Errorf("ranges requested = %q", f.ranges)
	}
}

func TestSheets_SheetNotFound(t *testing.T) {
	f := &fakeSheets{
		titles: []string{"Sheet1"},
		values: [][]interface{}{{"link", "redirect"}, {"/go", "example.com"}},
	}
	bk := openFakeSheets(t, f, "Redirects")

	_, err := bk.FetchRecords(context.Background())
	if err == nil || !strings.Contains(err.Error(), `sheet with name "Redirects" not found`) {
		t.Fatal("expected sheet not found, got", err)
	}
	if len(f.ranges) != 0 {
		t.Fatal("rows should not be read for a missing sheet")
	}
	res := FetchRecords(context.Background(), bk)
	if !res.Failed() || len(res.Records) != 0 {
		t.Fatal("missing sheet should fail to empty")
	}
}

func TestSheets_ApiError(t *testing.T) {
	f := &fakeSheets{titles: []string{"Redirects"}, infoStatus: http.StatusForbidden}
	bk := openFakeSheets(t, f, "Redirects")

	res := FetchRecords(context.Background(), bk)
	if !res.Failed() {
		t.Fatal("api error should fail")
	}
	if res.Records == nil || len(res.Records) != 0 {
		t.Fatal("api error should yield an empty record set")
	}
}

func TestSheets_BadHeader(t *testing.T) {
	cases := map[string][][]interface{}{
		"empty":          nil,
		"missing link":   {{"redirect", "url"}, {"example.com", "/go"}},
		"wrong case":     {{"Link", "Redirect"}, {"/go", "example.com"}},
		"missing header": {{}},
		"duplicate link": {{"link", "redirect", "link"}, {"/go", "example.com", "/other"}},
		"padded dupe":    {{"redirect", "link", " redirect "}, {"a.example.com", "/go", "b.example.com"}},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			bk := openFakeSheets(t, &fakeSheets{titles: []string{"Redirects"}, values: values}, "Redirects")
			if _, err := bk.FetchRecords(context.Background()); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestSheets_NonStringCells(t *testing.T) {
	records, err := recordsFromValues([][]interface{}{
		{"link", "redirect"},
		{"/n", 42.0},
		{nil, "example.com"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Redirect != "42" {
		t.Errorf("redirect = %q", records[0].Redirect)
	}
	if records[1].Link != "" {
		t.Errorf("link = %q", records[1].Link)
	}
}

func TestSheets_QuoteTitle(t *testing.T) {
	if got := quoteSheetTitle("Bob's links"); got != "'Bob''s links'" {
		t.Fatal("got", got)
	}
}

func TestSheetsOpen_Required(t *testing.T) {
	if _, err := SheetsOpen(context.Background(), "", "Redirects", testApiKey); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}
