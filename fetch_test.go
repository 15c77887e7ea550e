package sheetredirect

import (
	"context"
	"errors"
	"testing"
)

func TestFetchRecords_Clean(t *testing.T) {
	src := &fakeSource{records: []Record{
		{Link: "/a", Redirect: "a.example.com"},
		{Link: " /b\t", Redirect: "\n b.example.com "},
		{Link: "", Redirect: "no-link.example.com"},
		{Link: "/no-redirect", Redirect: ""},
		{Link: "   ", Redirect: "blank-link.example.com"},
		{Link: "/a", Redirect: "dup.example.com"},
	}}
	res := FetchRecords(context.Background(), src)
	if res.Failed() {
		t.Fatal("unexpected failure.", res.Err)
	}
	want := []Record{
		{Link: "/a", Redirect: "a.example.com"},
		{Link: "/b", Redirect: "b.example.com"},
		{Link: "/a", Redirect: "dup.example.com"},
	}
	if len(res.Records) != len(want) {
		t.Fatalf("got %v, want %v", res.Records, want)
	}
	for i := range want {
		if res.Records[i] != want[i] {
			t.Errorf("record %d = %v, want %v", i, res.Records[i], want[i])
		}
	}
}

func TestFetchRecords_Error(t *testing.T) {
	cause := errors.New("network unreachable")
	res := FetchRecords(context.Background(), &fakeSource{err: cause})
	if !errors.Is(res.Err, cause) {
		t.Fatal("cause should be kept,", res.Err)
	}
	if res.Records == nil || len(res.Records) != 0 {
		t.Fatal("failed fetch should carry an empty record set")
	}
}
