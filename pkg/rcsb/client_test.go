package rcsb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestListIdentifiers(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		fmt.Fprint(w, "1ABC\n2DEF\n\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	ids, err := c.ListIdentifiers(context.Background(), "ELECTRON MICROSCOPY")
	if err != nil {
		t.Fatalf("list identifiers: %v", err)
	}
	if len(ids) != 2 || ids[0] != "1ABC" || ids[1] != "2DEF" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if !strings.Contains(gotBody, "<mvStructure.expMethod.value>ELECTRON MICROSCOPY</mvStructure.expMethod.value>") {
		t.Fatalf("query payload missing method: %s", gotBody)
	}
}

func TestListIdentifiersEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ids, err := NewClient(srv.URL, nil).ListIdentifiers(context.Background(), "HYBRID")
	if err != nil {
		t.Fatalf("list identifiers: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no ids, got %v", ids)
	}
}

func TestFetchRecordsConcatenatesInOrder(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("pdbids")
		calls = append(calls, id)
		if got := r.URL.Query().Get("customReportColumns"); got != "structureId,resolution" {
			t.Errorf("unexpected field list: %s", got)
		}
		fmt.Fprintf(w, "body-%s\n", id)
	}))
	defer srv.Close()

	raw, err := NewClient(srv.URL, nil).FetchRecords(context.Background(), []string{"1ABC", "2DEF", "3GHI"}, []string{"structureId", "resolution"})
	if err != nil {
		t.Fatalf("fetch records: %v", err)
	}
	if raw != "body-1ABC\nbody-2DEF\nbody-3GHI\n" {
		t.Fatalf("unexpected concatenation: %q", raw)
	}
	// One call per identifier, in identifier order.
	if len(calls) != 3 || calls[0] != "1ABC" || calls[2] != "3GHI" {
		t.Fatalf("unexpected call sequence: %v", calls)
	}
}

func TestRemoteErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	var remoteErr *RemoteError
	if _, err := c.ListIdentifiers(context.Background(), "X-RAY"); !errors.As(err, &remoteErr) {
		t.Fatalf("expected *RemoteError from search, got %v", err)
	}
	if _, err := c.FetchRecords(context.Background(), []string{"1ABC"}, []string{"structureId"}); !errors.As(err, &remoteErr) {
		t.Fatalf("expected *RemoteError from fetch, got %v", err)
	}

	// Unreachable server: transport failure is also a RemoteError.
	dead := NewClient("http://127.0.0.1:1", nil)
	if _, err := dead.ListIdentifiers(context.Background(), "X-RAY"); !errors.As(err, &remoteErr) {
		t.Fatalf("expected *RemoteError from dead server, got %v", err)
	}
}
