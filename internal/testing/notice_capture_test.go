package testing

import (
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestNoticeCapture_CollectsNotices(t *testing.T) {
	nc := NewNoticeCapture()
	handler := nc.Handler()

	handler(nil, &pgconn.Notice{Severity: "NOTICE", Code: "42P07", Message: `relation "users" already exists, skipping`})
	handler(nil, &pgconn.Notice{Severity: "WARNING", Code: "01000", Message: "something else"})
	handler(nil, nil)

	if nc.Count() != 2 {
		t.Fatalf("expected 2 notices, got %d", nc.Count())
	}
	got := nc.Notices()[0]
	if got.Severity != "NOTICE" || got.Code != "42P07" {
		t.Errorf("unexpected notice: %+v", got)
	}

	matches := nc.Matching("already exists")
	if len(matches) != 1 {
		t.Errorf("expected 1 match, got %v", matches)
	}
}

func TestNoticeCapture_Reset(t *testing.T) {
	nc := NewNoticeCapture()
	nc.Handler()(nil, &pgconn.Notice{Message: "x"})

	nc.Reset()

	if nc.Count() != 0 {
		t.Errorf("expected no notices after reset, got %d", nc.Count())
	}
}

func TestNoticeCapture_Concurrent(t *testing.T) {
	nc := NewNoticeCapture()
	handler := nc.Handler()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handler(nil, &pgconn.Notice{Message: "n"})
		}()
	}
	wg.Wait()

	if nc.Count() != 50 {
		t.Errorf("expected 50 notices, got %d", nc.Count())
	}
}
