package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/studiowebux/reqshot/internal/capture"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func exchangeAt(method, url string, at time.Time) *capture.Exchange {
	return &capture.Exchange{
		CapturedAt: at,
		Source:     capture.SourceProxy,
		Method:     method,
		URL:        url,
		Status:     200,
		Duration:   42 * time.Millisecond,
		Request:    method + " / HTTP/1.1\r\nHost: a\r\n\r\n",
		Response:   "HTTP/1.1 200 OK\r\n\r\n{}",
	}
}

func TestManager_SaveAndGet(t *testing.T) {
	m := newTestManager(t)
	base := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)

	ex := exchangeAt("POST", "http://api.test/login", base)
	if err := m.Save(ex); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if ex.ID == "" {
		t.Fatal("Save() did not assign an ID")
	}

	got, err := m.Get(ex.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.URL != ex.URL || got.Request != ex.Request || got.Response != ex.Response {
		t.Errorf("Get() = %+v, want %+v", got, ex)
	}
	if got.Duration != 42*time.Millisecond {
		t.Errorf("Duration = %v", got.Duration)
	}
	if !got.CapturedAt.Equal(base) {
		t.Errorf("CapturedAt = %v, want %v", got.CapturedAt, base)
	}
	if got.Source != capture.SourceProxy {
		t.Errorf("Source = %q", got.Source)
	}

	byPrefix, err := m.Get(ex.ID[:8])
	if err != nil || byPrefix.ID != ex.ID {
		t.Errorf("Get(prefix) = %v, %v", byPrefix.ID, err)
	}
}

func TestManager_GetErrors(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	now := time.Now()
	m.Save(&capture.Exchange{ID: "abc-1", CapturedAt: now, Method: "GET", URL: "http://a/", Request: "x"})
	m.Save(&capture.Exchange{ID: "abc-2", CapturedAt: now, Method: "GET", URL: "http://b/", Request: "y"})

	if _, err := m.Get("abc"); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("Get(abc) error = %v, want ErrAmbiguous", err)
	}
}

func TestManager_ListOrderAndFilter(t *testing.T) {
	m := newTestManager(t)
	base := time.Now()

	for i, url := range []string{"http://a/1", "http://a/2", "http://a/3"} {
		ex := exchangeAt("GET", url, base.Add(time.Duration(i)*time.Second))
		if err := m.Save(ex); err != nil {
			t.Fatal(err)
		}
	}
	har := exchangeAt("GET", "http://har/", base.Add(-time.Hour))
	har.Source = capture.SourceHAR
	m.Save(har)

	all, err := m.List("", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 4 || all[0].URL != "http://a/3" {
		t.Errorf("List() not newest first: %v", titles(all))
	}

	limited, _ := m.List("", 2)
	if len(limited) != 2 {
		t.Errorf("List(limit 2) returned %d", len(limited))
	}

	hars, _ := m.List(capture.SourceHAR, 0)
	if len(hars) != 1 || hars[0].URL != "http://har/" {
		t.Errorf("List(har) = %v", titles(hars))
	}
}

func TestManager_Find(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()
	m.Save(exchangeAt("GET", "http://shop.test/cart", now))
	m.Save(exchangeAt("POST", "http://shop.test/login", now.Add(time.Second)))
	m.Save(exchangeAt("GET", "http://cdn.test/app.js", now.Add(2*time.Second)))

	found, err := m.Find("login", 0)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(found) != 1 || found[0].URL != "http://shop.test/login" {
		t.Errorf("Find(login) = %v", titles(found))
	}

	everything, _ := m.Find("", 2)
	if len(everything) != 2 {
		t.Errorf("Find(empty, 2) returned %d", len(everything))
	}

	none, _ := m.Find("zzzz", 0)
	if len(none) != 0 {
		t.Errorf("Find(zzzz) = %v", titles(none))
	}
}

func TestManager_DeleteClearTrim(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()
	var ids []string
	for i := 0; i < 5; i++ {
		ex := exchangeAt("GET", "http://a/", now.Add(time.Duration(i)*time.Second))
		m.Save(ex)
		ids = append(ids, ex.ID)
	}

	if err := m.Delete(ids[0]); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := m.Delete(ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	removed, err := m.Trim(2)
	if err != nil {
		t.Fatalf("Trim() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Trim() removed %d, want 2", removed)
	}
	rest, _ := m.List("", 0)
	if len(rest) != 2 || rest[0].ID != ids[4] || rest[1].ID != ids[3] {
		t.Errorf("Trim kept wrong captures: %v", titles(rest))
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	count, _ := m.GetCount()
	if count != 0 {
		t.Errorf("count after Clear = %d", count)
	}
}

func titles(list []capture.Exchange) []string {
	out := make([]string, len(list))
	for i, ex := range list {
		out[i] = ex.Title()
	}
	return out
}
