package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bilgisen/pubserve/internal/api"
	"github.com/bilgisen/pubserve/internal/storage"
)

func startServer(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	store, err := storage.NewStorage(dir, "index.html")
	if err != nil {
		t.Fatalf("NewStorage returned error: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	app := api.NewApp(store)
	go app.Listener(ln)

	t.Cleanup(func() {
		app.Shutdown()
		store.Close()
	})

	return "http://" + ln.Addr().String()
}

func TestCheckAll(t *testing.T) {
	base := startServer(t, map[string]string{
		"index.html": "<html>A</html>",
		"app.js":     "console.log(1)",
	})

	results := NewProber(base+"/", 5*time.Second).CheckAll(context.Background(), []string{"/", "app.js", "/missing/route"})

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	want := []struct {
		path  string
		bytes int
		ctype string
	}{
		{"/", len("<html>A</html>"), "text/html"},
		{"/app.js", len("console.log(1)"), "javascript"},
		{"/missing/route", len("<html>A</html>"), "text/html"},
	}
	for i, w := range want {
		r := results[i]
		if r.Err != nil {
			t.Errorf("%s: unexpected error %v", w.path, r.Err)
			continue
		}
		if r.Path != w.path || r.Status != http.StatusOK || r.Bytes != w.bytes {
			t.Errorf("Unexpected result %+v, want %s 200 %d bytes", r, w.path, w.bytes)
		}
		if !strings.Contains(r.ContentType, w.ctype) {
			t.Errorf("%s: expected content type containing %q, got %q", w.path, w.ctype, r.ContentType)
		}
	}

	if failed := Failed(results, http.StatusOK); len(failed) != 0 {
		t.Errorf("Expected no failures, got %+v", failed)
	}
}

func TestCheckNotFound(t *testing.T) {
	base := startServer(t, nil)

	results := NewProber(base, 5*time.Second).CheckAll(context.Background(), []string{"/", "/anything"})

	for _, r := range results {
		if r.Status != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", r.Path, r.Status)
		}
	}
	if failed := Failed(results, http.StatusOK); len(failed) != 2 {
		t.Errorf("Expected 2 failures, got %d", len(failed))
	}
}

func TestCheckUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	r := NewProber("http://"+addr, time.Second).Check(context.Background(), "/")
	if r.Err == nil {
		t.Fatal("Expected error for closed port")
	}
	if len(Failed([]Result{r}, http.StatusOK)) != 1 {
		t.Error("Expected errored result to count as failed")
	}
}

func TestFailed(t *testing.T) {
	results := []Result{
		{Path: "/", Status: 200},
		{Path: "/a", Status: 404},
		{Path: "/b", Err: errors.New("boom")},
	}

	failed := Failed(results, 200)
	if len(failed) != 2 || failed[0].Path != "/a" || failed[1].Path != "/b" {
		t.Errorf("Unexpected failures %+v", failed)
	}
}
