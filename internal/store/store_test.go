package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), ".envdoter", "db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestOpen_CreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "deeply", "nested", "db")

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	info, err := os.Stat(filepath.Dir(dbPath))
	if err != nil {
		t.Fatalf("stat store dir: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("store dir permissions = %o, want 0700", info.Mode().Perm())
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}

	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}
}

func TestOpen_Unavailable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// A regular file where the parent directory should be.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "parent is a file", path: filepath.Join(blocker, "db")},
		{name: "nested under a file", path: filepath.Join(blocker, "sub", "db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.path)
			if err == nil {
				s.Close()
				t.Fatal("Open succeeded, want error")
			}
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("Open error = %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestSetGet(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	tests := []struct {
		key   string
		value string
	}{
		{"FOO", "bar"},
		{"WITH_EQUALS", "a=b=c"},
		{"EMPTY", ""},
		{"UNICODE", "héllo wörld"},
		{"MULTI", "line1\nline2"},
	}

	for _, tt := range tests {
		got, err := s.Set(tt.key, tt.value)
		if err != nil {
			t.Fatalf("Set(%q): %v", tt.key, err)
		}
		if got != tt.key {
			t.Errorf("Set(%q) returned %q, want the key", tt.key, got)
		}
	}

	for _, tt := range tests {
		got, err := s.Get(tt.key)
		if err != nil {
			t.Fatalf("Get(%q): %v", tt.key, err)
		}
		if got != tt.value {
			t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.value)
		}
	}
}

func TestSet_Overwrite(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	for _, v := range []string{"one", "two", "three"} {
		if _, err := s.Set("KEY", v); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	got, err := s.Get("KEY")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "three" {
		t.Errorf("Get = %q, want last write %q", got, "three")
	}

	keys, err := s.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if diff := cmp.Diff([]string{"KEY"}, keys); diff != "" {
		t.Errorf("ListKeys mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_EmptyKey(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	if _, err := s.Set("", "value"); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("Set(\"\") error = %v, want ErrEmptyKey", err)
	}
}

func TestGet_MissingKeyReturnsEmpty(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	got, err := s.Get("NEVER_WRITTEN")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "" {
		t.Errorf("Get = %q, want empty string", got)
	}
}

func TestLookup_DistinguishesAbsentFromEmpty(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	if _, err := s.Set("EMPTY", ""); err != nil {
		t.Fatalf("Set: %v", err)
	}

	value, ok, err := s.Lookup("EMPTY")
	if err != nil {
		t.Fatalf("Lookup(EMPTY): %v", err)
	}
	if !ok || value != "" {
		t.Errorf("Lookup(EMPTY) = (%q, %v), want (\"\", true)", value, ok)
	}

	value, ok, err = s.Lookup("ABSENT")
	if err != nil {
		t.Fatalf("Lookup(ABSENT): %v", err)
	}
	if ok || value != "" {
		t.Errorf("Lookup(ABSENT) = (%q, %v), want (\"\", false)", value, ok)
	}
}

func TestListKeys_ByteOrder(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	for _, k := range []string{"b", "A_2", "a", "B", "A_10", "A", "é"} {
		if _, err := s.Set(k, "v"); err != nil {
			t.Fatalf("Set(%q): %v", k, err)
		}
	}

	keys, err := s.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}

	want := []string{"A", "A_10", "A_2", "B", "a", "b", "é"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("ListKeys mismatch (-want +got):\n%s", diff)
	}
}

func TestListKeys_EmptyStore(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	keys, err := s.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("ListKeys = %v, want empty", keys)
	}
}

func TestListPrefix(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	for _, k := range []string{"APP_NAME", "APP_PORT", "APPLE", "AP", "DB_HOST", "ZED"} {
		if _, err := s.Set(k, "v"); err != nil {
			t.Fatalf("Set(%q): %v", k, err)
		}
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"AP", "APPLE", "APP_NAME", "APP_PORT", "DB_HOST", "ZED"}},
		{"APP", []string{"APPLE", "APP_NAME", "APP_PORT"}},
		{"APP_", []string{"APP_NAME", "APP_PORT"}},
		{"DB", []string{"DB_HOST"}},
		{"NOPE", []string{}},
		{"ZED_", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := s.ListPrefix(tt.prefix)
			if err != nil {
				t.Fatalf("ListPrefix(%q): %v", tt.prefix, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ListPrefix(%q) mismatch (-want +got):\n%s", tt.prefix, diff)
			}
		})
	}
}

func TestEncodingErrors(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	if _, err := s.Set("GOOD", "\xfe\xff"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := s.Get("GOOD"); !errors.Is(err, ErrEncoding) {
		t.Errorf("Get with invalid value error = %v, want ErrEncoding", err)
	}

	if _, err := s.Set("\xffBAD", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := s.ListKeys(); !errors.Is(err, ErrEncoding) {
		t.Errorf("ListKeys with invalid key error = %v, want ErrEncoding", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "db")

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Set("API_KEY", "secret"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.Get("API_KEY")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "secret" {
		t.Errorf("Get after reopen = %q, want %q", got, "secret")
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				key := fmt.Sprintf("W%d_K%02d", w, i)
				value := fmt.Sprintf("%d-%d", w, i)
				if _, err := s.Set(key, value); err != nil {
					errs <- err
					return
				}
				got, err := s.Get(key)
				if err != nil {
					errs <- err
					return
				}
				if got != value {
					errs <- fmt.Errorf("Get(%q) = %q, want %q", key, got, value)
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	keys, err := s.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(keys) != workers*perWorker {
		t.Errorf("ListKeys returned %d keys, want %d", len(keys), workers*perWorker)
	}
}
