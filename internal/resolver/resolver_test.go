package resolver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lcrostarosa/rekordbox-migrator/internal/logging"
	"github.com/lcrostarosa/rekordbox-migrator/internal/scanner"
)

func buildRoot(t *testing.T, paths []string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newTestResolver(t *testing.T, root string) *Resolver {
	t.Helper()
	r := New(root, scanner.DefaultConfig(), logging.Discard())
	t.Cleanup(r.Close)
	return r
}

func TestResolveDirect(t *testing.T) {
	root := buildRoot(t, []string{"a.mp3"})
	r := newTestResolver(t, root)

	res, err := r.Resolve(context.Background(), "a.mp3")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !res.Found {
		t.Fatal("expected a.mp3 to be found")
	}
	want, _ := filepath.Abs(filepath.Join(root, "a.mp3"))
	if res.Path != want {
		t.Errorf("Path = %q, want %q", res.Path, want)
	}
}

func TestResolveNested(t *testing.T) {
	root := buildRoot(t, []string{"Live/Deep/b.wav"})
	r := newTestResolver(t, root)

	res, err := r.Resolve(context.Background(), "b.wav")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !res.Found {
		t.Fatal("expected b.wav to be found via the index")
	}
	want, _ := filepath.Abs(filepath.Join(root, "Live", "Deep", "b.wav"))
	if res.Path != want {
		t.Errorf("Path = %q, want %q", res.Path, want)
	}
}

func TestResolveNotFound(t *testing.T) {
	root := buildRoot(t, []string{"a.mp3"})
	r := newTestResolver(t, root)

	res, err := r.Resolve(context.Background(), "missing.mp3")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Found {
		t.Errorf("missing.mp3 unexpectedly found at %q", res.Path)
	}
}

func TestResolveEmptyName(t *testing.T) {
	root := buildRoot(t, []string{"a.mp3"})
	r := newTestResolver(t, root)

	res, err := r.Resolve(context.Background(), "")
	if err != nil || res.Found {
		t.Errorf("empty name resolved to (%+v, %v), want clean miss", res, err)
	}
}

func TestResolveAwkwardNames(t *testing.T) {
	names := []string{
		"track with spaces.mp3",
		"パンチ!.wav",
		"odd&chars=(ok).flac",
	}
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = "Crate/" + n
	}
	root := buildRoot(t, paths)
	r := newTestResolver(t, root)

	for _, n := range names {
		res, err := r.Resolve(context.Background(), n)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", n, err)
		}
		if !res.Found {
			t.Errorf("Resolve(%q) missed", n)
		}
	}
}

func TestResolveCaseSensitive(t *testing.T) {
	root := buildRoot(t, []string{"Sets/Track.mp3"})
	r := newTestResolver(t, root)

	res, err := r.Resolve(context.Background(), "track.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if res.Found {
		t.Error("lookup matched a name differing only in case")
	}
}

func TestResolveConcurrent(t *testing.T) {
	root := buildRoot(t, []string{
		"a.mp3", "Live/b.wav", "Live/Deep/c.flac", "d.aiff",
	})
	r := newTestResolver(t, root)

	names := []string{"a.mp3", "b.wav", "c.flac", "d.aiff", "nope.mp3"}
	var wg sync.WaitGroup
	errs := make([]error, len(names)*8)
	found := make([]bool, len(names)*8)

	for i := 0; i < 8; i++ {
		for j, n := range names {
			wg.Add(1)
			go func(slot int, name string) {
				defer wg.Done()
				res, err := r.Resolve(context.Background(), name)
				errs[slot] = err
				found[slot] = res.Found
			}(i*len(names)+j, n)
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent resolve %d failed: %v", i, err)
		}
	}
	for i, ok := range found {
		wantFound := names[i%len(names)] != "nope.mp3"
		if ok != wantFound {
			t.Errorf("resolve %d (name %q): found=%v, want %v", i, names[i%len(names)], ok, wantFound)
		}
	}
}
