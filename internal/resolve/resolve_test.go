package resolve

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/autobib/autobib/internal/aliastransform"
	"github.com/autobib/autobib/internal/provider"
	"github.com/autobib/autobib/internal/statemachine"
	"github.com/autobib/autobib/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(context.Background(), filepath.Join(dir, "test.db"), store.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// routingFetcher dispatches canned responses by URL substring, since a
// single resolution can touch several provider endpoints in sequence
// (e.g. zbl's search API, then zbmath's bibtex endpoint).
type routingFetcher struct {
	routes []struct {
		substr string
		status int
		body   []byte
	}
	calls []string
}

func (f *routingFetcher) route(substr string, status int, body string) {
	f.routes = append(f.routes, struct {
		substr string
		status int
		body   []byte
	}{substr, status, []byte(body)})
}

func (f *routingFetcher) Get(ctx context.Context, url string) (*provider.Response, error) {
	f.calls = append(f.calls, url)
	for _, r := range f.routes {
		if strings.Contains(url, r.substr) {
			return &provider.Response{StatusCode: r.status, Header: http.Header{}, Body: r.body}, nil
		}
	}
	return &provider.Response{StatusCode: 404, Header: http.Header{}, Body: nil}, nil
}

// TestAliasTransformRewrite implements S3 from spec.md §8: an
// alias-transform rule rewrites "zbMATH06346461" into "zbmath:06346461",
// with the original string also recorded as an identifier.
func TestAliasTransformRewrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rules, errs := aliastransform.BuildRules([][2]string{
		{"^zbMATH([0-9]+)$", "zbmath"},
	})
	if len(errs) != 0 {
		t.Fatalf("BuildRules errs: %v", errs)
	}

	f := &routingFetcher{}
	f.route("zbmath.org/bibtex", 200, "@article{x,\n  title = {A Title},\n  author = {Doe, Jane},\n}\n")

	err := s.RunWrite(ctx, func(tx *store.Tx) error {
		st, err := Resolve(ctx, tx, "zbMATH06346461", f, rules)
		if err != nil {
			return err
		}
		if st.Kind != statemachine.KindEntry {
			t.Fatalf("expected Entry, got %v", st.Kind)
		}

		key, found, err := tx.LookupIdentifier(ctx, "zbmath:06346461")
		if err != nil {
			return err
		}
		if !found || key != st.Row.Key {
			t.Errorf("zbmath:06346461 lookup = %d,%v, want %d,true", key, found, st.Row.Key)
		}

		origKey, found, err := tx.LookupIdentifier(ctx, "zbMATH06346461")
		if err != nil {
			return err
		}
		if !found || origKey != st.Row.Key {
			t.Errorf("original alias zbMATH06346461 lookup = %d,%v, want %d,true", origKey, found, st.Row.Key)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite: %v", err)
	}
}

// TestReferenceChainFollowing implements S4: zbl:1337.28015 resolves
// via zbl's Refer to zbmath:06346461, and the zbl identifier ends up
// bound to the resulting Entry row.
func TestReferenceChainFollowing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := &routingFetcher{}
	f.route("api.zbmath.org/v1/document/_search", 200, `{"result":[{"zbmath_id":"6346461"}]}`)
	f.route("zbmath.org/bibtex", 200, "@article{x,\n  title = {Chained},\n}\n")

	err := s.RunWrite(ctx, func(tx *store.Tx) error {
		st, err := Resolve(ctx, tx, "zbl:1337.28015", f, nil)
		if err != nil {
			return err
		}
		if st.Kind != statemachine.KindEntry {
			t.Fatalf("expected Entry, got %v", st.Kind)
		}

		key, found, err := tx.LookupIdentifier(ctx, "zbl:1337.28015")
		if err != nil {
			return err
		}
		if !found || key != st.Row.Key {
			t.Errorf("zbl:1337.28015 lookup = %d,%v, want %d,true", key, found, st.Row.Key)
		}
		key, found, err = tx.LookupIdentifier(ctx, "zbmath:06346461")
		if err != nil {
			return err
		}
		if !found || key != st.Row.Key {
			t.Errorf("zbmath:06346461 lookup = %d,%v, want %d,true", key, found, st.Row.Key)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite: %v", err)
	}
}

// TestNullCacheIdempotent implements S5: a confirmed miss is cached,
// and the second resolution of the same id does not re-contact the
// provider.
func TestNullCacheIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := &routingFetcher{}
	f.route("zbmath.org/bibtex", 404, "")

	err := s.RunWrite(ctx, func(tx *store.Tx) error {
		st, err := Resolve(ctx, tx, "zbmath:99999999", f, nil)
		if err != nil {
			return err
		}
		if st.Kind != statemachine.KindNull {
			t.Fatalf("expected Null, got %v", st.Kind)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite (first): %v", err)
	}

	callsAfterFirst := len(f.calls)
	if callsAfterFirst == 0 {
		t.Fatalf("expected at least one provider call on first resolution")
	}

	err = s.RunWrite(ctx, func(tx *store.Tx) error {
		st, err := Resolve(ctx, tx, "zbmath:99999999", f, nil)
		if err != nil {
			return err
		}
		if st.Kind != statemachine.KindNull {
			t.Fatalf("expected Null on second resolution, got %v", st.Kind)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite (second): %v", err)
	}
	if len(f.calls) != callsAfterFirst {
		t.Errorf("second resolution made %d more provider calls, want 0", len(f.calls)-callsAfterFirst)
	}
}

func TestHopLimitExceeded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// zbl and jfm both refer into zbmath, which is canonical, so a
	// genuine infinite loop can't be constructed from the real
	// registry. Exercise the guard directly via resolveHops' internal
	// counter instead, using a fetcher that always 404s so each hop
	// bottoms out in a null rather than recursing further.
	f := &routingFetcher{}
	err := s.RunWrite(ctx, func(tx *store.Tx) error {
		_, err := resolveHops(ctx, tx, "zbl:1337.28015", f, nil, maxReferenceHops+1)
		if err != ErrHopLimitExceeded {
			t.Fatalf("expected ErrHopLimitExceeded, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite: %v", err)
	}
}

func TestSuggestRanksClosestFirst(t *testing.T) {
	got := Suggest("zbmth")
	if len(got) == 0 || got[0] != "zbmath" {
		t.Fatalf("Suggest(%q) = %v, want zbmath first", "zbmth", got)
	}
}
