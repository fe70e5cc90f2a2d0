package sanitize

import (
	"reflect"
	"regexp"
	"testing"
)

func TestName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Net Income", "net_income"},
		{"  Net   Income  ", "net_income"},
		{"Net-Income", "netincome"},
		{"Revenue ($M)", "revenue_m"},
		{"Café Revenue", "cafe_revenue"},
		{"2024 Q1", "2024_q1"},
		{"already_clean", "already_clean"},
		{"___", ""},
		{"!!!", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Name(tc.in); got != tc.want {
			t.Errorf("Name(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHeaders_CollisionsAndReserved(t *testing.T) {
	t.Parallel()

	got := Headers([]string{"Net Income", "net income", "id"})
	want := []string{"net_income", "net_income_1", "original_id"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Headers = %v, want %v", got, want)
	}
}

func TestHeaders_EmptyNamesGetPositionalPlaceholders(t *testing.T) {
	t.Parallel()

	got := Headers([]string{"", "!!!", "ok"})
	want := []string{"column_0", "column_1", "ok"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Headers = %v, want %v", got, want)
	}
}

func TestHeaders_ReservedRenameStillUnique(t *testing.T) {
	t.Parallel()

	got := Headers([]string{"id", "original_id", "ID"})
	want := []string{"original_id", "original_id_1", "original_id_2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Headers = %v, want %v", got, want)
	}
}

func TestHeaders_OutputInvariants(t *testing.T) {
	t.Parallel()

	in := []string{"A", "a", "A ", "-", "", "id", "Id", "Völume", "völume"}
	got := Headers(in)

	if len(got) != len(in) {
		t.Fatalf("cardinality changed: %d -> %d", len(in), len(got))
	}
	safe := regexp.MustCompile(`^[a-z0-9_]+$`)
	seen := make(map[string]struct{})
	for _, name := range got {
		if name == "" {
			t.Fatalf("empty resolved name in %v", got)
		}
		if name == ReservedPrimaryKey {
			t.Fatalf("resolved name equals reserved key in %v", got)
		}
		if !safe.MatchString(name) {
			t.Fatalf("unsafe resolved name %q", name)
		}
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate resolved name %q in %v", name, got)
		}
		seen[name] = struct{}{}
	}
}
