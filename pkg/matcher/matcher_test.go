package matcher

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"
)

func TestFindAll_SinglePattern(t *testing.T) {
	m, err := New([]string{"step by step"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches := m.FindAll("please think step by step about this")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	want := Match{Pattern: 0, Start: 13, End: 25}
	if matches[0] != want {
		t.Errorf("expected %+v, got %+v", want, matches[0])
	}
}

func TestFindAll_CaseInsensitive(t *testing.T) {
	m, err := New([]string{"Think Step By Step"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches := m.FindAll("THINK STEP BY STEP")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Start != 0 || matches[0].End != 18 {
		t.Errorf("unexpected offsets: %+v", matches[0])
	}
}

func TestFindAll_OverlappingPatterns(t *testing.T) {
	// "step by step" contains "step" twice; all three occurrences must be
	// reported even though they overlap.
	m, err := New([]string{"step by step", "step"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches := m.FindAll("step by step")
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d: %+v", len(matches), matches)
	}

	var long, short int
	for _, match := range matches {
		switch match.Pattern {
		case 0:
			long++
			if match.Start != 0 || match.End != 12 {
				t.Errorf("unexpected long-match offsets: %+v", match)
			}
		case 1:
			short++
		}
	}
	if long != 1 || short != 2 {
		t.Errorf("expected 1 long and 2 short matches, got %d and %d", long, short)
	}
}

func TestFindAll_SuffixPattern(t *testing.T) {
	// "he" is a suffix of "she"; both must be found at the same end offset.
	m, err := New([]string{"she", "he"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches := m.FindAll("she said")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(matches), matches)
	}
}

func TestFindAll_NoMatch(t *testing.T) {
	m, err := New([]string{"quantum", "tensor"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if matches := m.FindAll("hello world"); len(matches) != 0 {
		t.Errorf("expected no matches, got %+v", matches)
	}
}

func TestFindAll_DuplicatePatterns(t *testing.T) {
	// The same phrase registered twice (different scenarios share phrases)
	// is reported once per registration.
	m, err := New([]string{"deploy", "deploy"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches := m.FindAll("deploy the service")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Start != matches[1].Start || matches[0].End != matches[1].End {
		t.Errorf("duplicate matches should share offsets: %+v", matches)
	}
}

func TestFindAll_Deterministic(t *testing.T) {
	patterns := []string{"think", "reason", "analyze deeply", "step by step", "plan"}
	text := "think hard, reason carefully, analyze deeply, then plan step by step"

	m1, err := New(patterns)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	m2, err := New(patterns)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	a := m1.FindAll(text)
	b := m2.FindAll(text)

	sortMatches(a)
	sortMatches(b)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("two builds over the same patterns disagree: %+v vs %+v", a, b)
	}
}

func TestNew_RejectsEmptyPattern(t *testing.T) {
	if _, err := New([]string{"ok", ""}); err == nil {
		t.Error("expected error for empty pattern")
	}
}

func TestNew_EmptyPatternSet(t *testing.T) {
	m, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if matches := m.FindAll("anything"); len(matches) != 0 {
		t.Errorf("expected no matches from empty index, got %+v", matches)
	}
}

func sortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		if matches[i].End != matches[j].End {
			return matches[i].End < matches[j].End
		}
		return matches[i].Pattern < matches[j].Pattern
	})
}

// BenchmarkFindAll verifies the single-scan contract holds for a realistic
// phrase count: match time must not grow with the number of phrases.
func BenchmarkFindAll(b *testing.B) {
	patterns := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		patterns = append(patterns, fmt.Sprintf("scenario phrase number %d", i))
	}
	patterns = append(patterns, "think step by step")

	m, err := New(patterns)
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	text := strings.Repeat("some ordinary user message that should think step by step. ", 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.FindAll(text)
	}
}
