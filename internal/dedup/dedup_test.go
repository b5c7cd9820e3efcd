package dedup

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  OpenAI Releases  GPT-5 ", "openai releases gpt 5"},
		{"Breaking: AI Act passes!", "breaking ai act passes"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("EU AI Act passes final vote", "EU AI Act Passes Final Vote!"); got != 1.0 {
		t.Fatalf("identical token sets should score 1.0, got %f", got)
	}
	if got := Similarity("quantum chip announced", "new sports stadium opens"); got != 0 {
		t.Fatalf("disjoint titles should score 0, got %f", got)
	}
	if got := Similarity("", "anything"); got != 0 {
		t.Fatalf("empty title should score 0, got %f", got)
	}
}

func TestComparatorMatch(t *testing.T) {
	history := []string{
		"OpenAI releases new reasoning model",
		"EU parliament approves AI liability rules",
	}
	cmp, err := NewComparator(0.8, history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cmp.Close()

	if _, ok := cmp.Match("OpenAI Releases New Reasoning Model"); !ok {
		t.Fatalf("expected repeat match for same title")
	}
	if _, ok := cmp.Match("Local bakery wins award"); ok {
		t.Fatalf("unexpected match for unrelated title")
	}
	// partial overlap below threshold stays out
	if _, ok := cmp.Match("OpenAI hires new safety lead"); ok {
		t.Fatalf("expected no match below threshold")
	}
}

func TestComparatorMatchesCommonWordTitles(t *testing.T) {
	// titles made entirely of common words must still be found
	history := []string{
		"It Is What It Is",
		"2025 in 7 numbers",
	}
	cmp, err := NewComparator(0.8, history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cmp.Close()

	if _, ok := cmp.Match("It Is What It Is"); !ok {
		t.Fatalf("expected repeat match for stopword-only title")
	}
	if _, ok := cmp.Match("2025 in 7 Numbers"); !ok {
		t.Fatalf("expected repeat match for numeric title")
	}
}

func TestComparatorEmptyHistory(t *testing.T) {
	cmp, err := NewComparator(0.8, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cmp.Close()
	if _, ok := cmp.Match("anything at all"); ok {
		t.Fatalf("empty history should match nothing")
	}
}

func TestComparatorRejectsBadThreshold(t *testing.T) {
	if _, err := NewComparator(0, nil); err == nil {
		t.Fatalf("expected threshold validation error")
	}
}
