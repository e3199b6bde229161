package similarity

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "attack on titan", "attack on titan", 1.0},
		{"empty a", "", "naruto", 0},
		{"empty b", "naruto", "", 0},
		{"both empty", "", "", 0},
		{"one char diff", "abcd", "abce", 0.75},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioCountsRunes(t *testing.T) {
	// Multi-byte characters must be compared per rune, not per byte.
	got := Ratio("日本語", "日本語")
	if got != 1.0 {
		t.Errorf("Ratio(identical cjk) = %v, want 1.0", got)
	}
}

func TestWordOverlap(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "one piece", "one piece", 1.0},
		{"half", "a b c", "b c d", 0.5},
		{"disjoint", "one piece", "hunter hunter", 0},
		{"empty a", "", "one piece", 0},
		{"empty b", "one piece", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WordOverlap(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("WordOverlap(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestScoreIdentity(t *testing.T) {
	// ratio=1 and overlap=1 already sum to 1.0; the contains boost pushes the
	// raw value to 1.1 and the clamp must bring it back.
	for _, s := range []string{"naruto", "attack on titan", "日本語"} {
		if got := Score(s, s); got != 1.0 {
			t.Errorf("Score(%q, %q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestScoreEmpty(t *testing.T) {
	if got := Score("naruto", ""); got != 0 {
		t.Errorf("Score(a, empty) = %v, want 0", got)
	}
	if got := Score("", "naruto"); got != 0 {
		t.Errorf("Score(empty, b) = %v, want 0", got)
	}
}

func TestScoreSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"attack on titan", "attack titan"},
		{"shingeki no kyojin", "shingeki kyojin"},
		{"one piece", "two piece"},
		{"日本語", "日本"},
	}
	for _, pair := range pairs {
		ab := Score(pair[0], pair[1])
		ba := Score(pair[1], pair[0])
		if ab != ba {
			t.Errorf("Score not symmetric for %q/%q: %v vs %v", pair[0], pair[1], ab, ba)
		}
	}
}

func TestScoreContainsBoost(t *testing.T) {
	// ratio = 12/18, overlap = 1/2, contains bonus applies:
	// 0.666..*0.7 + 0.5*0.3 + 0.1 = 0.71666.. -> 0.717
	got := Score("attack titan", "attack")
	if got != 0.717 {
		t.Errorf("Score = %v, want 0.717", got)
	}
}

func TestScoreRoundedToThreeDecimals(t *testing.T) {
	got := Score("attack titan", "attack")
	scaled := got * 1000
	if scaled != math.Trunc(scaled) {
		t.Errorf("Score %v not rounded to three decimals", got)
	}
}

func TestScoreBounded(t *testing.T) {
	pairs := [][2]string{
		{"a", "a"},
		{"attack on titan", "attack on titan final"},
		{"shingeki no kyojin", "shingeki no kyojin"},
	}
	for _, pair := range pairs {
		got := Score(pair[0], pair[1])
		if got < 0 || got > 1 {
			t.Errorf("Score(%q, %q) = %v outside [0, 1]", pair[0], pair[1], got)
		}
	}
}
