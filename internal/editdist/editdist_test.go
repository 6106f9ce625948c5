package editdist

import "testing"

func TestNormalizedSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"both empty", "", "", 1.0},
		{"identical", "hello", "hello", 1.0},
		{"a empty", "", "hello", 0.0},
		{"b empty", "hello", "", 0.0},
		{"single substitution", "hello", "hellp", 0.8},
		{"completely different short", "ab", "cd", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizedSimilarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("NormalizedSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNormalizedSimilarityRange(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"saturday", "sunday"},
		{"", "x"},
		{"a longer piece of stored json text", "hi"},
	}
	for _, p := range pairs {
		got := NormalizedSimilarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("NormalizedSimilarity(%q, %q) = %v, out of [0,1]", p[0], p[1], got)
		}
	}
}
