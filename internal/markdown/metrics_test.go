package markdown

import "testing"

func TestCountWords(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"latin", "one two three", 3},
		{"punctuation", "# Hello, world!", 2},
		{"cjk", "日本語のテスト", 4},
		{"mixed", "hello 世界", 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CountWords(tc.text); got != tc.want {
				t.Fatalf("CountWords(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}

func TestReadingTime(t *testing.T) {
	cases := []struct {
		words int
		want  int
	}{
		{0, 1},
		{1, 1},
		{200, 1},
		{201, 2},
		{1000, 5},
	}

	for _, tc := range cases {
		if got := ReadingTime(tc.words); got != tc.want {
			t.Fatalf("ReadingTime(%d) = %d, want %d", tc.words, got, tc.want)
		}
	}
}
