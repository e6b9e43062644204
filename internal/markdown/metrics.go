package markdown

import "unicode"

// Reading speed used for the estimate, words per minute.
const wordsPerMinute = 200

// CountWords estimates the word count of mixed-script text: Latin-script
// words are counted at word boundaries, CJK text is estimated from its rune
// count (roughly two characters per word), and the two are summed.
func CountWords(text string) int {
	words := 0
	cjk := 0
	inWord := false

	for _, r := range text {
		switch {
		case isCJK(r):
			cjk++
			inWord = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if !inWord {
				words++
				inWord = true
			}
		default:
			inWord = false
		}
	}

	return words + (cjk+1)/2
}

// ReadingTime returns the estimated reading time in whole minutes, never
// less than one.
func ReadingTime(words int) int {
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
