package insight

import "strings"

const wordsPerMinute = 200

// WordCount returns the number of whitespace-delimited tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime returns the estimated reading time in whole minutes at 200
// words per minute, rounding up. Any non-empty text reads as at least one
// minute.
func ReadingTime(text string) int {
	words := WordCount(text)
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
