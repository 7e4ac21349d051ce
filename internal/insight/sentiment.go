package insight

import "strings"

const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// Fixed lexicons. Matching is exact whole-token, lower-cased; no stemming,
// no negation handling. Ties score Neutral. Changing either set changes the
// label of existing entries on their next save, so additions are deliberate.
var positiveWords = map[string]bool{
	"happy": true, "good": true, "great": true, "amazing": true,
	"wonderful": true, "excellent": true, "love": true, "excited": true,
	"proud": true, "grateful": true, "blessed": true, "successful": true,
	"accomplished": true, "peaceful": true, "joy": true, "fantastic": true,
	"awesome": true, "brilliant": true,
}

var negativeWords = map[string]bool{
	"sad": true, "bad": true, "terrible": true, "awful": true,
	"hate": true, "angry": true, "frustrated": true, "disappointed": true,
	"worried": true, "stressed": true, "depressed": true, "anxious": true,
	"overwhelmed": true, "exhausted": true, "upset": true, "annoyed": true,
	"difficult": true, "challenging": true,
}

// Sentiment classifies free text as Positive, Negative, or Neutral by
// counting lexicon hits among its whitespace-delimited tokens.
func Sentiment(text string) string {
	var pos, neg int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if positiveWords[word] {
			pos++
		}
		if negativeWords[word] {
			neg++
		}
	}

	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
