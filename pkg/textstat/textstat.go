// Package textstat provides the text segmentation and statistics primitives
// used by proposal quality scoring. All functions are deterministic and
// operate on plain text only.
package textstat

import (
	"math"
	"strings"
	"unicode"
)

// Sentences splits text into sentences on terminal punctuation.
// Abbreviation handling is intentionally naive; scoring only needs
// sentence-length distribution, not grammatical precision.
func Sentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// Words splits text into lowercase word tokens, stripping punctuation.
func Words(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(strings.ToLower(f), "'")
		if f != "" {
			words = append(words, f)
		}
	}

	return words
}

// Paragraphs splits text into non-empty paragraphs on blank lines.
func Paragraphs(text string) []string {
	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	var paragraphs []string
	for _, b := range blocks {
		if p := strings.TrimSpace(b); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	return paragraphs
}

// SentenceLengthVariance returns the population variance of sentence lengths
// in words. Uniform sentence lengths (low variance) read as machine-written.
func SentenceLengthVariance(text string) float64 {
	sentences := Sentences(text)
	if len(sentences) < 2 {
		return 0
	}

	lengths := make([]float64, len(sentences))
	var sum float64
	for i, s := range sentences {
		lengths[i] = float64(len(Words(s)))
		sum += lengths[i]
	}

	mean := sum / float64(len(lengths))
	var variance float64
	for _, l := range lengths {
		variance += (l - mean) * (l - mean)
	}

	return variance / float64(len(lengths))
}

// TypeTokenRatio returns the ratio of distinct words to total words in [0,1].
// Low lexical diversity is a proxy for low language-model perplexity.
func TypeTokenRatio(text string) float64 {
	words := Words(text)
	if len(words) == 0 {
		return 0
	}

	distinct := make(map[string]struct{}, len(words))
	for _, w := range words {
		distinct[w] = struct{}{}
	}

	return float64(len(distinct)) / float64(len(words))
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
