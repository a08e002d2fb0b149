// Package summariser produces extractive video metadata without a language
// model: a frequency-ranked sentence summary and the most frequent content words.
package summariser

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?]*`)
	wordPattern     = regexp.MustCompile(`\p{L}[\p{L}\p{N}]*(?:['’]\p{L}+)*`)
)

// Frequency ranks sentences and words by how often their content words occur.
type Frequency struct {
	stopwords map[string]struct{}
	minLen    int
}

// New creates a frequency summariser with the built-in English stop list.
func New() *Frequency {
	return &Frequency{stopwords: defaultStopwords(), minLen: 3}
}

// Summarise returns up to maxSentences sentences, highest scoring first
// selected, emitted in their original order.
func (f *Frequency) Summarise(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 3
	}

	sentences := f.sentences(text)
	if len(sentences) == 0 {
		return ""
	}

	freq := f.normalisedFrequencies(text)

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sent := range sentences {
		words := f.words(sent)
		var s float64
		for _, w := range words {
			s += freq[w]
		}
		if len(words) > 0 {
			s /= math.Sqrt(float64(len(words)))
		}
		scores[i] = scored{idx: i, score: s}
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}

	selected := make([]int, maxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)

	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}

// Keywords returns up to n content words ordered by frequency, ties broken alphabetically.
func (f *Frequency) Keywords(text string, n int) []string {
	counts := make(map[string]int)
	for _, w := range f.words(text) {
		if f.isContent(w) {
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if n > 0 && len(words) > n {
		words = words[:n]
	}
	return words
}

func (f *Frequency) sentences(text string) []string {
	var out []string
	for _, s := range sentencePattern.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" && len(f.words(s)) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func (f *Frequency) words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

func (f *Frequency) isContent(w string) bool {
	if len([]rune(w)) < f.minLen {
		return false
	}
	_, stop := f.stopwords[w]
	return !stop
}

// normalisedFrequencies maps each content word to its count divided by the highest count.
func (f *Frequency) normalisedFrequencies(text string) map[string]float64 {
	freq := make(map[string]float64)
	var maxF float64
	for _, w := range f.words(text) {
		if !f.isContent(w) {
			continue
		}
		freq[w]++
		if freq[w] > maxF {
			maxF = freq[w]
		}
	}
	for w, v := range freq {
		freq[w] = v / maxF
	}
	return freq
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on",
		"at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its",
		"this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further",
		"than", "so", "such", "into", "about", "between", "through", "during", "before", "after",
		"above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don",
		"should", "now", "you", "your", "we", "our", "they", "their", "them", "he", "she", "his",
		"her", "what", "which", "who", "when", "where", "why", "how", "all", "any", "both", "each",
		"few", "more", "most", "other", "some", "no", "not", "only", "here", "there", "have", "has",
		"had", "do", "does", "did", "doing", "would", "could", "also", "going", "get", "got",
		"like", "really", "one", "let", "want", "need", "make", "see", "know", "think", "thing",
		"things", "way", "yeah", "okay", "right", "well", "use", "using", "used", "i'm", "it's",
		"that's", "we're", "you're", "don't", "can't", "there's", "let's", "i've", "we'll",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
