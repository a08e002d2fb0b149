package chunker

import "regexp"

// Token is a token's byte span within the text it was cut from.
type Token struct {
	Start int
	End   int
}

// Tokenizer splits text into tokens with byte offsets.
// Tokens must be non-overlapping and in ascending order.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// wordPattern matches a word or number (with an optional apostrophe suffix
// such as "don't") or any single non-space symbol.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*|[^\s\p{L}\p{N}]`)

// RegexTokenizer approximates subword tokenizers by counting words and
// punctuation marks. It never produces fewer tokens than words.
type RegexTokenizer struct{}

// Tokenize returns the word and punctuation tokens of text.
func (RegexTokenizer) Tokenize(text string) []Token {
	locs := wordPattern.FindAllStringIndex(text, -1)
	tokens := make([]Token, len(locs))
	for i, loc := range locs {
		tokens[i] = Token{Start: loc[0], End: loc[1]}
	}
	return tokens
}
