package session

import (
	"fmt"
	"strings"

	"github.com/harun/sesh/pkg/sesherr"
	"github.com/harun/sesh/pkg/tag"
)

// TokenKind distinguishes the variants of a title Token.
type TokenKind int

const (
	// KindWord is plain title text.
	KindWord TokenKind = iota
	// KindTag is an inline +tag that is also part of the title.
	KindTag
)

// Token is one word of a session title: either plain text or an inline tag.
type Token struct {
	Kind TokenKind
	word string
	tag  tag.Tag
}

// Word returns a plain-text token.
func Word(s string) Token {
	return Token{Kind: KindWord, word: s}
}

// InlineTag returns an inline tag token.
func InlineTag(t tag.Tag) Token {
	return Token{Kind: KindTag, tag: t}
}

// Text returns the token's contribution to the title.
func (t Token) Text() string {
	switch t.Kind {
	case KindWord:
		return t.word
	case KindTag:
		return t.tag.Name()
	default:
		panic(fmt.Sprintf("session: unknown token kind %d", t.Kind))
	}
}

// ParseTokens splits command-line words into title tokens. A word written
// as +name is an inline tag; its name is lower-cased before validation.
func ParseTokens(args []string) ([]Token, error) {
	var tokens []Token
	for _, arg := range args {
		for _, field := range strings.Fields(arg) {
			if !strings.HasPrefix(field, "+") {
				tokens = append(tokens, Word(field))
				continue
			}
			raw := field[1:]
			t, err := tag.New(strings.ToLower(raw))
			if err != nil {
				return nil, sesherr.InvalidTag(raw)
			}
			tokens = append(tokens, InlineTag(t))
		}
	}
	return tokens, nil
}

// BuildTitle joins the tokens into a title and collects the inline tags
// in order of appearance.
func BuildTitle(tokens []Token) (string, []tag.Tag) {
	words := make([]string, 0, len(tokens))
	var inline []tag.Tag
	for _, tok := range tokens {
		switch tok.Kind {
		case KindWord:
			words = append(words, tok.word)
		case KindTag:
			words = append(words, tok.tag.Name())
			inline = append(inline, tok.tag)
		default:
			panic(fmt.Sprintf("session: unknown token kind %d", tok.Kind))
		}
	}
	return strings.Join(words, " "), inline
}
