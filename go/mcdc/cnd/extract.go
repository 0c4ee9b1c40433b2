// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cnd

import (
	"fmt"
	"strings"
	"unicode"
)

// Branch is a conditional statement found in a module formula.
type Branch struct {
	Condition   string // < the text between the parentheses of if(...)
	TrueResult  string // < the body executed if the condition holds
	FalseResult string // < the else body, empty if absent or an else-if
}

// ExtractBranches lists every if(...) statement of a module formula in order
// of occurrence, including nested ones and those of else-if chains.
func ExtractBranches(formula string) ([]Branch, error) {
	text := []rune(Normalize(formula))
	res := []Branch{}
	for i := 0; i < len(text); i++ {
		if !isKeywordAt(text, i, "if") {
			continue
		}
		open := skipSpace(text, i+2)
		if open >= len(text) || text[open] != '(' {
			continue
		}
		close := matching(text, open, '(', ')')
		if close < 0 {
			return nil, fmt.Errorf("%w: unbalanced if condition at %d", ErrMalformedExpression, i)
		}
		branch := Branch{Condition: strings.TrimSpace(string(text[open+1 : close]))}
		var next int
		branch.TrueResult, next = statementAt(text, close+1)
		if pos := skipSpace(text, next); isKeywordAt(text, pos, "else") {
			if after := skipSpace(text, pos+4); !isKeywordAt(text, after, "if") {
				branch.FalseResult, _ = statementAt(text, pos+4)
			}
		}
		res = append(res, branch)
		i = close
	}
	return res, nil
}

// statementAt reads a braced block or a single statement terminated by ';'
// or a line break. It returns the trimmed body and the position after it.
func statementAt(text []rune, pos int) (string, int) {
	pos = skipSpace(text, pos)
	if pos >= len(text) {
		return "", pos
	}
	if text[pos] == '{' {
		end := matching(text, pos, '{', '}')
		if end < 0 {
			return strings.TrimSpace(string(text[pos+1:])), len(text)
		}
		return strings.TrimSpace(string(text[pos+1 : end])), end + 1
	}
	end := pos
	for end < len(text) && text[end] != ';' && text[end] != '\n' {
		end++
	}
	return strings.TrimSpace(string(text[pos:end])), end
}

func matching(text []rune, open int, left, right rune) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case left:
			depth++
		case right:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func skipSpace(text []rune, pos int) int {
	for pos < len(text) && unicode.IsSpace(text[pos]) {
		pos++
	}
	return pos
}

func isKeywordAt(text []rune, pos int, keyword string) bool {
	word := []rune(keyword)
	if pos < 0 || pos+len(word) > len(text) || string(text[pos:pos+len(word)]) != keyword {
		return false
	}
	if pos > 0 && isIdentRune(text[pos-1]) {
		return false
	}
	end := pos + len(word)
	return end >= len(text) || !isIdentRune(text[end])
}
