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

	"github.com/Fantom-foundation/Certa/go/mcdc/common"
)

const ErrMalformedExpression = common.ConstErr("malformed expression")

type tokenKind int

const (
	tokEnd tokenKind = iota
	tokIdent
	tokNumber
	tokAnd
	tokOr
	tokNot
	tokRelation
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEnd {
		return "end of input"
	}
	return fmt.Sprintf("%q at %d", t.text, t.pos)
}

// fullWidth maps punctuation found in requirement documents written with
// CJK input methods onto their ASCII counterparts.
var fullWidth = strings.NewReplacer(
	"（", "(", "）", ")", "！", "!", "＝", "=", "＜", "<", "＞", ">",
	"＆", "&", "｜", "|", "，", ",", "；", ";", "：", ":", "　", " ",
)

// Normalize rewrites full-width punctuation into ASCII and trims the text.
func Normalize(text string) string {
	return strings.TrimSpace(fullWidth.Replace(text))
}

func tokenize(text string) ([]token, error) {
	var res []token
	runes := []rune(text)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			res = append(res, token{tokOpen, "(", i})
			i++
		case r == ')':
			res = append(res, token{tokClose, ")", i})
			i++
		case r == '&' || r == '|':
			if i+1 >= len(runes) || runes[i+1] != r {
				return nil, fmt.Errorf("%w: single %q at %d", ErrMalformedExpression, r, i)
			}
			kind := tokAnd
			if r == '|' {
				kind = tokOr
			}
			res = append(res, token{kind, string([]rune{r, r}), i})
			i += 2
		case r == '!' || r == '=' || r == '<' || r == '>':
			op := string(r)
			if i+1 < len(runes) && (runes[i+1] == '=' || (r == '<' && runes[i+1] == '>')) {
				op += string(runes[i+1])
			}
			if op == "!" {
				res = append(res, token{tokNot, op, i})
			} else {
				res = append(res, token{tokRelation, op, i})
			}
			i += len(op)
		case unicode.IsDigit(r) || r == '.' || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1]) && expectsOperand(res)):
			start := i
			i++
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			res = append(res, token{tokNumber, string(runes[start:i]), start})
		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(runes) && (isIdentRune(runes[i]) || runes[i] == '.') {
				i++
			}
			word := string(runes[start:i])
			switch strings.ToLower(word) {
			case "and":
				res = append(res, token{tokAnd, word, start})
			case "or":
				res = append(res, token{tokOr, word, start})
			case "not":
				res = append(res, token{tokNot, word, start})
			default:
				res = append(res, token{tokIdent, word, start})
			}
		default:
			return nil, fmt.Errorf("%w: unsupported symbol %q at %d", ErrMalformedExpression, r, i)
		}
	}
	return append(res, token{tokEnd, "", len(runes)}), nil
}

// expectsOperand reports whether a '-' following the given tokens starts a
// negative number rather than a binary minus.
func expectsOperand(previous []token) bool {
	if len(previous) == 0 {
		return true
	}
	switch previous[len(previous)-1].kind {
	case tokIdent, tokNumber, tokClose:
		return false
	}
	return true
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
