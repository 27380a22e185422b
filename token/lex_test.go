// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package token

import "testing"

func TestLexBasic(t *testing.T) {
	toks := New([]byte(`total:sum(1.0 2.0f*3)`)).Lex()
	var kinds []Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	want := []Kind{Ident, Op, Ident, Punc, Float, Op, Int, Punc}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexSymbolRun(t *testing.T) {
	toks := New([]byte("`a`b`b")).Lex()
	if len(toks) != 1 || toks[0].Kind != Symbol {
		t.Fatalf("expected one Symbol token, got %v", toks)
	}
	want := []string{"a", "b", "b"}
	if len(toks[0].Parts) != len(want) {
		t.Fatalf("parts = %v, want %v", toks[0].Parts, want)
	}
	for i, p := range want {
		if toks[0].Parts[i] != p {
			t.Errorf("part[%d] = %q, want %q", i, toks[0].Parts[i], p)
		}
	}
}

func TestLexKeywordsAndBinOpWords(t *testing.T) {
	toks := New([]byte("select x from t where x in y")).Lex()
	kindOf := func(text string) Kind {
		for _, tk := range toks {
			if tk.Text == text {
				return tk.Kind
			}
		}
		return EOF
	}
	if kindOf("select") != Keyword || kindOf("from") != Keyword || kindOf("where") != Keyword {
		t.Fatal("expected select/from/where to lex as keywords")
	}
	if kindOf("in") != BinOpWord {
		t.Fatal("expected 'in' to lex as a binop-word")
	}
}

func TestLexDateAndTimestamp(t *testing.T) {
	toks := New([]byte("2000.01.02 2000.01.02D10:30:00.5")).Lex()
	if len(toks) != 2 {
		t.Fatalf("expected 2 tokens, got %v", toks)
	}
	if toks[0].Kind != Date {
		t.Errorf("token[0].Kind = %v, want Date", toks[0].Kind)
	}
	if toks[1].Kind != Timestamp {
		t.Errorf("token[1].Kind = %v, want Timestamp", toks[1].Kind)
	}
}

func TestPositionUnderLineEndings(t *testing.T) {
	for _, nl := range []string{"\n", "\r\n", "\r"} {
		src := []byte("abc" + nl + "defg")
		p := len("abc" + nl + "de")
		line, col := Position(src, p)
		if line != 2 || col != 3 {
			t.Errorf("terminator %q: Position = (%d,%d), want (2,3)", nl, line, col)
		}
	}
}

func TestLexMalformedRecovers(t *testing.T) {
	toks := New([]byte("x \x01 y")).Lex()
	if len(toks) != 2 || toks[0].Text != "x" || toks[1].Text != "y" {
		t.Fatalf("expected recovery to skip the bad byte, got %v", toks)
	}
}
