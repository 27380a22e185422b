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

package eval

import (
	"testing"

	"github.com/chili-lang/chili/value"
)

func wantBool(t *testing.T, v value.Obj, want bool) {
	t.Helper()
	b, ok := v.(value.Bool)
	if !ok || bool(b) != want {
		t.Fatalf("got %#v, want Bool(%v)", v, want)
	}
}

func TestLikeMatchesSQLWildcards(t *testing.T) {
	wantBool(t, run(t, `"hello world" like "hello%";`), true)
	wantBool(t, run(t, `"hello world" like "goodbye%";`), false)
	wantBool(t, run(t, `"cat" like "c_t";`), true)
}

func TestMatchSearchesForSubstring(t *testing.T) {
	wantBool(t, run(t, `"hello world" match "o w";`), true)
	wantBool(t, run(t, `"hello world" match "xyz";`), false)
}

func TestInChecksMembership(t *testing.T) {
	wantBool(t, run(t, `2 in [1, 2, 3];`), true)
	wantBool(t, run(t, `5 in [1, 2, 3];`), false)
}

func TestWithinChecksInclusiveRange(t *testing.T) {
	wantBool(t, run(t, `5 within [1, 10];`), true)
	wantBool(t, run(t, `15 within [1, 10];`), false)
	wantBool(t, run(t, `1 within [1, 10];`), true)
}
