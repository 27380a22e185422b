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

package engine

import "testing"

func TestStateFlagDefaultsFalse(t *testing.T) {
	s := NewState(nil)
	if s.Flag(FlagLazyMode) {
		t.Fatalf("Flag(%q) = true before any SetFlag call", FlagLazyMode)
	}
}

func TestStateSetFlagRoundTrips(t *testing.T) {
	s := NewState(nil)
	s.SetFlag(FlagLazyMode, true)
	if !s.Flag(FlagLazyMode) {
		t.Fatalf("Flag(%q) = false after SetFlag(..., true)", FlagLazyMode)
	}
	s.SetFlag(FlagLazyMode, false)
	if s.Flag(FlagLazyMode) {
		t.Fatalf("Flag(%q) = true after SetFlag(..., false)", FlagLazyMode)
	}
}

func TestStateFlagsAreIndependent(t *testing.T) {
	s := NewState(nil)
	s.SetFlag(FlagDebug, true)
	if s.Flag(FlagLazyMode) || s.Flag(FlagReplExtendedSyntax) {
		t.Fatalf("setting %q leaked into other flags", FlagDebug)
	}
}
