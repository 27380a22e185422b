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

package main

import (
	"io"
	"log"
	"strings"
)

// level is an ordered logging threshold, lowest first.
type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

func parseLevel(s string) level {
	switch strings.ToLower(s) {
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "error":
		return levelError
	default:
		return levelWarn
	}
}

// logger wraps a *log.Logger with a threshold, grounded on the
// teacher's log.New(os.Stderr, "", log.Lshortfile) convention
// (cmd/snellerd/run_daemon.go), threaded through as a value rather
// than held in a package global.
type logger struct {
	*log.Logger
	min level
}

func newLogger(w io.Writer, levelName string) *logger {
	return &logger{Logger: log.New(w, "", log.Lshortfile), min: parseLevel(levelName)}
}

func (l *logger) Debugf(format string, args ...any) { l.logAt(levelDebug, format, args...) }
func (l *logger) Infof(format string, args ...any) { l.logAt(levelInfo, format, args...) }
func (l *logger) Warnf(format string, args ...any) { l.logAt(levelWarn, format, args...) }
func (l *logger) Errorf(format string, args ...any) { l.logAt(levelError, format, args...) }

func (l *logger) logAt(lv level, format string, args ...any) {
	if lv < l.min {
		return
	}
	l.Printf(format, args...)
}
