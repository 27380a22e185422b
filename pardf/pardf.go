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

// Package pardf implements the partitioned-table catalogue: on-disk
// datasets keyed by date or year, discovered at load time and scanned
// one partition at a time so a query's date/year predicate only opens
// the files it needs.
//
// A root directory holds one subdirectory per table, itself holding
// one or more numbered sub-partition files per key (K_NNNN naming),
// forming a read-only catalogue that write-partition is the sole
// writer of. The on-disk row encoding reuses the ion package's
// Bag/Symtab/Datum machinery directly rather than parquet; see
// DESIGN.md.
package pardf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/date"
	"github.com/chili-lang/chili/value"
)

// Partition is one on-disk partition key plus its sorted sub-partition
// files (db/partition.go's "partition" concept, generalized from
// glob-matched path segments to a single date/year key).
type Partition struct {
	Key int32
	Files []string
}

// Table is the in-memory record of a partitioned dataset: name,
// partition scheme, base path, and sorted list of partition keys.
type Table struct {
	Name string
	Scheme value.PartitionScheme
	Root string
	Keys []int32
}

func (t *Table) dir() string { return tableDir(t.Root, t.Name) }

// PartitionOf returns the partition record for key, scanning its
// directory for existing K_NNNN files.
func (t *Table) PartitionOf(key int32) (*Partition, error) {
	files, err := partitionFiles(t.dir(), t.Scheme, key)
	if err != nil {
		return nil, err
	}
	return &Partition{Key: key, Files: files}, nil
}

// Catalogue is the process-wide partitioned-table registry, guarded the same one-RWMutex-
// per-table-registry way as engine.State's own resource maps.
type Catalogue struct {
	mu sync.RWMutex
	tables map[string]*Table
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{tables: make(map[string]*Table)}
}

// Load scans root/name for existing partition keys under the given
// scheme and registers the table, replacing any prior registration of
// the same name.
func (c *Catalogue) Load(root, name string, scheme value.PartitionScheme) (*Table, error) {
	keys, err := discoverKeys(tableDir(root, name), scheme)
	if err != nil {
		return nil, err
	}
	t := &Table{Name: name, Scheme: scheme, Root: root, Keys: keys}
	c.mu.Lock()
	c.tables[name] = t
	c.mu.Unlock()
	return t, nil
}

// Get returns the registered table by name.
func (c *Catalogue) Get(name string) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	return t, ok
}

// LoadRoot discovers every table directly under root and
// registers each one, returning the tables found.
func (c *Catalogue) LoadRoot(root string) ([]*Table, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &chilierr.OsErr{Err: err}
	}
	var out []*Table
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() {
			t, err := c.Load(root, name, value.SchemeSingle)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
			continue
		}
		scheme, ok := inferScheme(filepath.Join(root, name))
		if !ok {
			continue
		}
		t, err := c.Load(root, name, scheme)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// inferScheme guesses a table directory's partition scheme by trying
// to parse its `<key>_NNNN` file names as ByDate keys, falling back to
// ByYear; it reports false if dir holds no recognisable partition file
// (only a `schema` marker, or nothing at all).
func inferScheme(dir string) (value.PartitionScheme, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, false
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == "schema" {
			continue
		}
		i := strings.LastIndexByte(e.Name(), '_')
		if i < 0 {
			continue
		}
		keyPart, seqPart := e.Name()[:i], e.Name()[i+1:]
		if len(seqPart) != 4 {
			continue
		}
		if _, err := strconv.Atoi(seqPart); err != nil {
			continue
		}
		if _, ok := parseKey(value.SchemeByDate, keyPart); ok {
			return value.SchemeByDate, true
		}
		if _, ok := parseKey(value.SchemeByYear, keyPart); ok {
			return value.SchemeByYear, true
		}
	}
	return 0, false
}

// tableDir is R/T for root R and table name T.
func tableDir(root, name string) string { return filepath.Join(root, name) }

// SchemaPath is R/T/schema, the (currently schema-free) marker file
// reserved for the table's column schema.
func SchemaPath(root, name string) string { return filepath.Join(tableDir(root, name), "schema") }

// keyString renders a partition key the way it appears on disk:
// YYYY-MM-DD for ByDate (key = days since the Unix epoch), or the bare
// year for ByYear.
func keyString(scheme value.PartitionScheme, key int32) string {
	if scheme == value.SchemeByYear {
		return strconv.Itoa(int(key))
	}
	t := date.Unix(int64(key)*86400, 0)
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), t.Month(), t.Day())
}

// parseKey is keyString's inverse.
func parseKey(scheme value.PartitionScheme, s string) (int32, bool) {
	if scheme == value.SchemeByYear {
		y, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return int32(y), true
	}
	t, ok := date.Parse([]byte(s + "T00:00:00Z"))
	if !ok {
		return 0, false
	}
	return int32(t.Unix() / 86400), true
}

// discoverKeys lists dir for `<key>_NNNN` entries (or, for SchemeSingle,
// confirms the single table file exists) and returns the distinct keys
// in ascending order.
func discoverKeys(dir string, scheme value.PartitionScheme) ([]int32, error) {
	if scheme == value.SchemeSingle {
		if _, err := os.Stat(dir); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, &chilierr.OsErr{Err: err}
		}
		return []int32{0}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &chilierr.OsErr{Err: err}
	}
	seen := make(map[int32]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key, ok := splitPartitionFile(e.Name(), scheme)
		if !ok {
			continue
		}
		seen[key] = true
	}
	keys := make([]int32, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}

// splitPartitionFile parses a `<key>_NNNN` file name back into its key.
func splitPartitionFile(name string, scheme value.PartitionScheme) (int32, bool) {
	i := strings.LastIndexByte(name, '_')
	if i < 0 {
		return 0, false
	}
	keyPart, seqPart := name[:i], name[i+1:]
	if len(seqPart) != 4 {
		return 0, false
	}
	if _, err := strconv.Atoi(seqPart); err != nil {
		return 0, false
	}
	return parseKey(scheme, keyPart)
}

// partitionFiles returns the sorted list of existing sub-partition
// files for one key (the SchemaPath marker file is never included).
func partitionFiles(dir string, scheme value.PartitionScheme, key int32) ([]string, error) {
	if scheme == value.SchemeSingle {
		return []string{dir}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &chilierr.OsErr{Err: err}
	}
	prefix := keyString(scheme, key) + "_"
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// nextSeq returns the next unused NNNN sequence number for key.
func nextSeq(dir string, scheme value.PartitionScheme, key int32) (int, error) {
	files, err := partitionFiles(dir, scheme, key)
	if err != nil {
		return 0, err
	}
	max := -1
	prefix := keyString(scheme, key) + "_"
	for _, f := range files {
		base := filepath.Base(f)
		n, err := strconv.Atoi(strings.TrimPrefix(base, prefix))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1, nil
}
