// Copyright (c) 2014, Kevin Walsh.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package atom interns symbolic names into dense, monotone integer IDs.
//
// Facts and queries may carry either an interned atom or a raw integer, and
// the two share a value space (see the "Shared integer/atom space" note in
// the language specification): the table itself has no opinion about which
// numbers came from strings and which were typed literally. Its only job is
// intern(s) = intern(s), and intern(s) != intern(t) for s != t.
package atom

// Table is a growing sequence of unique strings plus an index from string to
// position. IDs are assigned 0, 1, 2, ... in insertion order and are never
// reused or renumbered once assigned.
type Table struct {
	names []string
	ids   map[string]int32
}

// NewTable returns an empty atom table.
func NewTable() *Table {
	return &Table{
		ids: make(map[string]int32),
	}
}

// Intern returns the ID for s, assigning a fresh one if s has not been seen
// before. Intern is idempotent: Intern(s) always returns the same value for
// the same s.
func (t *Table) Intern(s string) int32 {
	if id, ok := t.ids[s]; ok {
		return id
	}
	id := int32(len(t.names))
	t.names = append(t.names, s)
	t.ids[s] = id
	return id
}

// Lookup returns the ID already assigned to s, or (0, false) if s has never
// been interned.
func (t *Table) Lookup(s string) (int32, bool) {
	id, ok := t.ids[s]
	return id, ok
}

// Name returns the string that was interned to produce id, or ("", false) if
// id is out of range.
func (t *Table) Name(id int32) (string, bool) {
	if id < 0 || int(id) >= len(t.names) {
		return "", false
	}
	return t.names[id], true
}

// Count returns the number of distinct strings interned so far.
func (t *Table) Count() int {
	return len(t.names)
}

// Snapshot returns the interned strings ordered by ID. The WAT generator
// uses this to keep relation-name-to-ID assignment stable across every
// add_fact/has_fact call site it emits (see the "Hash collisions in WAT"
// design note).
func (t *Table) Snapshot() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}
