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

// Package factdb holds the set of (relation, a, b) triples asserted or
// derived so far, indexed for the scan/join access patterns the engine
// needs.
package factdb

// Pair is a (first, second) column value pair.
type Pair struct {
	A, B int64
}

// DB is a set of (relation_id, a, b) triples. Three indices are kept
// alongside the membership set so that SCAN, JOIN and one-wildcard queries
// stay O(1) amortized per lookup: byRelation for a whole-relation scan,
// byFirst for looking up all facts sharing a given (relation, a), and
// bySecond for all facts sharing a given (relation, b).
type DB struct {
	facts      map[triple]struct{}
	byRelation map[int32][]Pair
	byFirst    map[firstKey][]int64 // (relation, a) -> []b
	bySecond   map[secondKey][]int64
}

type triple struct {
	rel  int32
	a, b int64
}

type firstKey struct {
	rel int32
	a   int64
}

type secondKey struct {
	rel int32
	b   int64
}

// New returns an empty Fact DB.
func New() *DB {
	return &DB{
		facts:      make(map[triple]struct{}),
		byRelation: make(map[int32][]Pair),
		byFirst:    make(map[firstKey][]int64),
		bySecond:   make(map[secondKey][]int64),
	}
}

// Add inserts (rel, a, b), returning true if it was not already present.
// Insertion is idempotent: adding the same triple twice only increases Size
// once.
func (db *DB) Add(rel int32, a, b int64) bool {
	t := triple{rel, a, b}
	if _, ok := db.facts[t]; ok {
		return false
	}
	db.facts[t] = struct{}{}
	db.byRelation[rel] = append(db.byRelation[rel], Pair{a, b})
	fk := firstKey{rel, a}
	db.byFirst[fk] = append(db.byFirst[fk], b)
	sk := secondKey{rel, b}
	db.bySecond[sk] = append(db.bySecond[sk], a)
	return true
}

// Contains reports whether (rel, a, b) has been asserted or derived.
func (db *DB) Contains(rel int32, a, b int64) bool {
	_, ok := db.facts[triple{rel, a, b}]
	return ok
}

// Iterate returns every (a, b) pair asserted for rel, in insertion order.
// The returned slice must not be mutated by the caller.
func (db *DB) Iterate(rel int32) []Pair {
	return db.byRelation[rel]
}

// IterateByFirst returns every b such that (rel, a, b) holds, in insertion
// order. This is the index JOIN and "SCAN ... MATCH" use.
func (db *DB) IterateByFirst(rel int32, a int64) []int64 {
	return db.byFirst[firstKey{rel, a}]
}

// IterateBySecond returns every a such that (rel, a, b) holds, in insertion
// order.
func (db *DB) IterateBySecond(rel int32, b int64) []int64 {
	return db.bySecond[secondKey{rel, b}]
}

// Size returns the number of facts stored for rel.
func (db *DB) Size(rel int32) int {
	return len(db.byRelation[rel])
}
