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

package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/pkg/errors"
	"github.com/posener/complete"

	"github.com/bigattichouse/bytelogic/ast"
	"github.com/bigattichouse/bytelogic/engine"
	"github.com/bigattichouse/bytelogic/factdb"
	"github.com/bigattichouse/bytelogic/parser"
)

// defaultDemoFile is used when `demo` is invoked with no argument.
const defaultDemoFile = "example_family.bl"

// DemoCommand parses a program, prints an AST summary, runs it to
// fixpoint, and prints every query's result.
type DemoCommand struct {
	Meta
}

func (c *DemoCommand) Help() string {
	return strings.TrimSpace(`
Usage: bytelog demo [file]

  Parses, executes, and prints the results of a ByteLog program. Defaults
  to the bundled family-relationships example when no file is given.
`)
}

func (c *DemoCommand) Synopsis() string {
	return "Parse, execute, and print results for a ByteLog program"
}

func (c *DemoCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictFiles("*.bl")
}

func (c *DemoCommand) AutocompleteFlags() complete.Flags {
	return nil
}

func (c *DemoCommand) Run(args []string) int {
	path := defaultDemoFile
	if len(args) > 0 {
		path = args[0]
	}

	src, err := os.ReadFile(path)
	if err != nil {
		c.UI.Error(c.errorLine(fmt.Sprintf("demo: reading %s: %s", path, err)))
		return 1
	}

	prog, err := parser.Parse(string(src))
	if err != nil {
		c.UI.Error(c.errorLine(fmt.Sprintf("parse: %s", err)))
		return 1
	}
	if err := parser.Validate(prog); err != nil {
		c.UI.Error(c.errorLine(fmt.Sprintf("validate: %s", err)))
		return 1
	}

	c.UI.Output(c.heading(fmt.Sprintf("== %s: %d statements ==", path, len(prog.Statements))))
	summarizeAST(c.UI, prog)

	e := engine.New(prog)
	if err := e.Run(); err != nil {
		c.UI.Error(c.errorLine(fmt.Sprintf("execute: %s", errors.Wrap(err, "run failed"))))
		return 1
	}

	c.UI.Output(c.heading("== facts =="))
	for id, name := range e.Atoms.Snapshot() {
		if n := e.DB.Size(int32(id)); n > 0 {
			c.UI.Output(fmt.Sprintf("  %s: %d facts", name, n))
		}
	}

	c.UI.Output(c.heading("== results =="))
	for _, res := range e.Results {
		printResult(c.UI, e, res)
	}
	return 0
}

func summarizeAST(ui cli.Ui, prog *ast.Program) {
	counts := map[string]int{}
	prog.Walk(func(s ast.Statement) {
		switch s.(type) {
		case *ast.RelDecl:
			counts["REL"]++
		case *ast.Fact:
			counts["FACT"]++
		case *ast.Rule:
			counts["RULE"]++
		case *ast.Solve:
			counts["SOLVE"]++
		case *ast.Query:
			counts["QUERY"]++
		}
	})
	ui.Output(fmt.Sprintf("  %d REL, %d FACT, %d RULE, %d SOLVE, %d QUERY",
		counts["REL"], counts["FACT"], counts["RULE"], counts["SOLVE"], counts["QUERY"]))
}

func printResult(ui cli.Ui, e *engine.Engine, res engine.Result) {
	switch res.Kind {
	case engine.Membership:
		ui.Output(fmt.Sprintf("  %s -> %t", res.Query.String(), res.Found))
	case engine.Column:
		ui.Output(fmt.Sprintf("  %s -> %s", res.Query.String(), factColor.Sprint(formatValues(e, res.Values))))
	case engine.Relation:
		ui.Output(fmt.Sprintf("  %s -> %s", res.Query.String(), factColor.Sprint(formatPairs(e, res.Pairs))))
	}
}

func formatValues(e *engine.Engine, values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = atomOrNumber(e, v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatPairs(e *engine.Engine, pairs []factdb.Pair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("(%s, %s)", atomOrNumber(e, p.A), atomOrNumber(e, p.B))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func atomOrNumber(e *engine.Engine, v int64) string {
	if name, ok := e.Atoms.Name(int32(v)); ok {
		return name
	}
	return fmt.Sprintf("%d", v)
}
