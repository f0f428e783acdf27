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

	"github.com/posener/complete"

	"github.com/bigattichouse/bytelogic/parser"
	"github.com/bigattichouse/bytelogic/watgen"
)

// WatGenCommand compiles a ByteLog program to a WebAssembly text module.
type WatGenCommand struct {
	Meta
}

func (c *WatGenCommand) Help() string {
	return strings.TrimSpace(`
Usage: bytelog wat-gen <input.bl> <output.wat>

  Compiles a ByteLog program into a WebAssembly text module exposing
  main, add_fact, and has_fact.
`)
}

func (c *WatGenCommand) Synopsis() string {
	return "Compile a ByteLog program to WebAssembly text"
}

func (c *WatGenCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictFiles("*.bl")
}

func (c *WatGenCommand) AutocompleteFlags() complete.Flags {
	return nil
}

func (c *WatGenCommand) Run(args []string) int {
	if len(args) != 2 {
		c.UI.Error(c.errorLine("wat-gen: expected exactly 2 arguments: <input.bl> <output.wat>"))
		return 1
	}
	inPath, outPath := args[0], args[1]

	src, err := os.ReadFile(inPath)
	if err != nil {
		c.UI.Error(c.errorLine(fmt.Sprintf("wat-gen: reading %s: %s", inPath, err)))
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

	out, err := os.Create(outPath)
	if err != nil {
		c.UI.Error(c.errorLine(fmt.Sprintf("wat-gen: creating %s: %s", outPath, err)))
		return 1
	}
	defer out.Close()

	g := watgen.New()
	if err := g.Generate(prog, out); err != nil {
		c.UI.Error(c.errorLine(fmt.Sprintf("wat-gen: %s", err)))
		return 1
	}

	c.UI.Output(c.heading(fmt.Sprintf("wrote %s", outPath)))
	return 0
}
