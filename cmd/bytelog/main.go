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

// Command bytelog is the demo/compile driver for the ByteLog language: it
// is a thin CLI shell around the parser, engine, and WAT generator
// packages, not part of the core itself.
package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/bigattichouse/bytelogic/command"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	c := cli.NewCLI("bytelog", "0.1.0")
	c.Args = args

	ui := &cli.BasicUi{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
		Reader:      os.Stdin,
	}
	meta := command.Meta{UI: ui}

	c.Commands = map[string]cli.CommandFactory{
		"demo": func() (cli.Command, error) {
			return &command.DemoCommand{Meta: meta}, nil
		},
		"wat-gen": func() (cli.Command, error) {
			return &command.WatGenCommand{Meta: meta}, nil
		},
	}
	c.Autocomplete = true

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}
