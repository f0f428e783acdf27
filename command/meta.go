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

// Package command implements the bytelog CLI's subcommands on top of
// mitchellh/cli.
package command

import (
	"github.com/fatih/color"
	"github.com/mitchellh/cli"
)

// Meta holds state shared by every subcommand.
type Meta struct {
	UI cli.Ui
}

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	factColor    = color.New(color.FgGreen)
)

func (m *Meta) heading(s string) string {
	return headingColor.Sprint(s)
}

func (m *Meta) errorLine(s string) string {
	return errorColor.Sprint(s)
}
