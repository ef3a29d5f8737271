// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package builtins holds the scalar functions predicates may call, along
// with their order-preservation classification.
package builtins

import (
	"sort"
	"strings"

	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
)

// AllBuiltinNames is an array containing all the built-in function
// names, sorted in alphabetical order. This can be used for a
// deterministic walk through the builtins map.
var AllBuiltinNames []string

func init() {
	AllBuiltinNames = make([]string, 0, len(builtins))
	for name, def := range builtins {
		def.Name = name
		AllBuiltinNames = append(AllBuiltinNames, name)
	}
	sort.Strings(AllBuiltinNames)
}

// Lookup returns the definition of the named function. Names are case
// insensitive.
func Lookup(name string) (*tree.FunctionDefinition, bool) {
	def, ok := builtins[strings.ToLower(name)]
	return def, ok
}
