// Package sandbox turns untrusted generated Python into a scored subprocess
// execution: a static safety gate, a fixed-contract harness wrapper, and a
// timeout-enforcing process executor.
package sandbox

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultAllowedImports is the set of side-effect-free stdlib modules a
// candidate solution may import.
var DefaultAllowedImports = []string{
	"math", "random", "itertools", "functools", "collections",
	"heapq", "bisect", "array", "queue", "string", "re",
	"datetime", "time", "decimal", "fractions", "statistics",
	"json", "copy", "typing",
}

// DefaultBlockedTokens are substrings matched case-insensitively against the
// candidate source. This is a blocklist, not a semantic analysis: obfuscated
// or dynamically constructed calls will slip through. The sandbox is meant
// for trusted-adjacent single-tenant use, not hostile multi-tenant hosting.
var DefaultBlockedTokens = []string{
	"import os", "from os", "import sys", "from sys",
	"import subprocess", "from subprocess",
	"import socket", "from socket",
	"import shutil", "from shutil",
	"eval(", "exec(", "compile(", "__import__",
	"open(", "file(", "input(", "raw_input(",
	"globals(", "locals(", "vars(",
	"getattr", "setattr", "delattr",
	"breakpoint(", "help(", "dir(",
}

// UnsafeCodeError reports the first blocked pattern or disallowed import
// found in a candidate solution.
type UnsafeCodeError struct {
	Pattern string
}

func (e *UnsafeCodeError) Error() string {
	return fmt.Sprintf("blocked potentially unsafe code pattern: %s", e.Pattern)
}

// Validator is a static pre-flight gate over generated source text. It is
// pure: no process is spawned and no state is mutated.
type Validator struct {
	allowed map[string]bool
	blocked []string
}

// NewValidator builds a validator from explicit lists. Nil slices select the
// defaults.
func NewValidator(allowedImports, blockedTokens []string) *Validator {
	if allowedImports == nil {
		allowedImports = DefaultAllowedImports
	}
	if blockedTokens == nil {
		blockedTokens = DefaultBlockedTokens
	}
	allowed := make(map[string]bool, len(allowedImports))
	for _, m := range allowedImports {
		allowed[m] = true
	}
	return &Validator{allowed: allowed, blocked: blockedTokens}
}

// Validate returns an *UnsafeCodeError if code contains a blocked token or
// imports a module outside the allow-list, nil otherwise.
func (v *Validator) Validate(code string) error {
	lowered := strings.ToLower(code)
	for _, tok := range v.blocked {
		if strings.Contains(lowered, strings.ToLower(tok)) {
			return &UnsafeCodeError{Pattern: tok}
		}
	}

	for _, line := range strings.Split(code, "\n") {
		stripped := strings.TrimSpace(line)
		var module string
		switch {
		case strings.HasPrefix(stripped, "import "):
			fields := strings.Fields(stripped)
			if len(fields) < 2 {
				continue
			}
			module = strings.SplitN(fields[1], ".", 2)[0]
		case strings.HasPrefix(stripped, "from "):
			fields := strings.Fields(stripped)
			if len(fields) < 2 {
				continue
			}
			module = strings.SplitN(fields[1], ".", 2)[0]
		default:
			continue
		}
		if !v.allowed[module] {
			return &UnsafeCodeError{
				Pattern: fmt.Sprintf("import '%s' not allowed, only: %s", module, strings.Join(v.allowedList(), ", ")),
			}
		}
	}
	return nil
}

func (v *Validator) allowedList() []string {
	out := make([]string, 0, len(v.allowed))
	for m := range v.allowed {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
