package sandbox

import (
	"fmt"
	"strings"
)

// EntryPointName is the conventional name of the candidate's entry function.
// When no function by this name exists, the harness falls back to the sole
// top-level definition, if there is exactly one.
const EntryPointName = "solve"

// harnessTemplate wraps a candidate solution in a fixed IO contract: one
// JSON-encoded argv argument in, exactly one JSON value on stdout.
// Invocation failures are reported as {"error": ...} objects on stdout with
// a zero exit, so the executor can tell "ran, logic error" apart from
// "failed to start". Only a candidate that breaks at import time (e.g. a
// syntax error) produces a nonzero exit.
const harnessTemplate = `import json
import sys
import types

%s

def _resolve_entry():
    fn = globals().get(%q)
    if callable(fn):
        return fn
    defs = [v for k, v in list(globals().items())
            if isinstance(v, types.FunctionType)
            and v.__module__ == "__main__"
            and not k.startswith("_")]
    if len(defs) == 1:
        return defs[0]
    return None

def _invoke(fn, args):
    # Call strategy, in order:
    # 1) unpack positionally -> fn(a, b, ...)
    # 2) pass the list as a single argument -> fn([a, b, ...])
    # 3) single-element list -> fn(a)
    try:
        return fn(*args)
    except TypeError:
        try:
            return fn(args)
        except TypeError:
            if isinstance(args, list) and len(args) == 1:
                return fn(args[0])
            raise

if __name__ == "__main__":
    try:
        args = json.loads(sys.argv[1])
        fn = _resolve_entry()
        if fn is None:
            print(json.dumps({"error": "NoEntryPointError: no callable entry point found"}))
            sys.exit(0)
        print(json.dumps(_invoke(fn, args)))
    except Exception as e:
        print(json.dumps({"error": str(e)}))
        sys.exit(0)
`

// BuildHarness returns a self-contained Python script embedding code
// unchanged. The same harness source is reused across all test cases of one
// attempt; only the argv payload varies.
func BuildHarness(code string) string {
	return fmt.Sprintf(harnessTemplate, strings.TrimRight(code, "\n"), EntryPointName)
}
