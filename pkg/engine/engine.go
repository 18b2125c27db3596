// Package engine provides the Lisp evaluation engine for Trestle. It wraps
// zygomys in a sandboxed environment and builds an assembly session from
// user source code, running each proposed connection through the
// constraint solver as it goes.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/calder/trestle/pkg/assembly"
	"github.com/calder/trestle/pkg/config"
	"github.com/calder/trestle/pkg/observe"
	"github.com/calder/trestle/pkg/session"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code, or a connection the
// solver rejected.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment and a fresh
// assembly for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	cfg        config.Config
	obs        observe.Observer
}

// NewEngine creates an Engine. A nil observer gets the no-op one.
func NewEngine(cfg config.Config, obs observe.Observer) *Engine {
	if obs == nil {
		obs = observe.Nop()
	}
	return &Engine{cfg: cfg, obs: obs}
}

// Evaluate runs Trestle Lisp source and produces the resulting session.
//
// Return semantics:
//   - On success: session + nil errors + nil error
//   - On parse/eval failure (including rejected connections): nil session +
//     eval errors + nil error
//   - On fatal failure (timeout, panic): nil + nil + error
func (e *Engine) Evaluate(source string) (*session.Session, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		sess, evalErrs, err := e.evaluate(source)
		ch <- evalResult{sess: sess, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*session.Session, []EvalError, error) {
	sess := session.New(assembly.New(), e.cfg, e.obs)

	// Empty source is a valid program that produces an empty assembly.
	if strings.TrimSpace(source) == "" {
		return sess, nil, nil
	}

	// Sandbox mode prevents user code from touching the filesystem or
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, sess)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	return sess, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError
// values, extracting line numbers where the message carries them.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
