package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/calder/trestle/pkg/assembly"
	"github.com/calder/trestle/pkg/session"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Trestle Lisp source before passing it to
// zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal).
//     This avoids registering keyword symbols as globals, which would
//     conflict with user variables of the same name.
//
//  2. ; line comments become // comments, which is what zygomys parses.
//
// Both transformations respect string literal boundaries. All builtin names
// are single words, so no identifier rewriting is needed.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Copy double-quoted string literals untouched.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments.
		if b[i] == ';' {
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword", preserving := assignment.
		if b[i] == ':' && i+1 < len(b) {
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpBall wraps a node handle so it can be passed between builtins.
type sexpBall struct {
	id assembly.NodeID
}

func (s *sexpBall) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(ball #%d)", int(s.id))
}
func (s *sexpBall) Type() *zygo.RegisteredType { return nil }

// sexpShaft wraps a link handle.
type sexpShaft struct {
	id assembly.LinkID
}

func (s *sexpShaft) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shaft #%d)", int(s.id))
}
func (s *sexpShaft) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a position or direction vector.
type sexpVec3 struct {
	vec v3.Vec
}

func (s *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", s.vec.X, s.vec.Y, s.vec.Z)
}
func (s *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string, returning the
// bare keyword name if so.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument
// list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Trailing keyword with no value: treat as a flag.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp; a bare flag keyword counts true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		return v == zygo.SexpNull, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toBall extracts a node handle from a sexpBall.
func toBall(s zygo.Sexp) (assembly.NodeID, error) {
	if ref, ok := s.(*sexpBall); ok {
		return ref.id, nil
	}
	return assembly.NoNode, fmt.Errorf("expected ball reference, got %T (%s)", s, s.SexpString(nil))
}

// toShaft extracts a link handle from a sexpShaft.
func toShaft(s zygo.Sexp) (assembly.LinkID, error) {
	if ref, ok := s.(*sexpShaft); ok {
		return ref.id, nil
	}
	return assembly.NoLink, fmt.Errorf("expected shaft reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the Trestle DSL builtins into a zygomys
// environment. The builtins mutate the provided session's assembly;
// `connect` runs the full solve-validate-apply cycle, so a script that
// evaluates cleanly describes a structure every strut of which satisfies
// its distance requirement.
//
// Source must be preprocessed with preprocessSource() first so :keyword
// tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sess *session.Session) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (ball 0 0 0)  or  (ball 0 0 0 :locked true)
	// -----------------------------------------------------------------------
	env.AddFunction("ball", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("ball requires x y z coordinates, got %d values", len(pa.positional))
		}
		var coords [3]float64
		for i, s := range pa.positional {
			f, err := toFloat64(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("ball: coordinate %d: %w", i, err)
			}
			coords[i] = f
		}

		id := sess.Assembly().AddNode(v3.Vec{X: coords[0], Y: coords[1], Z: coords[2]})

		if v, ok := pa.kw["locked"]; ok {
			locked, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("ball: locked: %w", err)
			}
			sess.Assembly().SetLocked(id, locked)
		}

		return &sexpBall{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (shaft :from b :class "medium" :dir (vec3 0 0 1))
	// (shaft :from b :length 61.8)
	// -----------------------------------------------------------------------
	env.AddFunction("shaft", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		v, ok := pa.kw["from"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("shaft requires :from ball")
		}
		anchor, err := toBall(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shaft: from: %w", err)
		}

		var length float64
		if v, ok := pa.kw["class"]; ok {
			class, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("shaft: class: %w", err)
			}
			length, err = sess.Config().ClassLength(class)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("shaft: %w", err)
			}
		}
		if v, ok := pa.kw["length"]; ok {
			if length != 0 {
				return zygo.SexpNull, fmt.Errorf("shaft: give :class or :length, not both")
			}
			length, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("shaft: length: %w", err)
			}
		}
		if length == 0 {
			return zygo.SexpNull, fmt.Errorf("shaft requires :class or :length")
		}

		var dir v3.Vec
		if v, ok := pa.kw["dir"]; ok {
			dir, err = toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("shaft: dir: %w", err)
			}
		}

		id, err := sess.Assembly().AddLink(anchor, length, dir)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shaft: %w", err)
		}
		return &sexpShaft{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (connect s b) — bind the shaft's free end to ball b, repositioning
	// the connected structure to satisfy every distance requirement. A
	// rejected connection aborts the script.
	// -----------------------------------------------------------------------
	env.AddFunction("connect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("connect requires a shaft and a ball, got %d arguments", len(args))
		}
		lid, err := toShaft(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: shaft: %w", err)
		}
		target, err := toBall(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: target: %w", err)
		}

		res := sess.ProposeConnection(lid, target)
		if !res.Success {
			return zygo.SexpNull, fmt.Errorf("connect: %s", res.Message)
		}
		return &zygo.SexpBool{Val: !res.Degraded}, nil
	})

	// -----------------------------------------------------------------------
	// (lock b) / (unlock b)
	// -----------------------------------------------------------------------
	env.AddFunction("lock", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("lock requires a ball reference")
		}
		id, err := toBall(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("lock: %w", err)
		}
		sess.Assembly().SetLocked(id, true)
		return args[0], nil
	})

	env.AddFunction("unlock", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("unlock requires a ball reference")
		}
		id, err := toBall(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("unlock: %w", err)
		}
		sess.Assembly().SetLocked(id, false)
		return args[0], nil
	})
}
