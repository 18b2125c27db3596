package engine

import (
	"testing"

	zygo "github.com/glycerine/zygomys/zygo"
)

func TestPreprocessSourceKeywords(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{":locked", `"__kw_locked"`},
		{"(shaft :from a)", `(shaft "__kw_from" a)`},
		{":from2_x", `"__kw_from2_x"`},
		// := assignment stays an assignment.
		{"x := 3", "x := 3"},
		// A colon before a non-letter is left alone.
		{": 5", ": 5"},
	}
	for _, tc := range cases {
		if got := preprocessSource(tc.in); got != tc.want {
			t.Errorf("preprocess(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPreprocessSourceComments(t *testing.T) {
	if got := preprocessSource("; hello\n(ball 0 0 0)"); got != "// hello\n(ball 0 0 0)" {
		t.Errorf("single comment: %q", got)
	}
	// Lisp-style double semicolons collapse to one comment marker.
	if got := preprocessSource(";; header"); got != "// header" {
		t.Errorf("double comment: %q", got)
	}
}

func TestPreprocessSourceLeavesStringsAlone(t *testing.T) {
	cases := []string{
		`"a ; not a comment"`,
		`"keyword :inside string"`,
		`"escaped \" quote ; still string"`,
	}
	for _, src := range cases {
		if got := preprocessSource(src); got != src {
			t.Errorf("preprocess(%q) = %q, want unchanged", src, got)
		}
	}
}

func TestIsKW(t *testing.T) {
	if name, ok := isKW(&zygo.SexpStr{S: "__kw_from"}); !ok || name != "from" {
		t.Errorf("isKW(__kw_from) = %q, %v", name, ok)
	}
	if _, ok := isKW(&zygo.SexpStr{S: "plain"}); ok {
		t.Error("plain string treated as keyword")
	}
	if _, ok := isKW(&zygo.SexpInt{Val: 3}); ok {
		t.Error("non-string treated as keyword")
	}
}

func TestParseArgs(t *testing.T) {
	args := []zygo.Sexp{
		&zygo.SexpInt{Val: 1},
		&zygo.SexpStr{S: "__kw_class"},
		&zygo.SexpStr{S: "medium"},
		&zygo.SexpInt{Val: 2},
	}
	pa := parseArgs(args)
	if len(pa.positional) != 2 {
		t.Fatalf("positional = %d, want 2", len(pa.positional))
	}
	cls, ok := pa.kw["class"]
	if !ok {
		t.Fatal("class keyword missing")
	}
	if s, _ := toString(cls); s != "medium" {
		t.Errorf("class value = %q, want medium", s)
	}

	// A trailing keyword with no value becomes a flag.
	pa = parseArgs([]zygo.Sexp{&zygo.SexpStr{S: "__kw_locked"}})
	if v, ok := pa.kw["locked"]; !ok {
		t.Error("flag keyword missing")
	} else if b, err := toBool(v); err != nil || !b {
		t.Errorf("flag keyword = %v, %v; want true", b, err)
	}
}

func TestValueExtraction(t *testing.T) {
	if f, err := toFloat64(&zygo.SexpInt{Val: 4}); err != nil || f != 4 {
		t.Errorf("toFloat64(int) = %v, %v", f, err)
	}
	if f, err := toFloat64(&zygo.SexpFloat{Val: 2.5}); err != nil || f != 2.5 {
		t.Errorf("toFloat64(float) = %v, %v", f, err)
	}
	if _, err := toFloat64(&zygo.SexpStr{S: "nope"}); err == nil {
		t.Error("toFloat64 accepted a string")
	}
	if _, err := toBall(&zygo.SexpInt{Val: 1}); err == nil {
		t.Error("toBall accepted a bare int")
	}
	if _, err := toShaft(zygo.SexpNull); err == nil {
		t.Error("toShaft accepted null")
	}
}
