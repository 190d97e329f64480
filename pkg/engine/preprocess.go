package engine

import (
	"fmt"
	"strings"

	"github.com/glycerine/zygomys/zygo"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// kwPrefix marks keyword arguments after preprocessing.
const kwPrefix = "__kw_"

// preprocessSource rewrites script source before handing it to
// zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keyword
//     arguments need no global symbol registration.
//  2. Kebab-case identifiers become underscore form (sort-by ->
//     sort_by); zygomys reads an interior hyphen as subtraction.
//  3. Traditional ; line comments become the // form zygomys expects.
//
// String literals are left untouched.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)
	b := source
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			// Copy a string literal verbatim, honoring escapes.
			out.WriteByte(b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					out.WriteByte(b[i])
					i++
				}
				out.WriteByte(b[i])
				i++
			}
			if i < len(b) {
				out.WriteByte(b[i])
				i++
			}
		case b[i] == ';':
			out.WriteString("//")
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out.WriteByte(b[i])
				i++
			}
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			fmt.Fprintf(&out, "%q", kwPrefix+b[i+1:j])
			i = j
		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out.WriteByte('_')
			i++
		default:
			out.WriteByte(b[i])
			i++
		}
	}
	return out.String()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// kwArgs is a parsed mixed positional/keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates keyword arguments (marked by the preprocessor)
// from positional ones.
func parseArgs(args []zygo.Sexp) kwArgs {
	out := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				out.kw[name] = args[i+1]
				i += 2
			} else {
				out.kw[name] = zygo.SexpNull
				i++
			}
			continue
		}
		out.positional = append(out.positional, args[i])
		i++
	}
	return out
}

// isKW checks whether a Sexp is a preprocessed keyword string,
// returning the bare keyword name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// toFloat64 extracts a number from a Sexp.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a plain string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeyword extracts a keyword name (or plain string) from a Sexp.
func toKeyword(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// floats extracts n consecutive numbers from args starting at i.
func floats(args []zygo.Sexp, i, n int) ([]float64, error) {
	if i+n > len(args) {
		return nil, fmt.Errorf("expected %d numbers, got %d args", n, len(args)-i)
	}
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		f, err := toFloat64(args[i+j])
		if err != nil {
			return nil, err
		}
		out[j] = f
	}
	return out, nil
}

// toVec extracts a 3-vector from a sexpVec.
func toVec(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec); ok {
		return v.v, nil
	}
	return v3.Vec{}, fmt.Errorf("expected point, got %T (%s)", s, s.SexpString(nil))
}
