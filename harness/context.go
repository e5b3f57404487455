package harness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedValue is returned for context values that are not
	// primitives or flat sequences of primitives.
	ErrUnsupportedValue = errors.New("unsupported context value")
	// ErrInvalidName is returned for context names that cannot be bound.
	ErrInvalidName = errors.New("invalid context name")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// builtinNames are the public names of Python's builtins module. Binding a
// context variable over one of them would hide it from student code.
var builtinNames = func() map[string]bool {
	names := make(map[string]bool)
	for _, name := range strings.Fields(`
		ArithmeticError AssertionError AttributeError BaseException BaseExceptionGroup
		BlockingIOError BrokenPipeError BufferError BytesWarning ChildProcessError
		ConnectionAbortedError ConnectionError ConnectionRefusedError ConnectionResetError
		DeprecationWarning EOFError Ellipsis EncodingWarning EnvironmentError Exception
		ExceptionGroup FileExistsError FileNotFoundError FloatingPointError FutureWarning
		GeneratorExit IOError ImportError ImportWarning IndentationError IndexError
		InterruptedError IsADirectoryError KeyError KeyboardInterrupt LookupError
		MemoryError ModuleNotFoundError NameError NotADirectoryError NotImplemented
		NotImplementedError OSError OverflowError PendingDeprecationWarning
		PermissionError ProcessLookupError RecursionError ReferenceError ResourceWarning
		RuntimeError RuntimeWarning StopAsyncIteration StopIteration SyntaxError
		SyntaxWarning SystemError SystemExit TabError TimeoutError TypeError
		UnboundLocalError UnicodeDecodeError UnicodeEncodeError UnicodeError
		UnicodeTranslateError UnicodeWarning UserWarning ValueError Warning
		ZeroDivisionError
		abs aiter all anext any ascii bin bool breakpoint bytearray bytes callable chr
		classmethod compile complex copyright credits delattr dict dir divmod enumerate
		eval exec exit filter float format frozenset getattr globals hasattr hash help
		hex id input int isinstance issubclass iter len license list locals map max
		memoryview min next object oct open ord pow print property quit range repr
		reversed round set setattr slice sorted staticmethod str sum super tuple type
		vars zip
	`) {
		names[name] = true
	}
	return names
}()

// SerializeContext renders one `name = literal` binding per entry, sorted by
// name.
func SerializeContext(ctx map[string]any) (string, error) {
	names, err := contextNames(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, name := range names {
		lit, err := pyLiteral(ctx[name])
		if err != nil {
			return "", fmt.Errorf("context %q: %w", name, err)
		}
		b.WriteString(name)
		b.WriteString(" = ")
		b.WriteString(lit)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// contextDict renders ctx as a Python dict literal, one entry per line,
// sorted by name.
func contextDict(ctx map[string]any) (string, error) {
	names, err := contextNames(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "{}", nil
	}

	var b strings.Builder
	b.WriteString("{\n")
	for _, name := range names {
		lit, err := pyLiteral(ctx[name])
		if err != nil {
			return "", fmt.Errorf("context %q: %w", name, err)
		}
		b.WriteString("    ")
		b.WriteString(pyString(name))
		b.WriteString(": ")
		b.WriteString(lit)
		b.WriteString(",\n")
	}
	b.WriteString("}")
	return b.String(), nil
}

// contextNames validates and sorts the names of ctx.
func contextNames(ctx map[string]any) ([]string, error) {
	names := make([]string, 0, len(ctx))
	for name := range ctx {
		if err := validateName(name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func validateName(name string) error {
	switch {
	case !identifierPattern.MatchString(name):
		return fmt.Errorf("%w: %q is not a plain identifier", ErrInvalidName, name)
	case pythonKeywords[name]:
		return fmt.Errorf("%w: %q is a Python keyword", ErrInvalidName, name)
	case reservedNames[name]:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	case builtinNames[name]:
		return fmt.Errorf("%w: %q is a Python builtin", ErrInvalidName, name)
	}
	return nil
}

// pyLiteral encodes a primitive or a flat sequence of primitives.
func pyLiteral(v any) (string, error) {
	switch x := v.(type) {
	case []string:
		return pySequence(len(x), func(i int) any { return x[i] })
	case []int:
		return pySequence(len(x), func(i int) any { return x[i] })
	case []int64:
		return pySequence(len(x), func(i int) any { return x[i] })
	case []float64:
		return pySequence(len(x), func(i int) any { return x[i] })
	case []bool:
		return pySequence(len(x), func(i int) any { return x[i] })
	case []any:
		return pySequence(len(x), func(i int) any { return x[i] })
	}
	return pyScalar(v)
}

func pySequence(n int, at func(int) any) (string, error) {
	items := make([]string, 0, n)
	for i := range n {
		lit, err := pyScalar(at(i))
		if err != nil {
			return "", fmt.Errorf("element %d: %w", i, err)
		}
		items = append(items, lit)
	}
	return "[" + strings.Join(items, ", ") + "]", nil
}

func pyScalar(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "None", nil
	case string:
		return pyString(x), nil
	case bool:
		if x {
			return "True", nil
		}
		return "False", nil
	case int:
		return strconv.FormatInt(int64(x), 10), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return pyFloat(float64(x), 32)
	case float64:
		return pyFloat(x, 64)
	case json.Number:
		// Re-render instead of trusting the text.
		if n, err := x.Int64(); err == nil {
			return strconv.FormatInt(n, 10), nil
		}
		f, err := x.Float64()
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a number", ErrUnsupportedValue, x.String())
		}
		return pyFloat(f, 64)
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

func pyFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: non-finite number", ErrUnsupportedValue)
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s, nil
}

// pyString quotes s as a Python string literal. Every escape the JSON
// encoder emits (\" \\ \n \r \t \b \f \uXXXX) means the same thing in a
// Python string literal, so the encoded value can never leave the literal.
func pyString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
