package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

const maxSnippetLen = 40

// SyntaxError locates the first parse problem in a source file.
type SyntaxError struct {
	Line   int
	Detail string

	origin int // first line involved; 0 means Line
}

func (e *SyntaxError) from() int {
	if e.origin > 0 {
		return e.origin
	}
	return e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Detail)
}

// CheckPython reports the first syntax problem in code as a *SyntaxError,
// or a plain error if parsing itself fails. The tree-sitter grammar recovers
// from errors and still accepts Python 2 statements, so its result is
// combined with an indentation pass and a Python 3 statement check. The
// problem that starts earliest wins, indentation first on a tie.
func CheckPython(ctx context.Context, code string) error {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	src := []byte(code)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return err
	}
	defer tree.Close()

	root := tree.RootNode()
	found := []*SyntaxError{checkIndentation(code)}
	if root.HasError() {
		if bad := firstError(root); bad != nil {
			found = append(found, &SyntaxError{Line: int(bad.StartPoint().Row) + 1, Detail: describe(bad, src)})
		} else {
			found = append(found, &SyntaxError{Line: 1, Detail: "invalid syntax"})
		}
	}
	found = append(found, checkStatements(root, src, false))

	var first *SyntaxError
	for _, se := range found {
		if se != nil && (first == nil || se.from() < first.from()) {
			first = se
		}
	}
	if first == nil {
		return nil
	}
	return first
}

// checkStatements finds constructs the grammar accepts but Python 3 rejects.
func checkStatements(n *sitter.Node, src []byte, inFunc bool) *SyntaxError {
	at := func(detail string) *SyntaxError {
		return &SyntaxError{Line: int(n.StartPoint().Row) + 1, Detail: detail}
	}
	switch n.Type() {
	case "print_statement":
		if isStatementPrint(n, src) {
			return at("Missing parentheses in call to 'print'")
		}
	case "exec_statement":
		return at("Missing parentheses in call to 'exec'")
	case "return_statement":
		if !inFunc {
			return at("'return' outside function")
		}
	case "yield":
		if !inFunc {
			return at("'yield' outside function")
		}
	case "function_definition", "lambda":
		inFunc = true
	case "class_definition":
		inFunc = false
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if se := checkStatements(n.NamedChild(i), src, inFunc); se != nil {
			return se
		}
	}
	return nil
}

// isStatementPrint tells "print x" apart from Python 3 forms the grammar
// may also read as a print statement, such as "print (x)" or "print >> f".
func isStatementPrint(n *sitter.Node, src []byte) bool {
	if n.NamedChildCount() == 0 {
		return false
	}
	arg := n.NamedChild(0)
	if arg.Type() == "chevron" {
		return false
	}
	r, _ := utf8.DecodeRune(src[arg.StartByte():])
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(`_'"{`, r)
}

type indentLevel struct {
	col int // tabs to multiples of 8
	alt int // tabs as one column
}

// pyLine tracks the tokenizer state that spans physical lines.
type pyLine struct {
	quote     string // open string delimiter
	depth     int    // open brackets
	continued bool   // line ended with a backslash
}

// checkIndentation applies Python's tokenizer rules to the start of every
// logical line: indents only after a line ending in ':', dedents back to an
// earlier level, and tabs and spaces that agree at every tab size.
func checkIndentation(code string) *SyntaxError {
	var (
		state     pyLine
		stack     = []indentLevel{{}}
		openBlock bool
		blockLine int
	)
	for i, raw := range strings.Split(code, "\n") {
		lineNo := i + 1
		line := strings.TrimSuffix(raw, "\r")

		if state.quote == "" && state.depth == 0 && !state.continued {
			col, alt, rest := measureIndent(line)
			if rest == "" || rest[0] == '#' {
				continue
			}
			top := stack[len(stack)-1]
			switch {
			case col > top.col:
				if alt <= top.alt {
					return tabError(lineNo)
				}
				if !openBlock {
					return &SyntaxError{Line: lineNo, Detail: "unexpected indent"}
				}
				stack = append(stack, indentLevel{col: col, alt: alt})
			default:
				for len(stack) > 1 && col < stack[len(stack)-1].col {
					stack = stack[:len(stack)-1]
				}
				top = stack[len(stack)-1]
				if col != top.col {
					return &SyntaxError{Line: lineNo, Detail: "unindent does not match any outer indentation level"}
				}
				if alt != top.alt {
					return tabError(lineNo)
				}
				if openBlock {
					return expectedBlock(lineNo, blockLine)
				}
			}
		}

		last := state.scan(line)
		if state.quote == "" && state.depth == 0 && !state.continued {
			openBlock = last == ':'
			blockLine = lineNo
		}
	}
	if openBlock {
		return expectedBlock(blockLine+1, blockLine)
	}
	return nil
}

func tabError(line int) *SyntaxError {
	return &SyntaxError{Line: line, Detail: "inconsistent use of tabs and spaces in indentation"}
}

func expectedBlock(line, opener int) *SyntaxError {
	return &SyntaxError{
		Line:   line,
		Detail: fmt.Sprintf("expected an indented block after line %d", opener),
		origin: opener,
	}
}

func measureIndent(line string) (col, alt int, rest string) {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			col++
			alt++
		case '\t':
			col = (col/8 + 1) * 8
			alt++
		case '\f':
			col, alt = 0, 0
		default:
			return col, alt, line[i:]
		}
	}
	return col, alt, ""
}

// scan advances the state over one physical line and returns its last
// significant byte outside comments. String contents never count; a
// closing quote does.
func (s *pyLine) scan(line string) byte {
	var last byte
	s.continued = false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if s.quote != "" {
			switch {
			case c == '\\':
				s.continued = i == len(line)-1
				i++
			case strings.HasPrefix(line[i:], s.quote):
				i += len(s.quote) - 1
				s.quote = ""
				last = c
			}
			continue
		}
		switch c {
		case '#':
			return last
		case '"', '\'':
			s.quote = string(c)
			if triple := strings.Repeat(s.quote, 3); strings.HasPrefix(line[i:], triple) {
				s.quote = triple
				i += 2
			}
		case '(', '[', '{':
			s.depth++
		case ')', ']', '}':
			if s.depth > 0 {
				s.depth--
			}
		case '\\':
			if i == len(line)-1 {
				s.continued = true
				return last
			}
		case ' ', '\t', '\f':
			continue
		}
		last = c
	}
	if len(s.quote) == 1 && !s.continued {
		// Unterminated string; the grammar reports it.
		s.quote = ""
	}
	return last
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

func describe(n *sitter.Node, src []byte) string {
	if n.IsMissing() {
		return fmt.Sprintf("missing %q", n.Type())
	}
	snippet := strings.TrimSpace(n.Content(src))
	if i := strings.IndexByte(snippet, '\n'); i >= 0 {
		snippet = snippet[:i]
	}
	if len(snippet) > maxSnippetLen {
		snippet = snippet[:maxSnippetLen] + "..."
	}
	if snippet == "" {
		return "invalid syntax"
	}
	return fmt.Sprintf("invalid syntax near %q", snippet)
}

// ValidatePython is the validate_python_syntax tool.
type ValidatePython struct{}

// NewValidatePython returns the syntax checking tool.
func NewValidatePython() *ValidatePython {
	return &ValidatePython{}
}

type validateInput struct {
	Code string `json:"code"`
}

// Spec implements Tool.
func (ValidatePython) Spec() Spec {
	return Spec{
		Name:        NameValidatePython,
		Description: "Check that a Python snippet parses. Returns the first error line.",
		Parameters:  []Param{{Name: "code", Description: "Python source to check"}},
	}
}

// Call implements Tool.
func (ValidatePython) Call(ctx context.Context, input json.RawMessage) Result {
	var in validateInput
	if err := decodeInput(input, &in); err != nil {
		return failResult("Error validating syntax: invalid input: %v", err)
	}
	err := CheckPython(ctx, in.Code)
	if err == nil {
		return okResult("Syntax OK")
	}
	if se, ok := err.(*SyntaxError); ok { //nolint:errorlint // CheckPython returns it unwrapped
		// A syntax error is a valid answer; the tool itself worked.
		return okResult("Syntax error on line %d: %s", se.Line, se.Detail)
	}
	return failResult("Error validating syntax: %v", err)
}

var _ Tool = (*ValidatePython)(nil)
