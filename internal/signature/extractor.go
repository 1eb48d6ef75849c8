// Package signature recovers function signatures from server-side
// JavaScript stored on the instance.
package signature

import (
	"fmt"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// NoFunctionsMessage is reported when a script defines nothing callable
const NoFunctionsMessage = "no public functions found"

// FunctionSignature describes one callable defined in a script body
type FunctionSignature struct {
	FunctionName string   `json:"functionName"`
	Parameters   []string `json:"parameters"`
	JSDoc        string   `json:"jsdoc,omitempty"`
}

// Result is the outcome of one extraction. Message is set only when
// Functions is empty.
type Result struct {
	Functions []FunctionSignature `json:"functions"`
	Message   string              `json:"message,omitempty"`
}

// Shapes recognised:
//
//	function name(a, b) {}
//	var name = function(a, b) {}
//	name: function(a, b) {}
//	this.name = function(a, b) {} / Obj.prototype.name = function(a, b) {}
//
// Arrow functions and generators count wherever a function expression does.
const definitionQuery = `
(function_declaration name: (identifier) @name) @def
(generator_function_declaration name: (identifier) @name) @def
(variable_declarator
    name: (identifier) @name
    value: [(function_expression) (arrow_function) (generator_function)] @fn) @def
(pair
    key: [(property_identifier) (string)] @name
    value: [(function_expression) (arrow_function) (generator_function)] @fn) @def
(assignment_expression
    left: (member_expression property: (property_identifier) @name) @target
    right: [(function_expression) (arrow_function) (generator_function)] @fn) @def
(assignment_expression
    left: (identifier) @name
    right: [(function_expression) (arrow_function) (generator_function)] @fn) @def
`

var functionKinds = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

// Extractor owns the compiled grammar query. It is safe for concurrent use;
// each call gets its own parser and cursor.
type Extractor struct {
	language *tree_sitter.Language
	query    *tree_sitter.Query
}

// NewExtractor compiles the definition query against the JavaScript grammar
func NewExtractor() (*Extractor, error) {
	language := tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	query, qerr := tree_sitter.NewQuery(language, definitionQuery)
	if qerr != nil {
		return nil, fmt.Errorf("compile definition query: %s", qerr.Message)
	}
	return &Extractor{language: language, query: query}, nil
}

// Close releases the compiled query
func (e *Extractor) Close() {
	if e.query != nil {
		e.query.Close()
		e.query = nil
	}
}

type candidate struct {
	start uint
	sig   FunctionSignature
}

// Extract lists the functions defined in source. Duplicate names keep the
// first definition in source order. Malformed source is parsed
// best-effort; only a parser failure is an error.
func (e *Extractor) Extract(source string) (Result, error) {
	if strings.TrimSpace(source) == "" {
		return Result{Functions: []FunctionSignature{}, Message: NoFunctionsMessage}, nil
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(e.language); err != nil {
		return Result{}, fmt.Errorf("javascript parser unavailable: %w", err)
	}

	content := []byte(source)
	tree := parser.Parse(content, nil)
	if tree == nil {
		return Result{}, fmt.Errorf("failed to parse script body")
	}
	defer tree.Close()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(e.query, tree.RootNode(), content)
	captureNames := e.query.CaptureNames()

	var found []candidate
	for {
		match := matches.Next()
		if match == nil {
			break
		}

		var def, name, fn, target *tree_sitter.Node
		for i := range match.Captures {
			node := match.Captures[i].Node
			switch captureNames[match.Captures[i].Index] {
			case "def":
				def = &node
			case "name":
				name = &node
			case "fn":
				fn = &node
			case "target":
				target = &node
			}
		}
		if def == nil || name == nil {
			continue
		}
		if fn == nil {
			fn = def
		}
		if !exposed(def, target) {
			continue
		}

		found = append(found, candidate{
			start: def.StartByte(),
			sig: FunctionSignature{
				FunctionName: nameText(name, content),
				Parameters:   parameters(fn, content),
				JSDoc:        docComment(def, content),
			},
		})
	}

	return collect(found), nil
}

// collect orders candidates by position and keeps the first of each name
func collect(found []candidate) Result {
	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })

	seen := make(map[string]bool, len(found))
	out := make([]FunctionSignature, 0, len(found))
	for _, c := range found {
		if c.sig.FunctionName == "" || seen[c.sig.FunctionName] {
			continue
		}
		seen[c.sig.FunctionName] = true
		out = append(out, c.sig)
	}
	if len(out) == 0 {
		return Result{Functions: out, Message: NoFunctionsMessage}
	}
	return Result{Functions: out}
}

// exposed reports whether a definition is reachable from outside the
// script: not nested in a function body, unless it is a this.x assignment
// made by a constructor.
func exposed(def, target *tree_sitter.Node) bool {
	if target != nil {
		if obj := target.ChildByFieldName("object"); obj != nil && obj.Kind() == "this" {
			return true
		}
	}
	for p := def.Parent(); p != nil; p = p.Parent() {
		if functionKinds[p.Kind()] {
			return false
		}
	}
	return true
}

func nameText(node *tree_sitter.Node, content []byte) string {
	text := node.Utf8Text(content)
	if node.Kind() == "string" {
		text = strings.Trim(text, `"'`)
	}
	return text
}

// parameters lists parameter identifiers in declaration order. Defaults are
// dropped; destructuring patterns are kept as written.
func parameters(fn *tree_sitter.Node, content []byte) []string {
	params := []string{}
	if single := fn.ChildByFieldName("parameter"); single != nil {
		return append(params, single.Utf8Text(content))
	}
	list := fn.ChildByFieldName("parameters")
	if list == nil {
		return params
	}
	for i := uint(0); i < list.NamedChildCount(); i++ {
		child := list.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "comment":
			continue
		case "assignment_pattern":
			if left := child.ChildByFieldName("left"); left != nil {
				params = append(params, left.Utf8Text(content))
				continue
			}
		}
		params = append(params, child.Utf8Text(content))
	}
	return params
}

// docComment returns the /** */ block directly before the statement that
// holds def
func docComment(def *tree_sitter.Node, content []byte) string {
	anchor := def
	if parent := def.Parent(); parent != nil {
		switch parent.Kind() {
		case "lexical_declaration", "variable_declaration", "expression_statement":
			anchor = parent
		}
	}
	prev := anchor.PrevSibling()
	if prev == nil || prev.Kind() != "comment" {
		return ""
	}
	return cleanDocComment(prev.Utf8Text(content))
}

// cleanDocComment strips the delimiters and the leading "*" of each line
func cleanDocComment(raw string) string {
	if !strings.HasPrefix(raw, "/**") || !strings.HasSuffix(raw, "*/") || len(raw) < len("/***/") {
		return ""
	}
	body := raw[len("/**") : len(raw)-len("*/")]
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")

	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimPrefix(line, " ")
		cleaned = append(cleaned, strings.TrimRight(line, " \t"))
	}

	for len(cleaned) > 0 && cleaned[0] == "" {
		cleaned = cleaned[1:]
	}
	for len(cleaned) > 0 && cleaned[len(cleaned)-1] == "" {
		cleaned = cleaned[:len(cleaned)-1]
	}
	return strings.Join(cleaned, "\n")
}
