// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package astx

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoParser extracts symbols and edges from Go source using tree-sitter.
// A new *sitter.Parser is created per call so GoParser is safe for
// concurrent use.
type GoParser struct{}

// NewGoParser returns a ready-to-use Go parser.
func NewGoParser() *GoParser { return &GoParser{} }

func (p *GoParser) Language() string     { return "go" }
func (p *GoParser) Extensions() []string { return []string{".go"} }

// Parse implements Parser.
func (p *GoParser) Parse(filePath string, content []byte) (*ParseResult, error) {
	result := &ParseResult{FilePath: filePath, Language: "go"}

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		result.Errors = append(result.Errors, "tree-sitter parse failed: "+err.Error())
		return result, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		result.Errors = append(result.Errors, "empty parse tree")
		return result, nil
	}
	if root.HasError() {
		result.Errors = append(result.Errors, "source contains syntax errors")
	}

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_declaration":
			p.extractImports(child, filePath, content, result)
		case "function_declaration":
			p.extractFunction(child, filePath, content, result)
		case "method_declaration":
			p.extractMethod(child, filePath, content, result)
		case "type_declaration":
			p.extractTypes(child, filePath, content, result)
		case "const_declaration":
			p.extractConsts(child, filePath, content, result)
		}
	}
	return result, nil
}

func (p *GoParser) extractImports(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	walkByType(node, "import_spec", func(spec *sitter.Node) {
		lit := firstChildByType(spec, "interpreted_string_literal")
		if lit == nil {
			return
		}
		importPath := strings.Trim(nodeText(lit, content), `"`)
		result.Edges = append(result.Edges, RawEdge{From: filePath, To: importPath, Kind: EdgeImports})
	})
}

func (p *GoParser) extractFunction(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	nameNode := firstChildByType(node, "identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	id := SymbolID(filePath, name)
	sym := RawSymbol{
		ID:            id,
		FilePath:      filePath,
		Name:          name,
		QualifiedName: name,
		Kind:          KindFunction,
		Signature:     signatureLine(node, content),
		BodyRange:     rangeOf(node),
		DocComment:    precedingComment(node, content),
	}
	result.Symbols = append(result.Symbols, sym)
	p.extractCalls(node, id, content, result)
}

func (p *GoParser) extractMethod(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	recv := firstChildByType(node, "parameter_list")
	receiver := ""
	if recv != nil {
		if t := firstChildByType(recv, "parameter_declaration"); t != nil {
			receiver = strings.TrimPrefix(nodeText(t, content), "*")
			if idx := strings.IndexAny(receiver, " \t"); idx >= 0 {
				receiver = strings.TrimSpace(receiver[idx:])
			}
			receiver = strings.TrimPrefix(strings.TrimSpace(receiver), "*")
		}
	}
	// the first field_identifier child after the receiver parameter_list is the method name
	var nameNode *sitter.Node
	seenRecv := false
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() == "parameter_list" {
			if !seenRecv {
				seenRecv = true
				continue
			}
			break
		}
		if seenRecv && c.Type() == "field_identifier" {
			nameNode = c
			break
		}
	}
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	qualified := name
	if receiver != "" {
		qualified = receiver + "." + name
	}
	id := SymbolID(filePath, qualified)
	sym := RawSymbol{
		ID:            id,
		FilePath:      filePath,
		Name:          name,
		QualifiedName: qualified,
		Kind:          KindMethod,
		Signature:     signatureLine(node, content),
		BodyRange:     rangeOf(node),
		DocComment:    precedingComment(node, content),
	}
	result.Symbols = append(result.Symbols, sym)
	p.extractCalls(node, id, content, result)
}

func (p *GoParser) extractTypes(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	walkByType(node, "type_spec", func(spec *sitter.Node) {
		nameNode := firstChildByType(spec, "type_identifier")
		if nameNode == nil {
			return
		}
		name := nodeText(nameNode, content)
		kind := KindType
		var inherits []string
		if structType := firstChildByType(spec, "struct_type"); structType != nil {
			kind = KindClass
			walkByType(structType, "field_declaration_list", func(_ *sitter.Node) {})
		}
		if ifaceType := firstChildByType(spec, "interface_type"); ifaceType != nil {
			kind = KindInterface
			walkByType(ifaceType, "type_identifier", func(embed *sitter.Node) {
				if embed != nameNode {
					inherits = append(inherits, nodeText(embed, content))
				}
			})
		}
		id := SymbolID(filePath, name)
		sym := RawSymbol{
			ID:            id,
			FilePath:      filePath,
			Name:          name,
			QualifiedName: name,
			Kind:          kind,
			Signature:     signatureLine(spec, content),
			BodyRange:     rangeOf(spec),
			DocComment:    precedingComment(spec, content),
		}
		result.Symbols = append(result.Symbols, sym)
		for _, embed := range inherits {
			result.Edges = append(result.Edges, RawEdge{From: id, To: embed, Kind: EdgeInherits})
		}
	})
}

func (p *GoParser) extractConsts(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	walkByType(node, "const_spec", func(spec *sitter.Node) {
		nameNode := firstChildByType(spec, "identifier")
		if nameNode == nil {
			return
		}
		name := nodeText(nameNode, content)
		result.Symbols = append(result.Symbols, RawSymbol{
			ID:            SymbolID(filePath, name),
			FilePath:      filePath,
			Name:          name,
			QualifiedName: name,
			Kind:          KindConst,
			Signature:     signatureLine(spec, content),
			BodyRange:     rangeOf(spec),
		})
	})
}

// extractCalls walks a function/method body for call_expression nodes and
// records a "calls" edge keyed on the bare callee name (selector field or
// plain identifier); resolution to a symbol id happens later in the graph.
func (p *GoParser) extractCalls(node *sitter.Node, fromID string, content []byte, result *ParseResult) {
	walkByType(node, "call_expression", func(call *sitter.Node) {
		fn := call.Child(0)
		if fn == nil {
			return
		}
		var callee string
		switch fn.Type() {
		case "identifier":
			callee = nodeText(fn, content)
		case "selector_expression":
			if field := firstChildByType(fn, "field_identifier"); field != nil {
				callee = nodeText(field, content)
			}
		}
		if callee == "" {
			return
		}
		result.Edges = append(result.Edges, RawEdge{From: fromID, To: callee, Kind: EdgeCalls})
	})
}

// --- shared tree-sitter helpers, reused by the other language parsers ---

func nodeText(n *sitter.Node, content []byte) string {
	return string(content[n.StartByte():n.EndByte()])
}

func rangeOf(n *sitter.Node) LineRange {
	return LineRange{Start: int(n.StartPoint().Row) + 1, End: int(n.EndPoint().Row) + 1}
}

func firstChildByType(n *sitter.Node, t string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == t {
			return c
		}
	}
	return nil
}

// walkByType performs a depth-first traversal of n, invoking fn for every
// descendant (including n's direct children, but not n itself) whose Type
// matches t. It does not descend past a matched node.
func walkByType(n *sitter.Node, t string, fn func(*sitter.Node)) {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == t {
			fn(c)
			continue
		}
		walkByType(c, t, fn)
	}
}

// signatureLine renders the first source line of a declaration node as a
// single-line human-readable signature.
func signatureLine(n *sitter.Node, content []byte) string {
	text := nodeText(n, content)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// precedingComment collects contiguous line comments immediately above
// node at the same tree depth, in source order.
func precedingComment(node *sitter.Node, content []byte) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	var comments []string
	found := false
	for i := 0; i < int(parent.ChildCount()); i++ {
		c := parent.Child(i)
		if c == node {
			found = true
			break
		}
	}
	if !found {
		return ""
	}
	idx := -1
	for i := 0; i < int(parent.ChildCount()); i++ {
		if parent.Child(i) == node {
			idx = i
			break
		}
	}
	for i := idx - 1; i >= 0; i-- {
		c := parent.Child(i)
		if c.Type() != "comment" {
			break
		}
		comments = append([]string{strings.TrimSpace(strings.TrimPrefix(nodeText(c, content), "//"))}, comments...)
	}
	return strings.Join(comments, "\n")
}
