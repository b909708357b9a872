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
	"github.com/smacker/go-tree-sitter/python"
)

// PythonParser extracts symbols and edges from Python source. Both sync
// and async function definitions are extracted; a decorated definition
// is extracted like an undecorated one, and its decorators are neither
// tracked as separate symbols nor part of the signature line.
type PythonParser struct{}

// NewPythonParser returns a ready-to-use Python parser.
func NewPythonParser() *PythonParser { return &PythonParser{} }

func (p *PythonParser) Language() string     { return "python" }
func (p *PythonParser) Extensions() []string { return []string{".py"} }

// Parse implements Parser.
func (p *PythonParser) Parse(filePath string, content []byte) (*ParseResult, error) {
	result := &ParseResult{FilePath: filePath, Language: "python"}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

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
		case "function_definition":
			p.extractFunction(child, "", filePath, content, result)
		case "class_definition":
			p.extractClass(child, filePath, content, result)
		case "decorated_definition":
			if fn := firstChildByType(child, "function_definition"); fn != nil {
				p.extractFunction(fn, "", filePath, content, result)
			} else if cls := firstChildByType(child, "class_definition"); cls != nil {
				p.extractClass(cls, filePath, content, result)
			}
		case "import_statement", "import_from_statement":
			p.extractImport(child, filePath, content, result)
		}
	}
	return result, nil
}

func (p *PythonParser) extractImport(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	walkByType(node, "dotted_name", func(n *sitter.Node) {
		result.Edges = append(result.Edges, RawEdge{From: filePath, To: nodeText(n, content), Kind: EdgeImports})
	})
}

func (p *PythonParser) extractFunction(node *sitter.Node, owner string, filePath string, content []byte, result *ParseResult) {
	nameNode := firstChildByType(node, "identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	qualified := name
	kind := KindFunction
	if owner != "" {
		qualified = owner + "." + name
		kind = KindMethod
	}
	id := SymbolID(filePath, qualified)
	result.Symbols = append(result.Symbols, RawSymbol{
		ID: id, FilePath: filePath, Name: name, QualifiedName: qualified,
		Kind: kind, Signature: signatureLine(node, content),
		BodyRange: rangeOf(node), DocComment: pythonDocstring(node, content),
	})
	extractCallsPy(node, id, content, result)
}

func (p *PythonParser) extractClass(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	nameNode := firstChildByType(node, "identifier")
	if nameNode == nil {
		return
	}
	className := nodeText(nameNode, content)
	classID := SymbolID(filePath, className)
	result.Symbols = append(result.Symbols, RawSymbol{
		ID: classID, FilePath: filePath, Name: className, QualifiedName: className,
		Kind: KindClass, Signature: signatureLine(node, content),
		BodyRange: rangeOf(node), DocComment: pythonDocstring(node, content),
	})

	if argList := firstChildByType(node, "argument_list"); argList != nil {
		walkByType(argList, "identifier", func(base *sitter.Node) {
			result.Edges = append(result.Edges, RawEdge{From: classID, To: nodeText(base, content), Kind: EdgeInherits})
		})
	}

	body := firstChildByType(node, "block")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		m := body.Child(i)
		if m.Type() == "decorated_definition" {
			if fn := firstChildByType(m, "function_definition"); fn != nil {
				m = fn
			}
		}
		if m.Type() == "function_definition" {
			p.extractFunction(m, className, filePath, content, result)
		}
	}
}

// pythonDocstring returns the leading string-expression statement of a
// function/class body, Python's docstring convention.
func pythonDocstring(node *sitter.Node, content []byte) string {
	body := firstChildByType(node, "block")
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first.Type() != "expression_statement" {
		return ""
	}
	str := firstChildByType(first, "string")
	if str == nil {
		return ""
	}
	return strings.Trim(nodeText(str, content), "\"'")
}

func extractCallsPy(node *sitter.Node, fromID string, content []byte, result *ParseResult) {
	walkByType(node, "call", func(call *sitter.Node) {
		fn := firstChildByType(call, "identifier")
		if fn == nil {
			if attr := firstChildByType(call, "attribute"); attr != nil {
				if id := lastChildByType(attr, "identifier"); id != nil {
					fn = id
				}
			}
		}
		if fn == nil {
			return
		}
		result.Edges = append(result.Edges, RawEdge{From: fromID, To: nodeText(fn, content), Kind: EdgeCalls})
	})
}

func lastChildByType(n *sitter.Node, t string) *sitter.Node {
	var last *sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == t {
			last = c
		}
	}
	return last
}
