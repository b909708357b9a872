// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package astx

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// CSharpParser extracts symbols and edges from C# source: methods,
// constructors, classes, records, and interfaces.
type CSharpParser struct{}

// NewCSharpParser returns a ready-to-use C# parser.
func NewCSharpParser() *CSharpParser { return &CSharpParser{} }

func (p *CSharpParser) Language() string     { return "csharp" }
func (p *CSharpParser) Extensions() []string { return []string{".cs"} }

// Parse implements Parser.
func (p *CSharpParser) Parse(filePath string, content []byte) (*ParseResult, error) {
	result := &ParseResult{FilePath: filePath, Language: "csharp"}

	parser := sitter.NewParser()
	parser.SetLanguage(csharp.GetLanguage())

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

	walkByType(root, "using_directive", func(n *sitter.Node) {
		if id := firstChildByType(n, "qualified_name"); id != nil {
			result.Edges = append(result.Edges, RawEdge{From: filePath, To: nodeText(id, content), Kind: EdgeImports})
		} else if id := firstChildByType(n, "identifier"); id != nil {
			result.Edges = append(result.Edges, RawEdge{From: filePath, To: nodeText(id, content), Kind: EdgeImports})
		}
	})
	walkByType(root, "class_declaration", func(n *sitter.Node) { p.extractType(n, KindClass, filePath, content, result) })
	walkByType(root, "interface_declaration", func(n *sitter.Node) { p.extractType(n, KindInterface, filePath, content, result) })
	walkByType(root, "record_declaration", func(n *sitter.Node) { p.extractType(n, KindClass, filePath, content, result) })

	return result, nil
}

func (p *CSharpParser) extractType(node *sitter.Node, kind SymbolKind, filePath string, content []byte, result *ParseResult) {
	nameNode := firstChildByType(node, "identifier")
	if nameNode == nil {
		return
	}
	typeName := nodeText(nameNode, content)
	typeID := SymbolID(filePath, typeName)
	result.Symbols = append(result.Symbols, RawSymbol{
		ID: typeID, FilePath: filePath, Name: typeName, QualifiedName: typeName,
		Kind: kind, Signature: signatureLine(node, content),
		BodyRange: rangeOf(node), DocComment: precedingComment(node, content),
	})

	if base := firstChildByType(node, "base_list"); base != nil {
		walkByType(base, "identifier", func(t *sitter.Node) {
			result.Edges = append(result.Edges, RawEdge{From: typeID, To: nodeText(t, content), Kind: EdgeInherits})
		})
	}

	body := firstChildByType(node, "declaration_list")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Type() {
		case "method_declaration", "constructor_declaration":
			p.extractMethod(member, typeName, filePath, content, result)
		}
	}
}

func (p *CSharpParser) extractMethod(node *sitter.Node, owner string, filePath string, content []byte, result *ParseResult) {
	nameNode := firstChildByType(node, "identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	qualified := owner + "." + name
	id := SymbolID(filePath, qualified)
	result.Symbols = append(result.Symbols, RawSymbol{
		ID: id, FilePath: filePath, Name: name, QualifiedName: qualified,
		Kind: KindMethod, Signature: signatureLine(node, content),
		BodyRange: rangeOf(node), DocComment: precedingComment(node, content),
	})
	walkByType(node, "invocation_expression", func(call *sitter.Node) {
		fn := call.Child(0)
		if fn == nil {
			return
		}
		var callee string
		switch fn.Type() {
		case "identifier":
			callee = nodeText(fn, content)
		case "member_access_expression":
			if m := lastChildByType(fn, "identifier"); m != nil {
				callee = nodeText(m, content)
			}
		}
		if callee != "" {
			result.Edges = append(result.Edges, RawEdge{From: id, To: callee, Kind: EdgeCalls})
		}
	})
}
