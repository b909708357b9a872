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
	"github.com/smacker/go-tree-sitter/java"
)

// JavaParser extracts symbols and edges from Java source.
type JavaParser struct{}

// NewJavaParser returns a ready-to-use Java parser.
func NewJavaParser() *JavaParser { return &JavaParser{} }

func (p *JavaParser) Language() string     { return "java" }
func (p *JavaParser) Extensions() []string { return []string{".java"} }

// Parse implements Parser.
func (p *JavaParser) Parse(filePath string, content []byte) (*ParseResult, error) {
	result := &ParseResult{FilePath: filePath, Language: "java"}

	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

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

	walkByType(root, "import_declaration", func(n *sitter.Node) {
		if scoped := firstChildByType(n, "scoped_identifier"); scoped != nil {
			result.Edges = append(result.Edges, RawEdge{From: filePath, To: nodeText(scoped, content), Kind: EdgeImports})
		}
	})
	walkByType(root, "class_declaration", func(n *sitter.Node) { p.extractType(n, KindClass, filePath, content, result) })
	walkByType(root, "interface_declaration", func(n *sitter.Node) { p.extractType(n, KindInterface, filePath, content, result) })

	return result, nil
}

func (p *JavaParser) extractType(node *sitter.Node, kind SymbolKind, filePath string, content []byte, result *ParseResult) {
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

	if sup := firstChildByType(node, "superclass"); sup != nil {
		if t := firstChildByType(sup, "type_identifier"); t != nil {
			result.Edges = append(result.Edges, RawEdge{From: typeID, To: nodeText(t, content), Kind: EdgeInherits})
		}
	}
	if impl := firstChildByType(node, "super_interfaces"); impl != nil {
		walkByType(impl, "type_identifier", func(t *sitter.Node) {
			result.Edges = append(result.Edges, RawEdge{From: typeID, To: nodeText(t, content), Kind: EdgeImplements})
		})
	}
	if ext := firstChildByType(node, "extends_interfaces"); ext != nil {
		walkByType(ext, "type_identifier", func(t *sitter.Node) {
			result.Edges = append(result.Edges, RawEdge{From: typeID, To: nodeText(t, content), Kind: EdgeInherits})
		})
	}

	body := firstChildByType(node, "class_body")
	if body == nil {
		body = firstChildByType(node, "interface_body")
	}
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Type() {
		case "method_declaration":
			p.extractMethod(member, typeName, KindMethod, filePath, content, result)
		case "constructor_declaration":
			p.extractMethod(member, typeName, KindMethod, filePath, content, result)
		}
	}
}

func (p *JavaParser) extractMethod(node *sitter.Node, owner string, kind SymbolKind, filePath string, content []byte, result *ParseResult) {
	nameNode := firstChildByType(node, "identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	qualified := owner + "." + name
	id := SymbolID(filePath, qualified)
	result.Symbols = append(result.Symbols, RawSymbol{
		ID: id, FilePath: filePath, Name: name, QualifiedName: qualified,
		Kind: kind, Signature: signatureLine(node, content),
		BodyRange: rangeOf(node), DocComment: precedingComment(node, content),
	})
	walkByType(node, "method_invocation", func(call *sitter.Node) {
		if m := lastChildByType(call, "identifier"); m != nil {
			result.Edges = append(result.Edges, RawEdge{From: id, To: nodeText(m, content), Kind: EdgeCalls})
		}
	})
}
