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
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TypeScriptParser extracts symbols and edges from TypeScript, TSX,
// JavaScript and JSX sources. The concrete grammar is chosen by
// extension: .tsx uses the TSX grammar, .ts uses TypeScript, and .js/.jsx
// fall back to the plain JavaScript grammar (a superset-compatible
// subset of what TSX accepts).
type TypeScriptParser struct{}

// NewTypeScriptParser returns a ready-to-use TS/JS parser.
func NewTypeScriptParser() *TypeScriptParser { return &TypeScriptParser{} }

func (p *TypeScriptParser) Language() string { return "typescript" }

func (p *TypeScriptParser) Extensions() []string {
	return []string{".ts", ".tsx", ".js", ".jsx"}
}

func (p *TypeScriptParser) languageFor(filePath string) *sitter.Language {
	switch {
	case strings.HasSuffix(filePath, ".tsx"):
		return tsx.GetLanguage()
	case strings.HasSuffix(filePath, ".ts"):
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// Parse implements Parser.
func (p *TypeScriptParser) Parse(filePath string, content []byte) (*ParseResult, error) {
	result := &ParseResult{FilePath: filePath, Language: "typescript"}

	parser := sitter.NewParser()
	parser.SetLanguage(p.languageFor(filePath))

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

	p.walkTopLevel(root, filePath, content, result)
	return result, nil
}

func (p *TypeScriptParser) walkTopLevel(n *sitter.Node, filePath string, content []byte, result *ParseResult) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "function_declaration":
			p.extractFunction(child, filePath, content, result)
		case "class_declaration":
			p.extractClass(child, filePath, content, result)
		case "interface_declaration":
			p.extractInterface(child, filePath, content, result)
		case "type_alias_declaration":
			p.extractTypeAlias(child, filePath, content, result)
		case "lexical_declaration", "variable_declaration":
			p.extractArrowConsts(child, filePath, content, result)
		case "import_statement":
			p.extractImport(child, filePath, content, result)
		case "export_statement":
			p.walkTopLevel(child, filePath, content, result)
		}
	}
}

func (p *TypeScriptParser) extractImport(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	str := firstChildByType(node, "string")
	if str == nil {
		return
	}
	importPath := strings.Trim(nodeText(str, content), `"'`)
	result.Edges = append(result.Edges, RawEdge{From: filePath, To: importPath, Kind: EdgeImports})
}

func (p *TypeScriptParser) extractFunction(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	nameNode := firstChildByType(node, "identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	id := SymbolID(filePath, name)
	result.Symbols = append(result.Symbols, RawSymbol{
		ID: id, FilePath: filePath, Name: name, QualifiedName: name,
		Kind: KindFunction, Signature: signatureLine(node, content),
		BodyRange: rangeOf(node), DocComment: precedingComment(node, content),
	})
	extractCallsJS(node, id, content, result)
}

// extractArrowConsts handles `const foo = (...) => {...}` top-level
// bindings, treated as functions per §4.1's "arrow-bound const" kind.
func (p *TypeScriptParser) extractArrowConsts(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	walkByType(node, "variable_declarator", func(decl *sitter.Node) {
		nameNode := firstChildByType(decl, "identifier")
		if nameNode == nil {
			return
		}
		hasArrow := firstChildByType(decl, "arrow_function") != nil || firstChildByType(decl, "function") != nil
		if !hasArrow {
			return
		}
		name := nodeText(nameNode, content)
		id := SymbolID(filePath, name)
		result.Symbols = append(result.Symbols, RawSymbol{
			ID: id, FilePath: filePath, Name: name, QualifiedName: name,
			Kind: KindFunction, Signature: signatureLine(decl, content),
			BodyRange: rangeOf(decl), DocComment: precedingComment(node, content),
		})
		extractCallsJS(decl, id, content, result)
	})
}

func (p *TypeScriptParser) extractClass(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	nameNode := firstChildByType(node, "type_identifier")
	if nameNode == nil {
		nameNode = firstChildByType(node, "identifier")
	}
	if nameNode == nil {
		return
	}
	className := nodeText(nameNode, content)
	classID := SymbolID(filePath, className)
	result.Symbols = append(result.Symbols, RawSymbol{
		ID: classID, FilePath: filePath, Name: className, QualifiedName: className,
		Kind: KindClass, Signature: signatureLine(node, content),
		BodyRange: rangeOf(node), DocComment: precedingComment(node, content),
	})

	if heritage := firstChildByType(node, "class_heritage"); heritage != nil {
		walkByType(heritage, "extends_clause", func(ext *sitter.Node) {
			if id := firstChildByType(ext, "identifier"); id != nil {
				result.Edges = append(result.Edges, RawEdge{From: classID, To: nodeText(id, content), Kind: EdgeInherits})
			}
		})
		walkByType(heritage, "implements_clause", func(impl *sitter.Node) {
			walkByType(impl, "type_identifier", func(t *sitter.Node) {
				result.Edges = append(result.Edges, RawEdge{From: classID, To: nodeText(t, content), Kind: EdgeImplements})
			})
		})
	}

	body := firstChildByType(node, "class_body")
	if body == nil {
		return
	}
	walkByType(body, "method_definition", func(m *sitter.Node) {
		mName := firstChildByType(m, "property_identifier")
		if mName == nil {
			return
		}
		name := nodeText(mName, content)
		qualified := className + "." + name
		id := SymbolID(filePath, qualified)
		result.Symbols = append(result.Symbols, RawSymbol{
			ID: id, FilePath: filePath, Name: name, QualifiedName: qualified,
			Kind: KindMethod, Signature: signatureLine(m, content),
			BodyRange: rangeOf(m), DocComment: precedingComment(m, content),
		})
		extractCallsJS(m, id, content, result)
	})
}

func (p *TypeScriptParser) extractInterface(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	nameNode := firstChildByType(node, "type_identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	id := SymbolID(filePath, name)
	result.Symbols = append(result.Symbols, RawSymbol{
		ID: id, FilePath: filePath, Name: name, QualifiedName: name,
		Kind: KindInterface, Signature: signatureLine(node, content),
		BodyRange: rangeOf(node), DocComment: precedingComment(node, content),
	})
	if heritage := firstChildByType(node, "extends_type_clause"); heritage != nil {
		walkByType(heritage, "type_identifier", func(t *sitter.Node) {
			result.Edges = append(result.Edges, RawEdge{From: id, To: nodeText(t, content), Kind: EdgeInherits})
		})
	}
}

func (p *TypeScriptParser) extractTypeAlias(node *sitter.Node, filePath string, content []byte, result *ParseResult) {
	nameNode := firstChildByType(node, "type_identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	result.Symbols = append(result.Symbols, RawSymbol{
		ID: SymbolID(filePath, name), FilePath: filePath, Name: name, QualifiedName: name,
		Kind: KindType, Signature: signatureLine(node, content),
		BodyRange: rangeOf(node), DocComment: precedingComment(node, content),
	})
}

// extractCallsJS walks a function/method body for call_expression nodes.
func extractCallsJS(node *sitter.Node, fromID string, content []byte, result *ParseResult) {
	walkByType(node, "call_expression", func(call *sitter.Node) {
		fn := call.Child(0)
		if fn == nil {
			return
		}
		var callee string
		switch fn.Type() {
		case "identifier":
			callee = nodeText(fn, content)
		case "member_expression":
			if prop := firstChildByType(fn, "property_identifier"); prop != nil {
				callee = nodeText(prop, content)
			}
		}
		if callee == "" {
			return
		}
		result.Edges = append(result.Edges, RawEdge{From: fromID, To: callee, Kind: EdgeCalls})
	})
}
