// Package parser provides robot-program parsing using Participle v2.
// Grammar is defined as Go structs with tags.
package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// AST node types - parsed from source, compiled to a program.Program for execution

// File is the top-level AST node: attribute declarations, defines,
// allocations, then labeled code blocks.
type File struct {
	Attributes []*AttrDecl `@@*`
	Defines    []*Define   `@@*`
	Allocates  []*Allocate `@@*`
	Blocks     []*Block    `@@+`
}

// AttrDecl: NAME INTEGER (hardware attribute line)
type AttrDecl struct {
	Pos   lexer.Position
	Name  string `@Ident`
	Value int    `@Number`
}

// Define: define NAME INTEGER
type Define struct {
	Pos   lexer.Position
	Name  string `"define" @Ident`
	Neg   bool   `@"-"?`
	Value int    `@Number`
}

// Allocate: allocate NAME[, NAME...]
type Allocate struct {
	Pos   lexer.Position
	Names []string `"allocate" @Ident ("," @Ident)*`
}

// Block: Label: statements
type Block struct {
	Pos   lexer.Position
	Label string       `@Ident ":"`
	Body  []*Statement `@@*`
}

// Statement is one executable statement within a block.
type Statement struct {
	Pos    lexer.Position
	If     *IfStmt     `  @@`
	While  *WhileStmt  `| @@`
	Repeat *RepeatStmt `| @@`
	Goto   *GotoStmt   `| @@`
	Gosub  *GosubStmt  `| @@`
	Return bool        `| @"return"`
	EndInt bool        `| @"endint"`
	Assign *AssignStmt `| @@`
}

// IfStmt: if expr then stmts (else stmts) end
type IfStmt struct {
	Cond *Expr        `"if" @@ "then"`
	Then []*Statement `@@*`
	Else []*Statement `("else" @@*)?`
	End  bool         `@"end"`
}

// WhileStmt: while expr do stmts end
type WhileStmt struct {
	Cond *Expr        `"while" @@ "do"`
	Body []*Statement `@@*`
	End  bool         `@"end"`
}

// RepeatStmt: repeat stmts until expr
type RepeatStmt struct {
	Body []*Statement `"repeat" @@*`
	Cond *Expr        `"until" @@`
}

// GotoStmt: goto label
type GotoStmt struct {
	Pos   lexer.Position
	Label string `"goto" @Ident`
}

// GosubStmt: gosub label
type GosubStmt struct {
	Pos   lexer.Position
	Label string `"gosub" @Ident`
}

// AssignStmt: expr to target (to target)*
// The value is computed once and stored into each target left to right.
type AssignStmt struct {
	Pos     lexer.Position
	Expr    *Expr    `@@`
	Targets []string `("to" @Ident)+`
}

// Expr is a flat operator chain. Evaluation is strictly left to right;
// there is no precedence hierarchy. Parentheses override grouping.
type Expr struct {
	First *Term     `@@`
	Rest  []*OpTerm `@@*`
}

// OpTerm is one operator application in a chain.
type OpTerm struct {
	Op   string `@(Relop | Arith)`
	Term *Term  `@@`
}

// Term: (-)? literal | identifier | ( expr )
type Term struct {
	Pos    lexer.Position
	Neg    bool    `@"-"?`
	Number *int    `( @Number`
	Ident  *string `| @Ident`
	Paren  *Expr   `| "(" @@ ")" )`
}

// Robot-language lexer. Keywords are reserved at the lexer level so an
// identifier can never swallow a statement terminator like "end".
var robotLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Skip whitespace and comments (; to end of line)
	{Name: "Whitespace", Pattern: `[\s]+`},
	{Name: "Comment", Pattern: `;[^\n]*`},

	// Keywords
	{Name: "Keyword", Pattern: `\b(?:define|allocate|if|then|else|end|while|do|repeat|until|goto|gosub|return|endint|to)\b`},

	// Literals
	{Name: "Number", Pattern: `[0-9]+`},

	// Operators: comparators before single-char arithmetic
	{Name: "Relop", Pattern: `<>|<=|>=|[=<>]`},
	{Name: "Arith", Pattern: `[+\-*/]`},

	// Brackets and punctuation
	{Name: "Punct", Pattern: `[():,]`},

	// Identifiers (labels, variables, attributes, boundary variables)
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
})

// Parser is the robot-program parser.
var Parser = participle.MustBuild[File](
	participle.Lexer(robotLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// Parse parses robot-program source code into a File AST.
func Parse(source string) (*File, error) {
	return Parser.ParseString("", source)
}

// ParseNamed parses source with a filename for error positions.
func ParseNamed(filename, source string) (*File, error) {
	return Parser.ParseString(filename, source)
}
