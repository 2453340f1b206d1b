package lexer

import "fmt"

// Category identifies the lexical class of a Token.
//
// Declaration order is significant: when two automata accept a lexeme of the
// same length, the category declared later wins. Punctuation and operators
// come first, then the open classes (identifier, number, string), then the
// keywords so they override identifiers, and the comments last so they
// override everything.
type Category int

const (
	Unknown Category = iota // catch-all for unrecognised input

	// Punctuation and operators
	Period    // .
	Semicolon // ;
	Colon     // :
	LParen    // (
	RParen    // )
	Comma     // ,
	LBrace    // {
	RBrace    // }
	Dash      // -
	LBracket  // [
	RBracket  // ]
	Pipe      // |
	Ampersand // &
	Plus      // +
	Less      // <
	Greater   // >
	LessEq    // <=
	GreaterEq // >=
	Equal     // ==
	NotEqual  // !=
	Asterisk  // *
	Slash     // /
	Assign    // :=

	// Open lexical classes
	Identifier
	Number
	String

	// Keywords
	ProgramKW
	BeginKW
	EndKW
	IsKW
	GlobalKW
	ProcedureKW
	VariableKW
	TypeKW
	IntegerKW
	FloatKW
	StringKW
	BoolKW
	EnumKW
	IfKW
	ThenKW
	ElseKW
	ForKW
	ReturnKW
	NotKW
	TrueKW
	FalseKW

	// Comments are never handed to the parser.
	LineComment
	BlockComment

	numCategories
)

// spellings is indexed by Category. Fixed-text categories hold their exact
// source text; open classes hold a descriptive placeholder used in messages.
var spellings = [...]string{
	Unknown:      "<other>",
	Period:       ".",
	Semicolon:    ";",
	Colon:        ":",
	LParen:       "(",
	RParen:       ")",
	Comma:        ",",
	LBrace:       "{",
	RBrace:       "}",
	Dash:         "-",
	LBracket:     "[",
	RBracket:     "]",
	Pipe:         "|",
	Ampersand:    "&",
	Plus:         "+",
	Less:         "<",
	Greater:      ">",
	LessEq:       "<=",
	GreaterEq:    ">=",
	Equal:        "==",
	NotEqual:     "!=",
	Asterisk:     "*",
	Slash:        "/",
	Assign:       ":=",
	Identifier:   "<identifier>",
	Number:       "<number>",
	String:       "<string>",
	ProgramKW:    "program",
	BeginKW:      "begin",
	EndKW:        "end",
	IsKW:         "is",
	GlobalKW:     "global",
	ProcedureKW:  "procedure",
	VariableKW:   "variable",
	TypeKW:       "type",
	IntegerKW:    "integer",
	FloatKW:      "float",
	StringKW:     "string",
	BoolKW:       "bool",
	EnumKW:       "enum",
	IfKW:         "if",
	ThenKW:       "then",
	ElseKW:       "else",
	ForKW:        "for",
	ReturnKW:     "return",
	NotKW:        "not",
	TrueKW:       "true",
	FalseKW:      "false",
	LineComment:  "<line_comment>",
	BlockComment: "<multiline_comment>",
}

// Compile-time check that spellings covers every category.
var _ = spellings[numCategories-1]

// Spelling returns the fixed source text of c, or a placeholder such as
// "<identifier>" for the open classes.
func (c Category) Spelling() string {
	if c >= 0 && c < numCategories {
		return spellings[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

func (c Category) String() string {
	return c.Spelling()
}

// IsKeyword reports whether c is a reserved word.
func (c Category) IsKeyword() bool {
	return c >= ProgramKW && c <= FalseKW
}

// IsComment reports whether c is discarded by the Lexer.
func (c Category) IsComment() bool {
	return c == LineComment || c == BlockComment
}

// hasFixedText reports whether c matches exactly one spelling.
func (c Category) hasFixedText() bool {
	return (c >= Period && c <= Assign) || c.IsKeyword()
}

// Token is a single lexeme produced by the Lexer. Tokens are immutable once
// emitted.
type Token struct {
	Category Category
	Text     string // the exact source text that was matched
	Line     int    // 1-based source line of the first character
}

func (t Token) String() string {
	return fmt.Sprintf("%-20s %-14q  line %d", t.Category, t.Text, t.Line)
}
