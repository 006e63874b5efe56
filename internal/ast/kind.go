package ast

import "fmt"

// Kind is the closed vocabulary of node kinds handed over by the parser.
// Every operator is its own variant.
type Kind uint8

const (
	KindInvalid Kind = iota

	KindProgram
	KindGlobVarDecl
	KindVarDecl
	KindFuncDecl
	KindMainFuncDecl
	KindParameters
	KindParameter
	KindBlock

	KindIf
	KindIfElse
	KindWhile
	KindBreak
	KindReturn
	KindVoidStmt

	KindFuncCall
	KindArguments
	KindArgument

	KindID
	KindNumber
	KindString
	KindTrue
	KindFalse

	KindAssign
	KindAddAssign
	KindSubAssign
	KindMulAssign
	KindDivAssign
	KindModAssign

	KindAdd
	KindSub
	KindMul
	KindDiv
	KindMod
	KindAnd
	KindOr
	KindEq
	KindNe
	KindLt
	KindGt
	KindLe
	KindGe

	KindNeg
	KindNot

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:      "invalid",
	KindProgram:      "program",
	KindGlobVarDecl:  "globVarDecl",
	KindVarDecl:      "varDecl",
	KindFuncDecl:     "funcDecl",
	KindMainFuncDecl: "mainFuncDecl",
	KindParameters:   "parameters",
	KindParameter:    "parameter",
	KindBlock:        "block",
	KindIf:           "if",
	KindIfElse:       "ifElse",
	KindWhile:        "while",
	KindBreak:        "break",
	KindReturn:       "return",
	KindVoidStmt:     "voidStmt",
	KindFuncCall:     "funcCall",
	KindArguments:    "arguments",
	KindArgument:     "argument",
	KindID:           "id",
	KindNumber:       "number",
	KindString:       "string",
	KindTrue:         "true",
	KindFalse:        "false",
	KindAssign:       "=",
	KindAddAssign:    "+=",
	KindSubAssign:    "-=",
	KindMulAssign:    "*=",
	KindDivAssign:    "/=",
	KindModAssign:    "%=",
	KindAdd:          "+",
	KindSub:          "-",
	KindMul:          "*",
	KindDiv:          "/",
	KindMod:          "%",
	KindAnd:          "&&",
	KindOr:           "||",
	KindEq:           "==",
	KindNe:           "!=",
	KindLt:           "<",
	KindGt:           ">",
	KindLe:           "<=",
	KindGe:           ">=",
	KindNeg:          "u-",
	KindNot:          "!",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := KindProgram; k < kindCount; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String for every valid kind.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindByName[name]; ok {
		return k, nil
	}
	return KindInvalid, fmt.Errorf("unknown node kind %q", name)
}

// IsAssign reports = and the compound assignment operators.
func (k Kind) IsAssign() bool {
	return k >= KindAssign && k <= KindModAssign
}

// IsBinary reports the non-assignment binary operators.
func (k Kind) IsBinary() bool {
	return k >= KindAdd && k <= KindGe
}

// IsUnary reports u- and !.
func (k Kind) IsUnary() bool {
	return k == KindNeg || k == KindNot
}

// IsRelational reports < > <= >=.
func (k Kind) IsRelational() bool {
	return k >= KindLt && k <= KindGe
}

// IsEquality reports == and !=.
func (k Kind) IsEquality() bool {
	return k == KindEq || k == KindNe
}

// IsLogical reports && and ||.
func (k Kind) IsLogical() bool {
	return k == KindAnd || k == KindOr
}

// IsFuncDecl reports both function declaration kinds.
func (k Kind) IsFuncDecl() bool {
	return k == KindFuncDecl || k == KindMainFuncDecl
}

// IsVarDecl reports both variable declaration kinds.
func (k Kind) IsVarDecl() bool {
	return k == KindGlobVarDecl || k == KindVarDecl
}

// IsConditional reports nodes whose bodies open a block frame.
func (k Kind) IsConditional() bool {
	return k == KindIf || k == KindIfElse || k == KindWhile
}

// IsExpr reports kinds that produce a value.
func (k Kind) IsExpr() bool {
	switch k {
	case KindID, KindNumber, KindString, KindTrue, KindFalse, KindFuncCall:
		return true
	}
	return k.IsAssign() || k.IsBinary() || k.IsUnary()
}

// ArithmeticOf maps a compound assignment to its arithmetic operator.
func (k Kind) ArithmeticOf() Kind {
	switch k {
	case KindAddAssign:
		return KindAdd
	case KindSubAssign:
		return KindSub
	case KindMulAssign:
		return KindMul
	case KindDivAssign:
		return KindDiv
	case KindModAssign:
		return KindMod
	}
	return KindInvalid
}
