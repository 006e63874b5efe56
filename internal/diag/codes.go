package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Семантические: области видимости и объявления
	SemaInfo             Code = 3000
	SemaUnresolvedSymbol Code = 3001
	SemaRedefinition     Code = 3002
	SemaIllegalDeclPlace Code = 3003
	SemaNoScope          Code = 3004
	SemaMalformedTree    Code = 3005
	SemaUnknownType      Code = 3006

	// Семантические: типы
	SemaOperandMismatch Code = 3100
	SemaInvalidOperand  Code = 3101
	SemaCallSignature   Code = 3102
	SemaNotCallable     Code = 3103
	SemaConditionType   Code = 3104
	SemaReturnType      Code = 3105
	SemaLiteralRange    Code = 3106
	SemaAssignTarget    Code = 3107

	// Семантические: форма управления
	SemaBreakOutsideLoop  Code = 3200
	SemaEntryCount        Code = 3201
	SemaMissingReturn     Code = 3202
	SemaVoidReturnsValue  Code = 3203
	SemaMissingReturnExpr Code = 3204

	// Генерация кода: ресурсы
	GenExpressionTooComplex Code = 4000
	GenFrameTooLarge        Code = 4001
	GenInternal             Code = 4099

	// Генерация кода: форматные строки
	GenFormatEscape      Code = 4100
	GenFormatPlaceholder Code = 4101
	GenFormatArgCount    Code = 4102
	GenFormatArgType     Code = 4103
	GenFormatNotLiteral  Code = 4104

	// Ввод-вывод
	IOLoadFailed Code = 5000
	IODecode     Code = 5001
	IOWrite      Code = 5002
	IOCache      Code = 5003

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		SemaInfo:                "Semantic information",
		SemaUnresolvedSymbol:    "Symbol not found",
		SemaRedefinition:        "Illegal redefinition",
		SemaIllegalDeclPlace:    "Illegal declaration placement",
		SemaNoScope:             "No scope is open",
		SemaMalformedTree:       "Malformed syntax tree",
		SemaUnknownType:         "Unknown type name",
		SemaOperandMismatch:     "Operand type mismatch",
		SemaInvalidOperand:      "Invalid operand type",
		SemaCallSignature:       "Wrong argument signature",
		SemaNotCallable:         "Called value is not a function",
		SemaConditionType:       "Wrong condition type",
		SemaReturnType:          "Wrong return type",
		SemaLiteralRange:        "Literal out of range",
		SemaAssignTarget:        "Invalid assignment target",
		SemaBreakOutsideLoop:    "Break outside loop",
		SemaEntryCount:          "Wrong number of main functions",
		SemaMissingReturn:       "Missing return value",
		SemaVoidReturnsValue:    "Void function returns a value",
		SemaMissingReturnExpr:   "Return without value in typed function",
		GenExpressionTooComplex: "Expression too complex",
		GenFrameTooLarge:        "Stack frame too large",
		GenInternal:             "Internal code generator error",
		GenFormatEscape:         "Invalid escape sequence",
		GenFormatPlaceholder:    "Malformed placeholder",
		GenFormatArgCount:       "Placeholder/argument count mismatch",
		GenFormatArgType:        "Non-int placeholder argument",
		GenFormatNotLiteral:     "Format string must be a literal",
		IOLoadFailed:            "Failed to load input",
		IODecode:                "Failed to decode syntax tree",
		IOWrite:                 "Failed to write output",
		IOCache:                 "Cache failure",
		ObsInfo:                 "Observability information",
		ObsTimings:              "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
