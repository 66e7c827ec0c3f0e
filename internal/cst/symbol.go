package cst

// Symbol identifies a grammar production or token kind in the concrete
// syntax tree. The set is closed: the converter dispatches over it with a
// static switch, so adding a production means adding both a constant here
// and a conversion rule.
type Symbol uint8

const (
	SymUnknown Symbol = iota

	// Structure
	SymModule
	SymBlock
	SymExpressionStatement

	// Simple statements
	SymAssignment
	SymAugmentedAssignment
	SymNamedExpression
	SymReturnStatement
	SymDeleteStatement
	SymRaiseStatement
	SymPassStatement
	SymBreakStatement
	SymContinueStatement
	SymAssertStatement
	SymPrintStatement
	SymChevron
	SymExecStatement
	SymGlobalStatement
	SymNonlocalStatement

	// Imports
	SymImportStatement
	SymImportFromStatement
	SymFutureImportStatement
	SymAliasedImport
	SymDottedName
	SymRelativeImport
	SymImportPrefix
	SymWildcardImport

	// Compound statements
	SymIfStatement
	SymElifClause
	SymElseClause
	SymForStatement
	SymWhileStatement
	SymTryStatement
	SymExceptClause
	SymFinallyClause
	SymWithStatement
	SymWithClause
	SymWithItem
	SymAsPattern
	SymAsPatternTarget

	// Definitions
	SymFunctionDefinition
	SymLambda
	SymClassDefinition
	SymDecoratedDefinition
	SymDecorator
	SymParameters
	SymLambdaParameters
	SymDefaultParameter
	SymTypedParameter
	SymTypedDefaultParameter
	SymListSplatPattern
	SymDictionarySplatPattern
	SymType

	// Assignable groupings
	SymExpressionList
	SymPatternList
	SymTuplePattern
	SymListPattern
	SymParenthesizedExpression

	// Operators
	SymBinaryOperator
	SymBooleanOperator
	SymNotOperator
	SymUnaryOperator
	SymComparisonOperator
	SymConditionalExpression

	// Calls and trailers
	SymCall
	SymArgumentList
	SymKeywordArgument
	SymListSplat
	SymDictionarySplat
	SymAttribute
	SymSubscript
	SymSlice

	// Displays
	SymTuple
	SymList
	SymSet
	SymDictionary
	SymPair

	// Comprehensions
	SymListComprehension
	SymSetComprehension
	SymDictionaryComprehension
	SymGeneratorExpression
	SymForInClause
	SymIfClause

	// Expressions
	SymAwait
	SymYield
	SymParenthesizedListSplat

	// Productions the grammar emits but conversion rejects: structural
	// pattern matching, PEP 695 type syntax, exception groups.
	SymMatchStatement
	SymCaseClause
	SymCasePattern
	SymUnionPattern
	SymDictPattern
	SymSplatPattern
	SymClassPattern
	SymKeywordPattern
	SymComplexPattern
	SymTypeAliasStatement
	SymTypeParameter
	SymConstrainedType
	SymMemberType
	SymUnionType
	SymGenericType
	SymSplatType
	SymExceptGroupClause

	// Leaf tokens
	SymIdentifier
	SymInteger
	SymFloat
	SymString
	SymConcatenatedString
	SymInterpolation
	SymFormatSpecifier
	SymTypeConversion
	SymTrue
	SymFalse
	SymNone
	SymEllipsis

	// Punctuation and operator tokens (anonymous tree-sitter nodes)
	SymComma
	SymDot
	SymStar
	SymDoubleStar
	SymEquals
	SymColon
	SymOperator
	SymKeyword

	symCount
)

// tsKindToSymbol maps tree-sitter-python named node types to Symbols.
// async_function_definition is an alias some grammar revisions emit for
// a function_definition with the async modifier.
var tsKindToSymbol = map[string]Symbol{
	"module":                    SymModule,
	"block":                     SymBlock,
	"expression_statement":      SymExpressionStatement,
	"assignment":                SymAssignment,
	"augmented_assignment":      SymAugmentedAssignment,
	"named_expression":          SymNamedExpression,
	"return_statement":          SymReturnStatement,
	"delete_statement":          SymDeleteStatement,
	"raise_statement":           SymRaiseStatement,
	"pass_statement":            SymPassStatement,
	"break_statement":           SymBreakStatement,
	"continue_statement":        SymContinueStatement,
	"assert_statement":          SymAssertStatement,
	"print_statement":           SymPrintStatement,
	"chevron":                   SymChevron,
	"exec_statement":            SymExecStatement,
	"global_statement":          SymGlobalStatement,
	"nonlocal_statement":        SymNonlocalStatement,
	"import_statement":          SymImportStatement,
	"import_from_statement":     SymImportFromStatement,
	"future_import_statement":   SymFutureImportStatement,
	"aliased_import":            SymAliasedImport,
	"dotted_name":               SymDottedName,
	"relative_import":           SymRelativeImport,
	"import_prefix":             SymImportPrefix,
	"wildcard_import":           SymWildcardImport,
	"if_statement":              SymIfStatement,
	"elif_clause":               SymElifClause,
	"else_clause":               SymElseClause,
	"for_statement":             SymForStatement,
	"while_statement":           SymWhileStatement,
	"try_statement":             SymTryStatement,
	"except_clause":             SymExceptClause,
	"finally_clause":            SymFinallyClause,
	"with_statement":            SymWithStatement,
	"with_clause":               SymWithClause,
	"with_item":                 SymWithItem,
	"as_pattern":                SymAsPattern,
	"as_pattern_target":         SymAsPatternTarget,
	"function_definition":       SymFunctionDefinition,
	"async_function_definition": SymFunctionDefinition,
	"lambda":                    SymLambda,
	"class_definition":          SymClassDefinition,
	"decorated_definition":      SymDecoratedDefinition,
	"decorator":                 SymDecorator,
	"parameters":                SymParameters,
	"lambda_parameters":         SymLambdaParameters,
	"default_parameter":         SymDefaultParameter,
	"typed_parameter":           SymTypedParameter,
	"typed_default_parameter":   SymTypedDefaultParameter,
	"list_splat_pattern":        SymListSplatPattern,
	"dictionary_splat_pattern":  SymDictionarySplatPattern,
	"type":                      SymType,
	"expression_list":           SymExpressionList,
	"pattern_list":              SymPatternList,
	"tuple_pattern":             SymTuplePattern,
	"list_pattern":              SymListPattern,
	"parenthesized_expression":  SymParenthesizedExpression,
	"binary_operator":           SymBinaryOperator,
	"boolean_operator":          SymBooleanOperator,
	"not_operator":              SymNotOperator,
	"unary_operator":            SymUnaryOperator,
	"comparison_operator":       SymComparisonOperator,
	"conditional_expression":    SymConditionalExpression,
	"call":                      SymCall,
	"argument_list":             SymArgumentList,
	"keyword_argument":          SymKeywordArgument,
	"list_splat":                SymListSplat,
	"dictionary_splat":          SymDictionarySplat,
	"attribute":                 SymAttribute,
	"subscript":                 SymSubscript,
	"slice":                     SymSlice,
	"tuple":                     SymTuple,
	"list":                      SymList,
	"set":                       SymSet,
	"dictionary":                SymDictionary,
	"pair":                      SymPair,
	"list_comprehension":        SymListComprehension,
	"set_comprehension":         SymSetComprehension,
	"dictionary_comprehension":  SymDictionaryComprehension,
	"generator_expression":      SymGeneratorExpression,
	"for_in_clause":             SymForInClause,
	"if_clause":                 SymIfClause,
	"await":                     SymAwait,
	"yield":                     SymYield,
	"parenthesized_list_splat":  SymParenthesizedListSplat,
	"match_statement":           SymMatchStatement,
	"case_clause":               SymCaseClause,
	"case_pattern":              SymCasePattern,
	"union_pattern":             SymUnionPattern,
	"dict_pattern":              SymDictPattern,
	"splat_pattern":             SymSplatPattern,
	"class_pattern":             SymClassPattern,
	"keyword_pattern":           SymKeywordPattern,
	"complex_pattern":           SymComplexPattern,
	"type_alias_statement":      SymTypeAliasStatement,
	"type_parameter":            SymTypeParameter,
	"constrained_type":          SymConstrainedType,
	"member_type":               SymMemberType,
	"union_type":                SymUnionType,
	"generic_type":              SymGenericType,
	"splat_type":                SymSplatType,
	"except_group_clause":       SymExceptGroupClause,
	"identifier":                SymIdentifier,
	"integer":                   SymInteger,
	"float":                     SymFloat,
	"string":                    SymString,
	"concatenated_string":       SymConcatenatedString,
	"interpolation":             SymInterpolation,
	"format_specifier":          SymFormatSpecifier,
	"type_conversion":           SymTypeConversion,
	"true":                      SymTrue,
	"false":                     SymFalse,
	"none":                      SymNone,
	"ellipsis":                  SymEllipsis,
}

// anonKindToSymbol maps the anonymous (punctuation/operator) node types the
// converter cares about. Anything else anonymous becomes SymOperator if it
// looks like an operator, SymKeyword otherwise.
var anonKindToSymbol = map[string]Symbol{
	",":  SymComma,
	".":  SymDot,
	"*":  SymStar,
	"**": SymDoubleStar,
	"=":  SymEquals,
	":":  SymColon,
}

// symbolNames is the reverse mapping, for diagnostics and config files.
var symbolNames = func() map[Symbol]string {
	m := map[Symbol]string{
		SymUnknown:    "unknown",
		SymComma:      ",",
		SymDot:        ".",
		SymStar:       "*",
		SymDoubleStar: "**",
		SymEquals:     "=",
		SymColon:      ":",
		SymOperator:   "operator",
		SymKeyword:    "keyword",
	}
	for kind, sym := range tsKindToSymbol {
		// Prefer the canonical name over grammar aliases.
		if _, ok := m[sym]; !ok || kind == "function_definition" {
			m[sym] = kind
		}
	}
	return m
}()

// String returns the tree-sitter node type name for the Symbol.
func (s Symbol) String() string {
	if name, ok := symbolNames[s]; ok {
		return name
	}
	return "unknown"
}

// SymbolByName looks up a Symbol by its tree-sitter node type name.
// Used when reading collapse allow-lists from configuration.
func SymbolByName(name string) (Symbol, bool) {
	if sym, ok := tsKindToSymbol[name]; ok {
		return sym, true
	}
	sym, ok := anonKindToSymbol[name]
	return sym, ok
}

// IsPunct reports whether the Symbol is a punctuation, operator, or keyword
// token with no semantic payload of its own.
func (s Symbol) IsPunct() bool {
	switch s {
	case SymComma, SymDot, SymStar, SymDoubleStar, SymEquals, SymColon,
		SymOperator, SymKeyword:
		return true
	}
	return false
}

// isTokenSymbol reports whether the Symbol is a leaf token kind rather than
// a composite production.
func (s Symbol) isToken() bool {
	switch s {
	case SymIdentifier, SymInteger, SymFloat, SymString, SymTrue, SymFalse,
		SymNone, SymEllipsis, SymImportPrefix, SymWildcardImport,
		SymComma, SymDot, SymStar, SymDoubleStar, SymEquals, SymColon,
		SymOperator, SymKeyword, SymTypeConversion:
		return true
	}
	return false
}
