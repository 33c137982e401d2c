package demangle

// This file implements the decoded symbol's data model as a closed
// set of tagged Go structs, one Go type per entity: Type, Name,
// NameSegment, TemplateArg, CxxSymbol. All nodes are created during a
// single parse and are immutable once returned; there is no shared
// mutable AST state after Parse returns (the back-reference table
// that parsing shares is transient, see parseState in types.go).
//
// Each variant is a plain struct with a Kind discriminator field
// rather than an interface, since every Type ultimately needs the
// same handful of optional fields and an interface per variant would
// just mean as many type-asserts in the printer.

// Qualifier is a bitset of CV-qualifiers a Type carries.
type Qualifier uint8

const (
	QualConst Qualifier = 1 << iota
	QualVolatile
)

// BuiltinKind enumerates the fixed set of GNU v2 builtin types.
// Signed/unsigned composites (Sc, Uc, Us, Ui, Ul, Ux) each get their
// own distinct member here rather than being represented as a
// Qualified wrapper around an unsigned toggle — see types.go's
// parseType doc comment for why.
type BuiltinKind int

const (
	BuiltinVoid BuiltinKind = iota
	BuiltinBool
	BuiltinChar
	BuiltinSignedChar
	BuiltinUnsignedChar
	BuiltinWCharT
	BuiltinShort
	BuiltinUnsignedShort
	BuiltinInt
	BuiltinUnsignedInt
	BuiltinLong
	BuiltinUnsignedLong
	BuiltinLongLong
	BuiltinUnsignedLongLong
	BuiltinFloat
	BuiltinDouble
	BuiltinLongDouble
	BuiltinEllipsis // varargs sentinel; never produced, since the ellipsis code `e` is rejected as unsupported
)

func (k BuiltinKind) String() string {
	switch k {
	case BuiltinVoid:
		return "void"
	case BuiltinBool:
		return "bool"
	case BuiltinChar:
		return "char"
	case BuiltinSignedChar:
		return "signed char"
	case BuiltinUnsignedChar:
		return "unsigned char"
	case BuiltinWCharT:
		return "wchar_t"
	case BuiltinShort:
		return "short"
	case BuiltinUnsignedShort:
		return "unsigned short"
	case BuiltinInt:
		return "int"
	case BuiltinUnsignedInt:
		return "unsigned int"
	case BuiltinLong:
		return "long"
	case BuiltinUnsignedLong:
		return "unsigned long"
	case BuiltinLongLong:
		return "long long"
	case BuiltinUnsignedLongLong:
		return "unsigned long long"
	case BuiltinFloat:
		return "float"
	case BuiltinDouble:
		return "double"
	case BuiltinLongDouble:
		return "long double"
	case BuiltinEllipsis:
		return "..."
	default:
		return "?"
	}
}

// TypeKind discriminates Type's tagged variant.
type TypeKind int

const (
	TypeBuiltin TypeKind = iota
	TypeNamed
	TypePointer
	TypeReference
	TypeArray
	TypeFunction
	TypeQualified
)

// Type is the closed tagged-variant AST node for a C++ type.
//
// A parameter occurrence produced by a T-code back-reference is kept
// structurally identical to the original parameter (same Kind, same
// fields) and carries the "was this produced by a back-reference"
// fact as the BackReferenced flag, rather than as a distinct node
// kind. The printer consults that flag only when rendering a
// function's top-level parameter list (never for nested occurrences),
// appending the historical "&&" marker there.
type Type struct {
	Kind TypeKind

	Builtin BuiltinKind // valid when Kind == TypeBuiltin
	Name    *Name       // valid when Kind == TypeNamed

	Inner *Type // valid when Kind == TypePointer, TypeReference, TypeArray, TypeQualified

	ArrayLen     int  // valid when Kind == TypeArray
	ArrayUnknown bool // valid when Kind == TypeArray; true for the "A_" unknown-length form

	Return     *Type   // valid when Kind == TypeFunction; nil means unspecified (non-template convention)
	Params     []*Type // valid when Kind == TypeFunction
	IsVariadic bool    // valid when Kind == TypeFunction; always false, ellipsis (`e`) is out of scope

	Quals Qualifier // valid when Kind == TypeQualified

	// BackReferenced is true when this Type node is the result of a
	// T-code or N-code copy rather than a freshly decoded encoding.
	// It never affects equality of meaning, only the printer's
	// rendering of the historical back-reference marker.
	BackReferenced bool
}

// FunctionParams returns the parameter types of a Function-kind Type,
// or nil if t is not a function type.
func (t *Type) FunctionParams() []*Type {
	if t == nil || t.Kind != TypeFunction {
		return nil
	}
	return t.Params
}

// FunctionReturn returns the declared return type of a Function-kind
// Type, or nil if unspecified or t is not a function type.
func (t *Type) FunctionReturn() *Type {
	if t == nil || t.Kind != TypeFunction {
		return nil
	}
	return t.Return
}

// NameSegment is one link of a Name's qualification chain: either a
// plain identifier, or an identifier plus template arguments.
type NameSegment struct {
	Identifier   string
	TemplateArgs []TemplateArg // nil/empty when not templated
}

func (seg NameSegment) isTemplated() bool { return len(seg.TemplateArgs) > 0 }

// Name is a non-empty ordered sequence of NameSegments, outermost
// scope first; a Name is never empty.
type Name struct {
	Segments []NameSegment
}

// Base returns the last segment's identifier, already stripped of any
// template arguments since those are stored out-of-band in
// NameSegment.TemplateArgs rather than embedded in Identifier text.
func (n *Name) Base() string {
	if n == nil || len(n.Segments) == 0 {
		return ""
	}
	return n.Segments[len(n.Segments)-1].Identifier
}

// TemplateArgKind discriminates TemplateArg's tagged variant.
type TemplateArgKind int

const (
	TemplateArgType TemplateArgKind = iota
	TemplateArgValue
)

// TemplateValueKind discriminates the literal payload of a value
// TemplateArg.
type TemplateValueKind int

const (
	TemplateValueInt TemplateValueKind = iota
	TemplateValueBool
	TemplateValueChar
	TemplateValueSymbol // pointer/function template argument: a mangled symbol reference
)

// TemplateValue holds the decoded literal of a value TemplateArg.
type TemplateValue struct {
	Kind   TemplateValueKind
	Int    int64
	Bool   bool
	Char   byte
	Symbol string
}

// TemplateArg is either a type argument or a typed value argument.
type TemplateArg struct {
	Kind  TemplateArgKind
	Type  *Type         // the argument type (TemplateArgType), or the value's declared type (TemplateArgValue)
	Value TemplateValue // valid when Kind == TemplateArgValue
}

// SymbolKind discriminates the kind of linker symbol a CxxSymbol
// describes.
type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolData
	SymbolVTable
	SymbolVThunk
	SymbolGlobalCtorKey
	SymbolGlobalDtorKey
	SymbolTypeinfoNode
	SymbolTypeinfoFn
	// SymbolGuardVariable is declared for API completeness, but no
	// special-prefix rule produces it from any input; Parse never
	// returns this kind. See DESIGN.md.
	SymbolGuardVariable
)

// SpecialFlags is a bitset of the secondary facts attached to a
// CxxSymbol beyond its kind.
type SpecialFlags uint8

const (
	FlagIsConstructor SpecialFlags = 1 << iota
	FlagIsDestructor
	FlagIsVirtualThunk
	FlagIsStaticMemberFn
	FlagIsConstMemberFn
	FlagIsVolatileMemberFn
)

// CxxSymbol is the root output of a parse: the structured description
// of one mangled symbol.
type CxxSymbol struct {
	Kind         SymbolKind
	Name         *Name
	Type         *Type // Function type for function-like kinds; owning class Named type for vtable; declared type for data; nil for global-key kinds, which carry no owning-class type (only Inner)
	SpecialFlags SpecialFlags
	ThunkDelta   int // valid only when Kind == SymbolVThunk

	// Inner holds the wrapped symbol for kinds that key or adjust
	// another symbol: SymbolVThunk, SymbolGlobalCtorKey,
	// SymbolGlobalDtorKey. nil for every other kind.
	Inner *CxxSymbol

	// ConversionType holds the target type of a user-defined
	// conversion operator (`operator T`). nil unless Name's last
	// segment is a conversion operator.
	ConversionType *Type
}

func (s *CxxSymbol) isConversionOperator() bool {
	return s.ConversionType != nil
}
