package demangle

import (
	"strconv"
	"strings"
)

// PrettyPrint renders a CxxSymbol as a C++-style declaration string.
// This is the only output format a demangler needs; there is no debug
// tree view or syntax highlighting to render here.
func (s *CxxSymbol) PrettyPrint() string {
	var b strings.Builder
	switch s.Kind {
	case SymbolVTable:
		b.WriteString(s.Name.String())
		b.WriteString(" virtual table")
	case SymbolVThunk:
		b.WriteString(itoa(int64(s.ThunkDelta)))
		b.WriteString(" virtual thunk to ")
		b.WriteString(s.Inner.PrettyPrint())
	case SymbolGlobalCtorKey:
		b.WriteString("global constructors keyed to ")
		b.WriteString(s.Inner.PrettyPrint())
	case SymbolGlobalDtorKey:
		b.WriteString("global destructors keyed to ")
		b.WriteString(s.Inner.PrettyPrint())
	case SymbolTypeinfoFn:
		b.WriteString("typeinfo function for ")
		b.WriteString(s.Type.String())
	case SymbolTypeinfoNode:
		b.WriteString("typeinfo for ")
		b.WriteString(s.Type.String())
	case SymbolData:
		b.WriteString(s.dataString())
	default:
		b.WriteString(s.functionString())
	}
	return b.String()
}

func (s *CxxSymbol) dataString() string {
	if s.Type == nil {
		return s.Name.String()
	}
	return declarator(s.Type, s.Name.String())
}

// functionString renders an ordinary function, constructor,
// destructor, or conversion-operator symbol. All four share the same
// "<scope>::<member>(<params>)" shape; only the member text and an
// optional leading return type differ.
func (s *CxxSymbol) functionString() string {
	segs := s.Name.Segments
	last := segs[len(segs)-1]

	var member string
	switch {
	case s.SpecialFlags&FlagIsConstructor != 0:
		if len(segs) >= 2 {
			member = segs[len(segs)-2].Identifier
		}
	case s.SpecialFlags&FlagIsDestructor != 0:
		if len(segs) >= 2 {
			member = "~" + segs[len(segs)-2].Identifier
		}
	case s.isConversionOperator():
		member = "operator " + s.ConversionType.String()
	default:
		member = last.identifierText()
	}

	scope := ""
	if n := len(segs) - 1; n > 0 {
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			parts[i] = segs[i].identifierText()
		}
		scope = strings.Join(parts, "::") + "::"
	}

	params := paramsString(s.Type.FunctionParams())

	var ret string
	if r := s.Type.FunctionReturn(); r != nil {
		ret = r.String() + " "
	}

	return ret + scope + member + "(" + params + ")" + qualifierSuffix(s.SpecialFlags)
}

func qualifierSuffix(flags SpecialFlags) string {
	var parts []string
	if flags&FlagIsConstMemberFn != 0 {
		parts = append(parts, "const")
	}
	if flags&FlagIsVolatileMemberFn != 0 {
		parts = append(parts, "volatile")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

// paramsString renders a function's parameter list, substituting the
// single word "void" for an empty list, and appending the historical
// "&&" marker after any parameter that was produced by a
// back-reference rather than spelled out in full.
func paramsString(params []*Type) string {
	if len(params) == 0 {
		return "void"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		text := p.String()
		if p.BackReferenced {
			text += " &&"
		}
		parts[i] = text
	}
	return strings.Join(parts, ", ")
}

// String renders a Name as its "::"-joined scope-resolution text,
// including each segment's template arguments where present.
func (n *Name) String() string {
	return n.nameString(func(seg NameSegment) string { return seg.identifierText() })
}

// identifierText renders one NameSegment: its identifier, plus a
// bracketed template-argument list when templated.
func (seg NameSegment) identifierText() string {
	if !seg.isTemplated() {
		return seg.Identifier
	}
	parts := make([]string, len(seg.TemplateArgs))
	for i, a := range seg.TemplateArgs {
		parts[i] = a.String()
	}
	return seg.Identifier + "<" + strings.Join(parts, ", ") + ">"
}

// String renders one template argument: either the type it names, or
// its typed literal value.
func (a TemplateArg) String() string {
	if a.Kind == TemplateArgType {
		return a.Type.String()
	}
	switch a.Value.Kind {
	case TemplateValueBool:
		if a.Value.Bool {
			return "true"
		}
		return "false"
	case TemplateValueChar:
		return "'" + string(rune(a.Value.Char)) + "'"
	case TemplateValueSymbol:
		return a.Value.Symbol
	default:
		return itoa(a.Value.Int)
	}
}

// String renders a Type as a standalone C++ type expression (a bare
// declarator with no name to wrap around), used for conversion
// operators, typeinfo symbols, and template arguments.
func (t *Type) String() string {
	return declarator(t, "")
}

// declarator implements the clockwise-spiral composition rule for
// pointer/reference/array/function nesting: it builds the type's text
// from the innermost base outward, wrapping name in parentheses only
// where precedence would otherwise bind the wrong way (a
// pointer-to-array or pointer-to-function).
func declarator(t *Type, name string) string {
	if t == nil {
		if name == "" {
			return "void"
		}
		return name
	}
	switch t.Kind {
	case TypeBuiltin:
		return joinTypeName(t.Builtin.String(), name)
	case TypeNamed:
		return joinTypeName(t.Name.String(), name)
	case TypeQualified:
		prefix := qualifierPrefix(t.Quals)
		inner := t.Inner
		if inner != nil && inner.Kind == TypeBuiltin {
			return joinTypeName(prefix+" "+inner.Builtin.String(), name)
		}
		if inner != nil && inner.Kind == TypeNamed {
			return joinTypeName(prefix+" "+inner.Name.String(), name)
		}
		return declarator(inner, prefix+" "+name)
	case TypePointer:
		inner := "*" + name
		if needsParens(t.Inner) {
			inner = "(" + inner + ")"
		}
		return declarator(t.Inner, inner)
	case TypeReference:
		inner := "&" + name
		if needsParens(t.Inner) {
			inner = "(" + inner + ")"
		}
		return declarator(t.Inner, inner)
	case TypeArray:
		length := "[]"
		if !t.ArrayUnknown {
			length = "[" + itoa(int64(t.ArrayLen)) + "]"
		}
		return declarator(t.Inner, name+length)
	case TypeFunction:
		return declarator(t.Return, name+"("+paramsString(t.Params)+")")
	default:
		return name
	}
}

func joinTypeName(typeText, name string) string {
	if name == "" {
		return typeText
	}
	return typeText + " " + name
}

// qualifierPrefix renders a Qualified type's CV-qualifiers in a single
// canonical order: `const` before `volatile`, matching standard C++
// declaration style and the order the qualifier bits are tested in
// (const is bit 0).
func qualifierPrefix(q Qualifier) string {
	var parts []string
	if q&QualConst != 0 {
		parts = append(parts, "const")
	}
	if q&QualVolatile != 0 {
		parts = append(parts, "volatile")
	}
	return strings.Join(parts, " ")
}

// needsParens reports whether a pointer/reference's inner type
// requires parenthesization around the `*`/`&` + name group to keep
// the declarator's precedence correct (binding `*name` to the array/
// function rather than to the element/return type).
func needsParens(inner *Type) bool {
	if inner == nil {
		return false
	}
	return inner.Kind == TypeArray || inner.Kind == TypeFunction
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
