package demangle

import (
	"bytes"
	"strings"
)

// Parse is the top-level entry point: classify the symbol by special
// prefix or by the leftmost valid "__" split, invoke the name/type
// parsers, and assemble a CxxSymbol. Any residual bytes left over
// after a would-be-successful parse is a hard failure
// (ErrTrailingGarbage) rather than silently accepted.
func Parse(input []byte) (*CxxSymbol, error) {
	if sym, handled, err := parseSpecialPrefix(input); handled {
		return sym, err
	}
	return parseFunctionOrData(input)
}

// isNameStart reports whether b can begin a name production: a digit
// (length-prefixed identifier), `Q` (qualified name), `K` (squangled
// back-reference), `t` (templated identifier), or `F` (explicit
// parameter-list marker for a scopeless signature).
func isNameStart(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b == 'Q', b == 'K', b == 't', b == 'F':
		return true
	default:
		return false
	}
}

// findSplit scans for the leftmost "__" that is followed by a valid
// name-start character. Occurrences of "__" not followed by a
// name-start byte are literal text inside the base identifier and are
// skipped rather than rejected outright.
func findSplit(input []byte) (int, bool) {
	for i := 0; i+1 < len(input); i++ {
		if input[i] == '_' && input[i+1] == '_' && i+2 < len(input) && isNameStart(input[i+2]) {
			return i, true
		}
	}
	return 0, false
}

// parseSpecialPrefix checks input against the reserved special-prefix
// table, longest/most-specific form first within each family. handled
// is false when no special prefix matches, signaling the caller to
// fall through to ordinary "__"-split parsing.
func parseSpecialPrefix(input []byte) (sym *CxxSymbol, handled bool, err error) {
	switch {
	case bytes.HasPrefix(input, []byte("_vt$")):
		sym, err = parseVTable(input[len("_vt$"):])
		return sym, true, err
	case bytes.HasPrefix(input, []byte("_vt.")):
		sym, err = parseVTable(input[len("_vt."):])
		return sym, true, err
	case bytes.HasPrefix(input, []byte("__vt_")):
		sym, err = parseVTable(input[len("__vt_"):])
		return sym, true, err
	case bytes.HasPrefix(input, []byte("_GLOBAL_$I$")):
		sym, err = parseGlobalKey(input[len("_GLOBAL_$I$"):], SymbolGlobalCtorKey)
		return sym, true, err
	case bytes.HasPrefix(input, []byte("_GLOBAL_.I.")):
		sym, err = parseGlobalKey(input[len("_GLOBAL_.I."):], SymbolGlobalCtorKey)
		return sym, true, err
	case bytes.HasPrefix(input, []byte("_GLOBAL_$D$")):
		sym, err = parseGlobalKey(input[len("_GLOBAL_$D$"):], SymbolGlobalDtorKey)
		return sym, true, err
	case bytes.HasPrefix(input, []byte("_GLOBAL_.D.")):
		sym, err = parseGlobalKey(input[len("_GLOBAL_.D."):], SymbolGlobalDtorKey)
		return sym, true, err
	case bytes.HasPrefix(input, []byte("__$_")):
		sym, err = parseDestructor(input[len("__$_"):])
		return sym, true, err
	case bytes.HasPrefix(input, []byte("_$_")):
		sym, err = parseDestructor(input[len("_$_"):])
		return sym, true, err
	case bytes.HasPrefix(input, []byte("__thunk_")):
		sym, err = parseThunk(input[len("__thunk_"):])
		return sym, true, err
	case bytes.HasPrefix(input, []byte("__tf")):
		sym, err = parseTypeinfo(input[len("__tf"):], SymbolTypeinfoFn)
		return sym, true, err
	case bytes.HasPrefix(input, []byte("__ti")):
		sym, err = parseTypeinfo(input[len("__ti"):], SymbolTypeinfoNode)
		return sym, true, err
	default:
		return nil, false, nil
	}
}

// parseScopeName decodes either a `Q`-qualified name or a plain
// (optionally `$`-joined, for the historical multiple-inheritance
// vtable form) sequence of length-prefixed identifiers, stopping at the
// first byte after the last identifier that is not a `$`; any bytes
// left after that are for the caller to handle. st is the
// caller's live back-reference table, passed through to the
// `Q`-qualified case rather than allocated fresh here.
func parseScopeName(c *cursor, st *parseState) (*Name, error) {
	b, ok := c.peek()
	if !ok {
		return nil, newError(ErrUnexpectedEnd, "expected a scope name", c.position())
	}
	if b == 'Q' {
		return parseQualifiedName(c, st)
	}
	ident, err := c.takeLengthPrefixedIdentifier()
	if err != nil {
		return nil, err
	}
	segs := []NameSegment{{Identifier: string(ident)}}
	for {
		b, ok := c.peek()
		if !ok || b != '$' {
			break
		}
		c.take()
		next, err := c.takeLengthPrefixedIdentifier()
		if err != nil {
			return nil, err
		}
		segs = append(segs, NameSegment{Identifier: string(next)})
	}
	return &Name{Segments: segs}, nil
}

func requireExhausted(c *cursor) error {
	if !c.atEnd() {
		return newError(ErrTrailingGarbage, "unparsed bytes remain", c.position())
	}
	return nil
}

func parseVTable(rem []byte) (*CxxSymbol, error) {
	c := newCursor(rem)
	st := &parseState{}
	name, err := parseScopeName(c, st)
	if err != nil {
		return nil, err
	}
	if err := requireExhausted(c); err != nil {
		return nil, err
	}
	return &CxxSymbol{Kind: SymbolVTable, Name: name, Type: &Type{Kind: TypeNamed, Name: name}}, nil
}

func parseGlobalKey(rem []byte, kind SymbolKind) (*CxxSymbol, error) {
	inner, err := Parse(rem)
	if err != nil {
		return nil, err
	}
	return &CxxSymbol{Kind: kind, Inner: inner}, nil
}

func parseDestructor(rem []byte) (*CxxSymbol, error) {
	c := newCursor(rem)
	st := &parseState{}
	scope, err := parseScopeName(c, st)
	if err != nil {
		return nil, err
	}
	if err := requireExhausted(c); err != nil {
		return nil, err
	}
	segs := append(append([]NameSegment{}, scope.Segments...), NameSegment{Identifier: ""})
	return &CxxSymbol{
		Kind:         SymbolFunction,
		Name:         &Name{Segments: segs},
		Type:         &Type{Kind: TypeFunction},
		SpecialFlags: FlagIsDestructor,
	}, nil
}

// parseThunk decodes "<delta>_<wrapped symbol>" where delta is a
// decimal magnitude optionally preceded by "n" for negative — distinct
// from template value literals, which use a leading "m" for the same
// purpose.
func parseThunk(rem []byte) (*CxxSymbol, error) {
	c := newCursor(rem)
	negative := false
	if b, ok := c.peek(); ok && b == 'n' {
		negative = true
		c.take()
	}
	delta, err := c.takeDigits()
	if err != nil {
		return nil, err
	}
	if err := c.expect('_'); err != nil {
		return nil, err
	}
	wrapped := rem[c.position():]
	inner, err := Parse(wrapped)
	if err != nil {
		return nil, err
	}
	if negative {
		delta = -delta
	}
	return &CxxSymbol{
		Kind:         SymbolVThunk,
		ThunkDelta:   delta,
		Inner:        inner,
		SpecialFlags: FlagIsVirtualThunk,
	}, nil
}

func parseTypeinfo(rem []byte, kind SymbolKind) (*CxxSymbol, error) {
	c := newCursor(rem)
	st := &parseState{}
	t, err := parseType(c, st)
	if err != nil {
		return nil, err
	}
	if err := requireExhausted(c); err != nil {
		return nil, err
	}
	var name *Name
	if t.Kind == TypeNamed {
		name = t.Name
	}
	return &CxxSymbol{Kind: kind, Name: name, Type: t}, nil
}

// parseConstructorScope decodes the class scope of a constructor
// symbol: a `Q`-qualified name, or a single length-prefixed class
// identifier optionally followed by the same identifier repeated (the
// historical encoding's redundant "class name repeated" form). The
// repeat, when present, is consumed and discarded; its absence is not
// an error, since the `Q`-qualified form never has one. st is the
// caller's live back-reference table, threaded through to the
// `Q`-qualified case.
func parseConstructorScope(c *cursor, st *parseState) (*Name, error) {
	b, ok := c.peek()
	if !ok {
		return nil, newError(ErrUnexpectedEnd, "expected constructor class scope", c.position())
	}
	if b == 'Q' {
		return parseQualifiedName(c, st)
	}
	ident, err := c.takeLengthPrefixedIdentifier()
	if err != nil {
		return nil, err
	}
	save := c.pos
	if repeat, rerr := c.takeLengthPrefixedIdentifier(); rerr != nil || string(repeat) != string(ident) {
		c.pos = save
	}
	return &Name{Segments: []NameSegment{{Identifier: string(ident)}}}, nil
}

// parseTemplateFnArgs decodes the `H`-prefixed explicit template
// argument list that can precede a template function's signature, by
// reusing the templated-identifier argument grammar (an arg-count
// digit followed by that many type/value arguments). See DESIGN.md
// for why this grammar was chosen for an otherwise under-specified
// production.
func parseTemplateFnArgs(c *cursor) ([]TemplateArg, error) {
	countByte, err := c.take()
	if err != nil {
		return nil, err
	}
	if countByte < '0' || countByte > '9' {
		return nil, newError(ErrExpectedDigits, "expected a template argument count digit", c.position()-1)
	}
	argCount := int(countByte - '0')
	st := &parseState{}
	args := make([]TemplateArg, argCount)
	for i := 0; i < argCount; i++ {
		arg, err := parseTemplateArg(c, st)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

// parseFunctionOrData finds the "__" split, classifies the base
// identifier, parses the post-split scope/qualifiers/signature, and
// assembles the resulting CxxSymbol. When no valid split exists, the
// whole input is instead handed to parseDataSymbol.
func parseFunctionOrData(input []byte) (*CxxSymbol, error) {
	idx, ok := findSplit(input)
	if !ok {
		return parseDataSymbol(input)
	}
	base := input[:idx]
	rem := input[idx+2:]
	trimmed := strings.TrimLeft(string(base), "_")

	c := newCursor(rem)
	st := &parseState{}

	isCtor := trimmed == ""

	var scope *Name
	var err error
	if isCtor {
		scope, err = parseConstructorScope(c, st)
		if err != nil {
			return nil, err
		}
	} else if b, ok := c.peek(); ok && b != 'F' {
		switch {
		case b == 'Q':
			scope, err = parseQualifiedName(c, st)
		case b >= '0' && b <= '9':
			var ident []byte
			ident, err = c.takeLengthPrefixedIdentifier()
			if err == nil {
				scope = &Name{Segments: []NameSegment{{Identifier: string(ident)}}}
			}
		}
		if err != nil {
			return nil, err
		}
	}

	var quals Qualifier
qualLoop:
	for {
		b, ok := c.peek()
		if !ok {
			break
		}
		switch b {
		case 'C':
			quals |= QualConst
			c.take()
		case 'V':
			quals |= QualVolatile
			c.take()
		default:
			break qualLoop
		}
	}

	var convType *Type
	var plainName string
	isConversion := false
	if !isCtor {
		switch {
		case strings.HasPrefix(trimmed, "op") && len(trimmed) > 2:
			tc := newCursor([]byte(trimmed[2:]))
			tst := &parseState{}
			t, terr := parseType(tc, tst)
			if terr != nil {
				return nil, terr
			}
			if err := requireExhausted(tc); err != nil {
				return nil, err
			}
			convType = t
			isConversion = true
		default:
			if nm, ok := operatorName(trimmed); ok {
				plainName = nm
			} else {
				plainName = trimmed
			}
		}
	}

	hadTemplateArgs := false
	if b, ok := c.peek(); ok && b == 'H' {
		hadTemplateArgs = true
		c.take()
		if _, err := parseTemplateFnArgs(c); err != nil {
			return nil, err
		}
	}

	if b, ok := c.peek(); ok && b == 'F' {
		c.take()
	}

	var params []*Type
	var ret *Type
	if hadTemplateArgs {
		// Template functions always encode an explicit return type,
		// using the same `<params>_<return>` convention as a nested
		// function-type encoding.
		params, err = collectParams(c, st, true, '_')
		if err != nil {
			return nil, err
		}
		ret, err = parseType(c, st)
		if err != nil {
			return nil, err
		}
	} else {
		params, err = collectParams(c, st, true, 0)
		if err != nil {
			return nil, err
		}
	}

	if err := requireExhausted(c); err != nil {
		return nil, err
	}

	var segs []NameSegment
	if scope != nil {
		segs = append(segs, scope.Segments...)
	}

	var flags SpecialFlags
	switch {
	case isCtor:
		segs = append(segs, NameSegment{Identifier: ""})
		flags |= FlagIsConstructor
	case isConversion:
		segs = append(segs, NameSegment{Identifier: ""})
	default:
		segs = append(segs, NameSegment{Identifier: plainName})
	}
	if quals&QualConst != 0 {
		flags |= FlagIsConstMemberFn
	}
	if quals&QualVolatile != 0 {
		flags |= FlagIsVolatileMemberFn
	}

	return &CxxSymbol{
		Kind:           SymbolFunction,
		Name:           &Name{Segments: segs},
		Type:           &Type{Kind: TypeFunction, Params: params, Return: ret},
		SpecialFlags:   flags,
		ConversionType: convType,
	}, nil
}

// parseDataSymbol handles the fallthrough case: a name with no valid
// "__" split, parsed as a (possibly qualified) data symbol name
// followed by an optional declared type.
func parseDataSymbol(input []byte) (*CxxSymbol, error) {
	c := newCursor(input)
	st := &parseState{}
	name, err := parseScopeName(c, st)
	if err != nil {
		return nil, err
	}
	var t *Type
	if !c.atEnd() {
		t, err = parseType(c, st)
		if err != nil {
			return nil, err
		}
	}
	if err := requireExhausted(c); err != nil {
		return nil, err
	}
	return &CxxSymbol{Kind: SymbolData, Name: name, Type: t}, nil
}
