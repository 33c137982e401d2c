package demangle

// operatorInfo describes one entry of the operator table: its
// canonical printable spelling and arity. Arity is informational only
// (prefix/postfix ++/-- and unary/binary +/- are not distinguished by
// the encoding); the printer always emits the canonical
// `operator<sym>` form regardless of arity.
type operatorInfo struct {
	symbol string
	arity  int // 1 = unary, 2 = binary, -1 = variable (new, new[], call)
}

// operatorTable is the static, exhaustive map of GNU v2 two-letter
// (and three-letter compound-assignment) operator codes to their
// printable C++ spelling.
var operatorTable = map[string]operatorInfo{
	// arithmetic
	"pl": {"+", 2},
	"mi": {"-", 2},
	"ml": {"*", 2},
	"dv": {"/", 2},
	"md": {"%", 2},
	"vc": {"[]", 2},
	"cl": {"()", -1},

	// assignment
	"aS":  {"=", 2},
	"apl": {"+=", 2},
	"ami": {"-=", 2},
	"amu": {"*=", 2},
	"adv": {"/=", 2},
	"amd": {"%=", 2},
	"aer": {"^=", 2},
	"aad": {"&=", 2},
	"aor": {"|=", 2},
	"als": {"<<=", 2},
	"ars": {">>=", 2},

	// comparison
	"eq": {"==", 2},
	"ne": {"!=", 2},
	"lt": {"<", 2},
	"gt": {">", 2},
	"le": {"<=", 2},
	"ge": {">=", 2},

	// logical / bitwise
	"aa": {"&&", 2},
	"oo": {"||", 2},
	"nt": {"!", 1},
	"co": {"~", 1},
	"an": {"&", 2},
	"or": {"|", 2},
	"er": {"^", 2},

	// shift
	"ls": {"<<", 2},
	"rs": {">>", 2},

	// increment / decrement
	"pp": {"++", 1},
	"mm": {"--", 1},

	// member access
	"rf": {"->", 1},
	"rm": {"->*", 2},
	"cm": {",", 2},

	// memory
	"nw": {"new", -1},
	"dl": {"delete", 1},
	"vn": {"new[]", -1},
	"vd": {"delete[]", 1},
}

// lookupOperator returns the operator table entry for a mangled
// operator code, if one exists. The "op" type-conversion
// operator is handled separately in symbol.go, since it isn't a fixed
// code but a code followed by a type encoding.
func lookupOperator(code string) (operatorInfo, bool) {
	info, ok := operatorTable[code]
	return info, ok
}

// operatorName renders a two-letter operator code's canonical
// identifier text, e.g. "pl" -> "operator+".
func operatorName(code string) (string, bool) {
	info, ok := lookupOperator(code)
	if !ok {
		return "", false
	}
	return "operator" + info.symbol, true
}
