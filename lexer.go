package simplehttp

// lexState is the sole mutable context threaded through every parser in
// this package: an index into the line being parsed, plus a sticky
// malformed flag. Once isMalformed is set the whole line is rejected even
// if a later sub-parser would otherwise succeed.
type lexState struct {
	index       int
	isMalformed bool
}

// parseSymbol is a single-byte convenience wrapper over parseLiteral.
func parseSymbol(symbol byte, line []byte, state *lexState) bool {
	return parseLiteral([]byte{symbol}, line, state)
}

// parseLiteral attempts a case-insensitive match of literal starting at
// state.index. On a full match it advances state.index past the match and
// returns true. On a partial match (some but not all bytes matched) it
// sets state.isMalformed and returns false. On a zero-length match it
// leaves state untouched and returns false.
func parseLiteral(literal, line []byte, state *lexState) bool {
	start := state.index
	index := state.index

	for index < len(line) && index-start < len(literal) &&
		toLower(literal[index-start]) == toLower(line[index]) {
		index++
	}

	state.index = index

	if index-start != len(literal) {
		if index-start != 0 {
			state.isMalformed = true
		}
		return false
	}

	return true
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

const (
	sp = ' '
	ht = '\t'
)

// isChar reports whether symbol falls within the RFC 2616 CHAR range
// (US-ASCII, 0-127).
func isChar(symbol byte) bool {
	return symbol <= 127
}

func isDigit(symbol byte) bool {
	return symbol >= '0' && symbol <= '9'
}

// isCTL reports whether symbol is a control character per RFC 2616.
func isCTL(symbol byte) bool {
	return symbol <= 31 || symbol == 127
}

// tspecials per RFC 2616: the characters a token may never contain.
var tspecialsTable = [256]bool{
	'(': true, ')': true, '<': true, '>': true, '@': true, ',': true,
	';': true, ':': true, '\\': true, '"': true, '/': true, '[': true,
	']': true, '?': true, '=': true, '{': true, '}': true, sp: true, ht: true,
}

func isTspecials(symbol byte) bool {
	return tspecialsTable[symbol]
}

// skipSpaces advances past a run of literal SP bytes.
func skipSpaces(line []byte, state *lexState) {
	for state.index < len(line) && line[state.index] == sp {
		state.index++
	}
}

// skipWhiteSpaces advances past a run of SP or HT bytes (LWS, no folding).
func skipWhiteSpaces(line []byte, state *lexState) {
	for state.index < len(line) && (line[state.index] == sp || line[state.index] == ht) {
		state.index++
	}
}

// parseToken consumes a run of RFC 2616 token characters: CHAR, excluding
// CTL and tspecials.
func parseToken(line []byte, state *lexState) ([]byte, bool) {
	start := state.index
	index := state.index

	for index < len(line) && isChar(line[index]) && !isCTL(line[index]) && !isTspecials(line[index]) {
		index++
	}

	state.index = index

	if index == start {
		return nil, false
	}

	return line[start:index], true
}

// parseNumber consumes a run of DIGIT bytes and normalizes leading zeros:
// "00" and "01" both collapse so that "HTTP/01.01" parses identically to
// "HTTP/1.1". If the run contains any non-zero digit, the returned slice
// starts at the first non-zero digit; otherwise it is the single trailing
// zero.
func parseNumber(line []byte, state *lexState) ([]byte, bool) {
	start := state.index
	index := state.index
	firstNonZero := -1

	for index < len(line) && isDigit(line[index]) {
		if line[index] != '0' && firstNonZero == -1 {
			firstNonZero = index
		}
		index++
	}

	state.index = index

	if index == start {
		return nil, false
	}

	if firstNonZero == -1 {
		last := index - 1
		return line[last : last+1], true
	}

	return line[firstNonZero:index], true
}
