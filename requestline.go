package simplehttp

// requestVersion is the parsed "HTTP/<major>.<minor>" token, with leading
// zeros already normalized away (see parseNumber).
type requestVersion struct {
	major []byte
	minor []byte
}

// requestLine is the result of parsing one HTTP/0.9, 1.0 or 1.1 request
// line. version is nil for HTTP/0.9 (no version token on the wire).
type requestLine struct {
	method  []byte
	uri     []byte
	version *requestVersion
}

// parseRequestLine parses:
//
//	request-line = method 1*SP uri [ 1*SP version ] *SP
//
// per spec.md §4.5. All returned slices alias line and are only valid
// until line's backing array is reused by the reader.
func parseRequestLine(line []byte) (requestLine, error) {
	var result requestLine
	var state lexState

	method, ok := parseToken(line, &state)
	if !ok {
		return result, ErrMalformedMethod
	}
	result.method = method

	if !parseSymbol(sp, line, &state) {
		return result, ErrMalformedLine
	}
	skipSpaces(line, &state)

	uri, ok := parseRequestURIToken(line, &state)
	if !ok {
		return result, ErrMalformedURI
	}
	result.uri = uri

	if state.index == len(line) {
		return result, nil
	}

	if !parseSymbol(sp, line, &state) {
		return result, ErrMalformedLine
	}
	skipSpaces(line, &state)

	if state.index == len(line) {
		return result, nil
	}

	version, ok := parseVersion(line, &state)
	if !ok {
		return result, ErrMalformedVersion
	}
	result.version = &version

	skipSpaces(line, &state)
	if state.index != len(line) {
		return result, ErrMalformedLine
	}

	return result, nil
}

// parseRequestURIToken extracts the raw request-URI token from a request
// line: either "/" ... or "http://" ..., up to the next SP or end of line.
// The tolerant grammar validation (abs-path vs absolute-URI) happens later
// in uri.go; this only bounds the token.
func parseRequestURIToken(line []byte, state *lexState) ([]byte, bool) {
	start := state.index

	if !parseSymbol('/', line, state) && !parseLiteral([]byte("http://"), line, state) {
		return nil, false
	}

	for state.index < len(line) && line[state.index] != sp {
		state.index++
	}

	return line[start:state.index], true
}

// parseVersion parses "HTTP/" number "." number.
func parseVersion(line []byte, state *lexState) (requestVersion, bool) {
	var version requestVersion

	if !parseLiteral([]byte("HTTP/"), line, state) {
		return version, false
	}

	major, ok := parseNumber(line, state)
	if !ok {
		state.isMalformed = true
		return version, false
	}
	version.major = major

	if !parseSymbol('.', line, state) {
		state.isMalformed = true
		return version, false
	}

	minor, ok := parseNumber(line, state)
	if !ok {
		state.isMalformed = true
		return version, false
	}
	version.minor = minor

	return version, true
}
