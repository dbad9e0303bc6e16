package simplehttp

import "testing"

func TestParseLiteralCaseInsensitive(t *testing.T) {
	tests := []struct {
		literal string
		line    string
		want    bool
		wantIdx int
	}{
		{"GET", "GET /", true, 3},
		{"GET", "get /", true, 3},
		{"HTTP/", "HTTP/1.1", true, 5},
		{"HTTP/", "http/1.1", true, 5},
		{"GET", "POST /", false, 0},
		{"HTTP/", "HTT", false, 3},
	}

	for _, tt := range tests {
		state := lexState{}
		got := parseLiteral([]byte(tt.literal), []byte(tt.line), &state)
		if got != tt.want {
			t.Errorf("parseLiteral(%q, %q) = %v, want %v", tt.literal, tt.line, got, tt.want)
		}
		if state.index != tt.wantIdx {
			t.Errorf("parseLiteral(%q, %q) index = %d, want %d", tt.literal, tt.line, state.index, tt.wantIdx)
		}
	}
}

func TestParseLiteralPartialMatchMarksMalformed(t *testing.T) {
	state := lexState{}
	if parseLiteral([]byte("HTTP/"), []byte("HTX/"), &state) {
		t.Fatal("expected partial match to fail")
	}
	if !state.isMalformed {
		t.Fatal("expected isMalformed to be set on a partial match")
	}
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"Content-Length: 5", "Content-Length", true},
		{"GET /", "GET", true},
		{"(bad)", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		state := lexState{}
		got, ok := parseToken([]byte(tt.line), &state)
		if ok != tt.ok {
			t.Errorf("parseToken(%q) ok = %v, want %v", tt.line, ok, tt.ok)
		}
		if ok && string(got) != tt.want {
			t.Errorf("parseToken(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestParseNumberNormalizesLeadingZeros(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"1.1", "1"},
		{"01.1", "1"},
		{"00.1", "0"},
		{"123", "123"},
		{"007", "7"},
	}

	for _, tt := range tests {
		state := lexState{}
		got, ok := parseNumber([]byte(tt.line), &state)
		if !ok {
			t.Fatalf("parseNumber(%q): unexpected failure", tt.line)
		}
		if string(got) != tt.want {
			t.Errorf("parseNumber(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestParseNumberRejectsNonDigit(t *testing.T) {
	state := lexState{}
	if _, ok := parseNumber([]byte("abc"), &state); ok {
		t.Fatal("expected parseNumber to reject a non-digit run")
	}
}

func TestSkipWhiteSpaces(t *testing.T) {
	line := []byte("  \t value")
	state := lexState{}
	skipWhiteSpaces(line, &state)
	if state.index != 4 {
		t.Fatalf("skipWhiteSpaces left index at %d, want 4", state.index)
	}
}

func TestIsCTL(t *testing.T) {
	if !isCTL(0x00) || !isCTL(0x1f) || !isCTL(0x7f) {
		t.Fatal("expected control bytes to be classified as CTL")
	}
	if isCTL('a') || isCTL(' ') {
		t.Fatal("did not expect printable bytes to be classified as CTL")
	}
}
