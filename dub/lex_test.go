package dub

import "testing"

func TestLexer(t *testing.T) {
	type test struct {
		input  string
		expect []token
	}
	tests := []test{
		{
			input: "on C#4",
			expect: []token{
				token{typ: typeIdentifier, text: "on"},
				token{typ: typeIdentifier, text: "C#4"},
				token{typ: typeEOF},
			},
		},
		{
			input: "set buffer-time 300",
			expect: []token{
				token{typ: typeIdentifier, text: "set"},
				token{typ: typeIdentifier, text: "buffer-time"},
				token{typ: typeInt, text: "300"},
				token{typ: typeEOF},
			},
		},
		{
			input: "on A4;off",
			expect: []token{
				token{typ: typeIdentifier, text: "on"},
				token{typ: typeIdentifier, text: "A4"},
				token{typ: typeSemicolon, text: ";"},
				token{typ: typeIdentifier, text: "off"},
				token{typ: typeEOF},
			},
		},
		{
			input: "1.0",
			expect: []token{
				token{typ: typeFloat, text: "1.0"},
				token{typ: typeEOF},
			},
		},
		{
			input: "-1.",
			expect: []token{
				token{typ: typeFloat, text: "-1."},
				token{typ: typeEOF},
			},
		},
		{
			input: "-.1",
			expect: []token{
				token{typ: typeFloat, text: "-.1"},
				token{typ: typeEOF},
			},
		},
		{
			input: "octave -2",
			expect: []token{
				token{typ: typeIdentifier, text: "octave"},
				token{typ: typeInt, text: "-2"},
				token{typ: typeEOF},
			},
		},
		{
			input: "buffer 250ms\t1.5s",
			expect: []token{
				token{typ: typeIdentifier, text: "buffer"},
				token{typ: typeDuration, text: "250ms"},
				token{typ: typeDuration, text: "1.5s"},
				token{typ: typeEOF},
			},
		},
		{
			input: `device "this is a string" 1`,
			expect: []token{
				token{typ: typeIdentifier, text: "device"},
				token{typ: typeString, text: `"this is a string"`},
				token{typ: typeInt, text: "1"},
				token{typ: typeEOF},
			},
		},
	}
	for _, test := range tests {
		t.Log(test.input)
		tokens, err := lex(test.input)
		if err != nil {
			t.Errorf("unexpected lex error: %v", err)
			continue
		}
		if len(tokens) != len(test.expect) {
			t.Fatalf("token mismatch: \nwant: %+v, \ngot:  %+v", test.expect, tokens)
		}
		for i, got := range tokens {
			want := test.expect[i]
			if want.typ != got.typ {
				t.Errorf("wrong type: want %v, got %v", want, got)
			}
			if want.text != got.text {
				t.Errorf("wrong text: want %v, got %v", want, got)
			}
		}
	}
}

func TestLexerErrors(t *testing.T) {
	for _, input := range []string{
		"a -",
		"a .-",
		"a 1x!",
		"a$",
		`device "unterminated`,
		"on A4,",
	} {
		_, err := lex(input)
		if err == nil {
			t.Errorf("expected error for input: %q", input)
		}
	}
}
