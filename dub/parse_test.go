package dub

import (
	"reflect"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	type test struct {
		input string
		want  Command
	}
	tests := []test{
		{
			input: "on A#4",
			want: Command{
				Name: Identifier("on"),
				Args: []Node{Identifier("A#4")},
			},
		},
		{
			input: "off",
			want:  Command{Name: Identifier("off")},
		},
		{
			input: "set volume 50",
			want: Command{
				Name: Identifier("set"),
				Args: []Node{Identifier("volume"), Int(50)},
			},
		},
		{
			input: "set octave 4.0",
			want: Command{
				Name: Identifier("set"),
				Args: []Node{Identifier("octave"), Float(4)},
			},
		},
		{
			input: "buffer 300ms",
			want: Command{
				Name: Identifier("buffer"),
				Args: []Node{Duration(300 * time.Millisecond)},
			},
		},
		{
			input: `device "Built-in Output"`,
			want: Command{
				Name: Identifier("device"),
				Args: []Node{String("Built-in Output")},
			},
		},
		{
			input: `device ""`,
			want: Command{
				Name: Identifier("device"),
				Args: []Node{String("")},
			},
		},
	}
	for _, test := range tests {
		t.Log(test.input)
		got, err := Parse(test.input)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(test.want, got) {
			t.Errorf("\nwant: %+v\ngot:  %+v", test.want, got)
		}
	}
}

func TestParseLine(t *testing.T) {
	cmds, err := ParseLine("on C4; ; off ;")
	if err != nil {
		t.Fatal(err)
	}
	want := []Command{
		{Name: Identifier("on"), Args: []Node{Identifier("C4")}},
		{Name: Identifier("off")},
	}
	if !reflect.DeepEqual(want, cmds) {
		t.Errorf("\nwant: %+v\ngot:  %+v", want, cmds)
	}

	cmds, err = ParseLine("   ")
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 0, len(cmds); want != got {
		t.Errorf("want %v commands, got %v", want, got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"1 2",
		`"on"`,
		"buffer 3xs",
		"on A4; off",
	} {
		if _, err := Parse(input); err == nil {
			t.Errorf("expected error for input: %q", input)
		}
	}
}

func TestTypeName(t *testing.T) {
	if want, got := "duration", TypeName(Duration(time.Second)); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
	if want, got := "identifier", TypeName(Identifier("x")); want != got {
		t.Errorf("want %v, got %v", want, got)
	}
}
