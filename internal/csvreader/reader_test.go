package csvreader

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseStringBasic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "simple rows",
			input: "a,b,c\nd,e,f\n",
			want:  [][]string{{"a", "b", "c"}, {"d", "e", "f"}},
		},
		{
			name:  "quoted cell with comma",
			input: "\"Kickoff, part 1\",John\n",
			want:  [][]string{{"Kickoff, part 1", "John"}},
		},
		{
			name:  "doubled quotes",
			input: "\"say \"\"hi\"\"\",x\n",
			want:  [][]string{{`say "hi"`, "x"}},
		},
		{
			name:  "embedded newline in quoted cell",
			input: "\"line1\nline2\",x\n",
			want:  [][]string{{"line1\nline2", "x"}},
		},
		{
			name:  "crlf endings",
			input: "a,b\r\nc,d\r\n",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "blank rows skipped",
			input: "a,b\n\n,,\nc,d\n",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "no trailing newline",
			input: "a,b\nc,d",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "empty cells preserved",
			input: "Kickoff Meeting,,John,Not Started,,\n",
			want:  [][]string{{"Kickoff Meeting", "", "John", "Not Started", "", ""}},
		},
		{
			name:  "stray quote mid-cell kept",
			input: "it's a 5\" part,x\n",
			want:  [][]string{{`it's a 5" part`, "x"}},
		},
	}

	for _, tt := range tests {
		rows, err := ParseString(tt.input)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		var got [][]string
		for _, r := range rows {
			got = append(got, r.Fields)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseNoData(t *testing.T) {
	for _, input := range []string{"", "\n\n", ",,\n,,\n", "   \n"} {
		_, err := ParseString(input)
		if !errors.Is(err, ErrNoData) {
			t.Errorf("ParseString(%q) error = %v, want ErrNoData", input, err)
		}
	}
}

func TestParseReader(t *testing.T) {
	rows, err := Parse(strings.NewReader("a,b\nc,d\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].Line != 2 {
		t.Errorf("second row line = %d, want 2", rows[1].Line)
	}
}

func TestRowHelpers(t *testing.T) {
	row := Row{Fields: []string{" a ", "", "b"}}
	if row.IsBlank() {
		t.Error("IsBlank() = true for non-blank row")
	}
	if got := row.Field(0); got != "a" {
		t.Errorf("Field(0) = %q, want %q", got, "a")
	}
	if got := row.Field(5); got != "" {
		t.Errorf("Field(5) = %q, want empty", got)
	}
}

func TestUnterminatedQuote(t *testing.T) {
	rows, err := ParseString("\"unclosed,cell\n")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Fields[0] != "unclosed,cell\n" {
		t.Errorf("got %q", rows[0].Fields[0])
	}
}
