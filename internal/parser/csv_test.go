package parser_test

import (
	"testing"

	"github.com/g5becks/eqrender/internal/equation"
	"github.com/g5becks/eqrender/internal/parser"
)

type wantEquation struct {
	active bool
	name   string
	body   string
}

func assertEquations(t *testing.T, got []equation.Equation, want []wantEquation) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got %d equations, want %d: %v", len(got), len(want), got)
	}

	for i, w := range want {
		if got[i].Active() != w.active {
			t.Errorf("equation[%d].Active() = %v, want %v", i, got[i].Active(), w.active)
		}
		if got[i].Name() != w.name {
			t.Errorf("equation[%d].Name() = %q, want %q", i, got[i].Name(), w.name)
		}
		if got[i].Body() != w.body {
			t.Errorf("equation[%d].Body() = %q, want %q", i, got[i].Body(), w.body)
		}
	}
}

func TestCSVParser_CanParse(t *testing.T) {
	p := parser.NewCSVParser()

	tests := []struct {
		path string
		want bool
	}{
		{"equations.csv", true},
		{"EQUATIONS.CSV", true},
		{"notes.md", false},
		{"table.tsv", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := p.CanParse(tt.path); got != tt.want {
				t.Errorf("CanParse(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestCSVParser_Parse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []wantEquation
	}{
		{
			name:    "header skipped and fields trimmed",
			content: "active,equation,name\n yes , x^2 , square \n",
			want: []wantEquation{
				{true, "square", "x^2"},
			},
		},
		{
			name:    "active is case insensitive",
			content: "a,b,c\nYES,x,upper\nYes,y,title\nno,z,off\nmaybe,w,other\n",
			want: []wantEquation{
				{true, "upper", "x"},
				{true, "title", "y"},
				{false, "off", "z"},
				{false, "other", "w"},
			},
		},
		{
			name:    "short rows dropped",
			content: "a,b,c\nyes,x^2\nyes,y,kept\nyes\n",
			want: []wantEquation{
				{true, "kept", "y"},
			},
		},
		{
			name:    "extra fields ignored",
			content: "a,b,c,d\nyes,x,name,ignored,also ignored\n",
			want: []wantEquation{
				{true, "name", "x"},
			},
		},
		{
			name:    "repeated names suffixed per base",
			content: "a,b,c\nyes,1,alpha\nyes,2,beta\nyes,3,alpha\nno,4,alpha\n",
			want: []wantEquation{
				{true, "alpha", "1"},
				{true, "beta", "2"},
				{true, "alpha_1", "3"},
				{false, "alpha_2", "4"},
			},
		},
		{
			name:    "blank name uses fallback",
			content: "a,b,c\nyes,x,\nyes,y,  \n",
			want: []wantEquation{
				{true, "default_equation", "x"},
				{true, "default_equation_1", "y"},
			},
		},
		{
			name:    "repeated raw names sanitized and suffixed",
			content: "a,b,c\nyes,x,my eq\nyes,y,my eq\n",
			want: []wantEquation{
				{true, "my_eq", "x"},
				{true, "my_eq_1", "y"},
			},
		},
		{
			name:    "names colliding after sanitization stay unique",
			content: "a,b,c\nyes,1,???\nyes,2,\nyes,3,a b\nyes,4,a_b\n",
			want: []wantEquation{
				{true, "default_equation", "1"},
				{true, "default_equation_1", "2"},
				{true, "a_b", "3"},
				{true, "a_b_1", "4"},
			},
		},
		{
			name:    "quoted body may contain commas",
			content: "a,b,c\nyes,\"\\frac{a,b}{c}\",frac\n",
			want: []wantEquation{
				{true, "frac", `\frac{a,b}{c}`},
			},
		},
		{
			name:    "header only",
			content: "active,equation,name\n",
			want:    nil,
		},
		{
			name:    "empty input",
			content: "",
			want:    nil,
		},
		{
			name:    "bom and crlf",
			content: "\xEF\xBB\xBFa,b,c\r\nyes,x,win\r\n",
			want: []wantEquation{
				{true, "win", "x"},
			},
		},
	}

	p := parser.NewCSVParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse("test.csv", []byte(tt.content))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			assertEquations(t, got, tt.want)
		})
	}
}

func TestCSVParser_DifferentNameDoesNotConsumeCounter(t *testing.T) {
	content := "a,b,c\nyes,1,alpha\nyes,2,gamma\nyes,3,alpha\nyes,4,alpha\n"

	got, err := parser.NewCSVParser().Parse("test.csv", []byte(content))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	names := []string{got[0].Name(), got[1].Name(), got[2].Name(), got[3].Name()}
	want := []string{"alpha", "gamma", "alpha_1", "alpha_2"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
