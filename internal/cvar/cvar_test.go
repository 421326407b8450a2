package cvar

import (
	"errors"
	"math"
	"testing"
)

func mustSet(t *testing.T, c *Cvar, v any) {
	t.Helper()
	if err := c.Set(v); err != nil {
		t.Fatalf("Set(%v) error = %v", v, err)
	}
}

func TestCvar_FloatKind(t *testing.T) {
	t.Run("integer arguments", func(t *testing.T) {
		c := MustNew("f", Float, 1)
		if got := c.String(); got != "1" {
			t.Errorf("String() = %q, want %q", got, "1")
		}

		mustSet(t, &c, -100)
		if got := c.String(); got != "-100" {
			t.Errorf("String() = %q, want %q", got, "-100")
		}

		// There is no negative zero integer; it stores plain 0.
		mustSet(t, &c, -0)
		if got := c.String(); got != "0" {
			t.Errorf("String() = %q, want %q", got, "0")
		}
	})

	t.Run("string arguments", func(t *testing.T) {
		c := MustNew("f", Float, "1.2340000000")
		if got := c.String(); got != "1.234" {
			t.Errorf("String() = %q, want %q", got, "1.234")
		}

		mustSet(t, &c, "-3.14")
		if got := c.String(); got != "-3.14" {
			t.Errorf("String() = %q, want %q", got, "-3.14")
		}

		mustSet(t, &c, "-0")
		if got := c.String(); got != "-0" {
			t.Errorf("String() = %q, want %q", got, "-0")
		}
	})

	t.Run("float arguments", func(t *testing.T) {
		c := MustNew("f", Float, -1.0)
		if got := c.String(); got != "-1" {
			t.Errorf("String() = %q, want %q", got, "-1")
		}

		mustSet(t, &c, math.Copysign(0, -1))
		if got := c.String(); got != "-0" {
			t.Errorf("String() = %q, want %q", got, "-0")
		}
	})
}

func TestCvar_IntegerKind(t *testing.T) {
	t.Run("float arguments truncate", func(t *testing.T) {
		c := MustNew("i", Integer, -0.49999999)
		if got := c.String(); got != "0" {
			t.Errorf("String() = %q, want %q", got, "0")
		}

		mustSet(t, &c, 0.500)
		if got := c.String(); got != "0" {
			t.Errorf("String() = %q, want %q", got, "0")
		}

		mustSet(t, &c, -7.9)
		if got := c.String(); got != "-7" {
			t.Errorf("String() = %q, want %q", got, "-7")
		}
	})

	t.Run("integer arguments", func(t *testing.T) {
		c := MustNew("i", Integer, 1)
		if got := c.String(); got != "1" {
			t.Errorf("String() = %q, want %q", got, "1")
		}

		mustSet(t, &c, -100000)
		if got := c.String(); got != "-100000" {
			t.Errorf("String() = %q, want %q", got, "-100000")
		}
	})

	t.Run("string arguments", func(t *testing.T) {
		c := MustNew("i", Integer, "-1000")
		if got := c.String(); got != "-1000" {
			t.Errorf("String() = %q, want %q", got, "-1000")
		}

		mustSet(t, &c, "1.50000")
		if got := c.String(); got != "1" {
			t.Errorf("String() = %q, want %q", got, "1")
		}

		mustSet(t, &c, "-1.99999")
		if got := c.String(); got != "-1" {
			t.Errorf("String() = %q, want %q", got, "-1")
		}

		mustSet(t, &c, " 42 ")
		if got := c.String(); got != "42" {
			t.Errorf("String() = %q, want %q", got, "42")
		}
	})
}

func TestCvar_StringKind(t *testing.T) {
	t.Run("float arguments drop trailing zeros", func(t *testing.T) {
		c := MustNew("s", String, 50.5000)
		if got := c.String(); got != "50.5" {
			t.Errorf("String() = %q, want %q", got, "50.5")
		}

		tests := []struct {
			in   float64
			want string
		}{
			{3.141, "3.141"},
			{-2.71830000001, "-2.71830000001"},
			{math.Copysign(0, -1), "-0"},
			{1e21, "1000000000000000000000"},
		}
		for _, tt := range tests {
			mustSet(t, &c, tt.in)
			if got := c.String(); got != tt.want {
				t.Errorf("Set(%v): String() = %q, want %q", tt.in, got, tt.want)
			}
		}
	})

	t.Run("integer arguments", func(t *testing.T) {
		c := MustNew("s", String, 50)
		if got := c.String(); got != "50" {
			t.Errorf("String() = %q, want %q", got, "50")
		}

		for _, tt := range []struct {
			in   int
			want string
		}{
			{100, "100"},
			{-200, "-200"},
			{-0, "0"},
		} {
			mustSet(t, &c, tt.in)
			if got := c.String(); got != tt.want {
				t.Errorf("Set(%d): String() = %q, want %q", tt.in, got, tt.want)
			}
		}
	})

	t.Run("string arguments are verbatim", func(t *testing.T) {
		c := MustNew("s", String, "initial_value")
		if got := c.String(); got != "initial_value" {
			t.Errorf("String() = %q, want %q", got, "initial_value")
		}

		for _, in := range []string{"new_correct_value", "", "  padded  "} {
			mustSet(t, &c, in)
			if got := c.String(); got != in {
				t.Errorf("Set(%q): String() = %q", in, got)
			}
		}
	})
}

func TestCvar_ZeroValues(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Integer, "0"},
		{Float, "0"},
		{String, ""},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			c, err := New("v", tt.kind, nil)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := c.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCvar_SetIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		start any
		bad   any
	}{
		{"integer from word", Integer, 10, "invalid"},
		{"integer from empty", Integer, 10, ""},
		{"integer from NaN", Integer, 10, math.NaN()},
		{"integer from huge float", Integer, 10, 1e30},
		{"integer from huge uint", Integer, 10, uint64(math.MaxUint64)},
		{"integer from bool", Integer, 10, true},
		{"float from word", Float, 2.5, "abc"},
		{"float from inf string", Float, 2.5, "inf"},
		{"float from inf", Float, 2.5, math.Inf(1)},
		{"float from overflow string", Float, 2.5, "1e400"},
		{"string from slice", String, "keep", []string{"x"}},
		{"string from NaN", String, "keep", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := MustNew("v", tt.kind, tt.start)
			before := c.String()

			err := c.Set(tt.bad)
			if !errors.Is(err, ErrConversion) {
				t.Fatalf("Set(%v) error = %v, want ErrConversion", tt.bad, err)
			}
			if got := c.String(); got != before {
				t.Errorf("value changed to %q, want %q", got, before)
			}
		})
	}
}

func TestCvar_ConversionErrorDetails(t *testing.T) {
	c := MustNew("sv_cheats", Integer, 0)

	err := c.Set("abc")
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("error %v is not a *ConversionError", err)
	}
	if convErr.Name != "sv_cheats" || convErr.Kind != Integer || convErr.Value != "abc" {
		t.Errorf("ConversionError = %+v", convErr)
	}
}

func TestCvar_Float32KeepsDecimal(t *testing.T) {
	c := MustNew("volume", Float, float32(0.55))

	if got := c.String(); got != "0.55" {
		t.Errorf("String() = %q, want %q", got, "0.55")
	}
}

func TestCvar_Accessors(t *testing.T) {
	i := MustNew("i", Integer, 42)
	f := MustNew("f", Float, -2.75)
	s := MustNew("s", String, " 12.5 ")
	word := MustNew("w", String, "player")

	if i.Float() != 42 {
		t.Errorf("Integer.Float() = %v, want 42", i.Float())
	}
	if f.Int() != -2 {
		t.Errorf("Float.Int() = %d, want -2", f.Int())
	}
	if s.Int() != 12 || s.Float() != 12.5 {
		t.Errorf("String Int()/Float() = %d/%v, want 12/12.5", s.Int(), s.Float())
	}
	if word.Int() != 0 || word.Float() != 0 {
		t.Errorf("non-numeric String Int()/Float() = %d/%v, want 0/0", word.Int(), word.Float())
	}

	if got := As[int](i); got != 42 {
		t.Errorf("As[int] = %d, want 42", got)
	}
	if got := As[float32](f); got != -2.75 {
		t.Errorf("As[float32] = %v, want -2.75", got)
	}
	if got := As[string](f); got != "-2.75" {
		t.Errorf("As[string] = %q, want %q", got, "-2.75")
	}
	if got := As[uint8](i); got != 42 {
		t.Errorf("As[uint8] = %d, want 42", got)
	}

	if i.Value() != int64(42) || f.Value() != -2.75 || word.Value() != "player" {
		t.Errorf("Value() = %v, %v, %v", i.Value(), f.Value(), word.Value())
	}
}

func TestCvar_NameAndKindFixed(t *testing.T) {
	c := MustNew("name", String, "a")
	mustSet(t, &c, 5)

	if c.Name() != "name" {
		t.Errorf("Name() = %q", c.Name())
	}
	if c.Kind() != String {
		t.Errorf("Kind() = %v, want string", c.Kind())
	}
}

func TestNew_InvalidInitial(t *testing.T) {
	if _, err := New("i", Integer, "nope"); !errors.Is(err, ErrConversion) {
		t.Errorf("New() error = %v, want ErrConversion", err)
	}
	if _, err := New("x", Kind(9), nil); !errors.Is(err, ErrConversion) {
		t.Errorf("New(bad kind) error = %v, want ErrConversion", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"integer", Integer, false},
		{"INT", Integer, false},
		{"float", Float, false},
		{" number ", Float, false},
		{"string", String, false},
		{"bool", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnknownKind) {
			t.Errorf("ParseKind(%q) error = %v, want ErrUnknownKind", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefinition_Build(t *testing.T) {
	c, err := Definition{Name: "volume", Kind: Float, Default: 1.5}.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if c.Name() != "volume" || c.Float() != 1.5 {
		t.Errorf("Build() = %s=%s", c.Name(), c.String())
	}
}
