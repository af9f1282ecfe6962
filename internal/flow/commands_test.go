package flow

import (
	"errors"
	"testing"

	"github.com/finsalud/finbot/internal/models"
)

func TestDetectCommand(t *testing.T) {
	cases := []struct {
		text    string
		want    models.Command
		matched bool
	}{
		{"ayuda", models.CommandHelp, true},
		{"?", models.CommandHelp, true},
		{"¿qué puedes hacer?", models.CommandHelp, true},
		{"nueva empresa", models.CommandNewCompany, true},
		{"nueva empresa.", models.CommandNewCompany, true},
		{"registrar empresa", models.CommandNewCompany, true},
		{"listar", models.CommandList, true},
		{"lista.", models.CommandList, true},
		{"ver empresas", models.CommandList, true},
		{"buscar", models.CommandSearch, true},
		{"buscar tecnología", models.CommandSearch, true},
		{"analizar", models.CommandAnalyze, true},
		{"analizar Empresa ABC", models.CommandAnalyze, true},
		{"análisis", models.CommandAnalyze, true},
		{"hola", "", false},
		{"buscando algo", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := DetectCommand(c.text)
		if ok != c.matched {
			t.Errorf("DetectCommand(%q) matched = %v, want %v", c.text, ok, c.matched)
			continue
		}
		if ok && got != c.want {
			t.Errorf("DetectCommand(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestDetectCommandFirstMatchWins(t *testing.T) {
	// "empresas" is a listar synonym; it must not be captured by a later entry.
	got, ok := DetectCommand("empresas")
	if !ok || got != models.CommandList {
		t.Errorf("DetectCommand(\"empresas\") = %q, %v, want listar", got, ok)
	}
}

func TestCommandArgument(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"buscar tecnología", "tecnología"},
		{"analizar Empresa ABC", "Empresa ABC"},
		{"buscar", ""},
		{"  analizar   Acme  ", "Acme"},
	}
	for _, c := range cases {
		if got := CommandArgument(c.text); got != c.want {
			t.Errorf("CommandArgument(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestIsAffirmative(t *testing.T) {
	for _, yes := range []string{"si", "sí", "s", "yes", "y", "claro", "por supuesto", "vale"} {
		if !IsAffirmative(yes) {
			t.Errorf("IsAffirmative(%q) = false, want true", yes)
		}
	}
	for _, no := range []string{"no", "n", "nunca", "", "si claro"} {
		if IsAffirmative(no) {
			t.Errorf("IsAffirmative(%q) = true, want false", no)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		text    string
		want    float64
		wantErr bool
	}{
		{"1000", 1000, false},
		{"1,000", 1000, false},
		{"1.000", 1000, false},
		{"1.234.567", 1234567, false},
		{" 500 ", 500, false},
		{"0", 0, false},
		{"12a3", 0, true},
		{"-5", 0, true},
		{"", 0, true},
		{"mil", 0, true},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.text)
		if c.wantErr {
			if !errors.Is(err, models.ErrInvalidNumber) {
				t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidNumber", c.text, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", c.text, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestParseCount(t *testing.T) {
	if got, err := ParseCount("42"); err != nil || got != 42 {
		t.Errorf("ParseCount(\"42\") = %d, %v, want 42", got, err)
	}
	// Employee counts take no thousands separators.
	for _, bad := range []string{"1,000", "1.000", "-3", "abc", ""} {
		if _, err := ParseCount(bad); !errors.Is(err, models.ErrInvalidInteger) {
			t.Errorf("ParseCount(%q) error = %v, want ErrInvalidInteger", bad, err)
		}
	}
}
