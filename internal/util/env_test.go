package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"No", true, false},
		{"off", true, false},
		{" true ", false, true},
		{"garbage", true, true},
		{"garbage", false, false},
	}
	for _, c := range cases {
		t.Setenv("FINBOT_TEST_BOOL", c.value)
		if got := ParseBoolEnv("FINBOT_TEST_BOOL", c.def); got != c.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", c.value, c.def, got, c.want)
		}
	}
}

func TestParseFloatEnv(t *testing.T) {
	cases := []struct {
		value string
		def   float64
		want  float64
	}{
		{"", 0.4, 0.4},
		{"0.75", 0.4, 0.75},
		{" 1 ", 0.4, 1},
		{"not-a-number", 0.4, 0.4},
	}
	for _, c := range cases {
		t.Setenv("FINBOT_TEST_FLOAT", c.value)
		if got := ParseFloatEnv("FINBOT_TEST_FLOAT", c.def); got != c.want {
			t.Errorf("ParseFloatEnv(%q, %v) = %v, want %v", c.value, c.def, got, c.want)
		}
	}
}
