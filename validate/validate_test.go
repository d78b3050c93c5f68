package validate

import (
	"testing"
	"time"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Alisher   Karimov  ", "Alisher Karimov"},
		{"\tToshkent,\n Chilonzor", "Toshkent, Chilonzor"},
		{"plain", "plain"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := SanitizeText(tt.in); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Alisher Karimov", true},
		{"Said-Akbar O'ralov", true},
		{"Гулноза Шарипова", true},
		{"Al", false},
		{"", false},
		{"Karimov 1990", false},
		{"user@host", false},
	}
	for _, tt := range tests {
		if got := Name(tt.in); got != tt.want {
			t.Errorf("Name(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBirthDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"24.03.2004", true},
		{"01.01.1990", true},
		{"31.02.2000", false},
		{"24.03.3004", false},
		{"31.12.1899", false},
		{"2004-03-24", false},
		{"24/03/2004", false},
		{"nope", false},
	}
	for _, tt := range tests {
		if _, ok := BirthDate(tt.in); ok != tt.want {
			t.Errorf("BirthDate(%q) ok = %v, want %v", tt.in, ok, tt.want)
		}
	}
}

func TestNormalizeBirthDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"24/03/2004", "24.03.2004"},
		{"24-03-2004", "24.03.2004"},
		{" 24.03.2004 ", "24.03.2004"},
	}
	for _, tt := range tests {
		if got := NormalizeBirthDate(tt.in); got != tt.want {
			t.Errorf("NormalizeBirthDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, ok := BirthDate(NormalizeBirthDate("24/03/2004")); !ok {
		t.Error("normalized slash date should validate")
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"+998901234567", true},
		{"998901234567", true},
		{"+998 90 123-45-67", true},
		{"901234567", false},
		{"+79161234567", false},
		{"+9989012345678", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Phone(tt.in); got != tt.want {
			t.Errorf("Phone(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"6 oy", true},
		{"8oy", true},
		{"2 yil", true},
		{"2 YIL", true},
		{"yarim yil", false},
		{"6", false},
		{"oy", false},
	}
	for _, tt := range tests {
		if got := Duration(tt.in); got != tt.want {
			t.Errorf("Duration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSalary(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"3000000", true},
		{" 500 ", true},
		{"3 000 000", false},
		{"-100", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Salary(tt.in); got != tt.want {
			t.Errorf("Salary(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.Local)
	tests := []struct {
		in   string
		want int
	}{
		{"24.03.2004", 22},
		{"01.09.2004", 22},
		{"02.09.2004", 21},
		{"garbage", -1},
	}
	for _, tt := range tests {
		if got := Age(tt.in, now); got != tt.want {
			t.Errorf("Age(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
