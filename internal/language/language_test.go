package language

import "testing"

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"fra", "fr"},
		{"de-DE", "de"},
		{"pt_BR", "pt"},
		{"english", "en"},
		{"German", "de"},
		{"", ""},
		{"not a language", ""},
	}
	for _, tt := range tests {
		if got := ToISO2(tt.input); got != tt.expected {
			t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestToISO3(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "eng"},
		{"french", "fra"},
		{"ja", "jpn"},
		{"", "und"},
		{"???", "und"},
	}
	for _, tt := range tests {
		if got := ToISO3(tt.input); got != tt.expected {
			t.Errorf("ToISO3(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestToBCP47(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en-US"},
		{"en-GB", "en-GB"},
		{"de", "de-DE"},
		{"spanish", "es-ES"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToBCP47(tt.input); got != tt.expected {
			t.Errorf("ToBCP47(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"deu", "German"},
		{"", "Unknown"},
		{"???", "???"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
