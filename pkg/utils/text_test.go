package utils

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hello..."},
		{"zero limit returns unchanged", "hello", 0, "hello"},
		{"negative limit returns unchanged", "hello", -1, "hello"},
		{"empty string", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestIsMostlyText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"plain ascii", []byte("package main\n"), true},
		{"utf8 multibyte", []byte("héllo wörld 日本語"), true},
		{"empty", nil, true},
		{"nul byte", []byte{'a', 0, 'b'}, false},
		{"invalid utf8", []byte{0xff, 0xfe, 0xfd, 0xfc}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMostlyText(tt.data); got != tt.want {
				t.Errorf("IsMostlyText(%v) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestIsMostlyTextSampleEndsMidRune(t *testing.T) {
	// 8192-byte sample boundary can land inside a multibyte rune; the
	// trailing partial rune must not flag the file as binary.
	data := []byte(strings.Repeat("a", 8190))
	data = append(data, []byte("日本語")...)
	if !IsMostlyText(data) {
		t.Error("text ending mid-rune at the sample boundary misdetected as binary")
	}
}

func TestSanitizeMermaidID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "main", "main"},
		{"path separators", "src/core/auth.py", "src_core_auth_py"},
		{"dots", "pkg.sub.mod", "pkg_sub_mod"},
		{"underscore kept", "my_module", "my_module"},
		{"unicode replaced", "módulo", "m_dulo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeMermaidID(tt.in); got != tt.want {
				t.Errorf("SanitizeMermaidID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	long := strings.Repeat("x", 100)
	if got := SanitizeMermaidID(long); len(got) != 60 {
		t.Errorf("long ID length = %d, want 60", len(got))
	}
}
