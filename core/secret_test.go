package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestSecretRedaction(t *testing.T) {
	s := NewSecret("sk-abc123xyz")

	tests := []struct {
		name string
		got  string
	}{
		{"String", s.String()},
		{"Sprint", fmt.Sprint(s)},
		{"Sprintf %v", fmt.Sprintf("%v", s)},
		{"Sprintf %+v", fmt.Sprintf("%+v", s)},
		{"Sprintf %#v", fmt.Sprintf("%#v", s)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if strings.Contains(tt.got, "sk-abc123xyz") {
				t.Errorf("%s leaked secret: %q", tt.name, tt.got)
			}
			if !strings.Contains(tt.got, "[REDACTED]") {
				t.Errorf("%s = %q, want placeholder", tt.name, tt.got)
			}
		})
	}
}

func TestSecretJSONInStruct(t *testing.T) {
	type config struct {
		Name string `json:"name"`
		Key  Secret `json:"key"`
	}

	out, err := json.Marshal(config{Name: "openai", Key: NewSecret("sk-live")})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"name":"openai","key":"[REDACTED]"}`; string(out) != want {
		t.Errorf("Marshal() = %s, want %s", out, want)
	}
}

func TestSecretExposeAndIsEmpty(t *testing.T) {
	if got := NewSecret("sk-1").Expose(); got != "sk-1" {
		t.Errorf("Expose() = %q, want sk-1", got)
	}
	if !NewSecret("").IsEmpty() {
		t.Error("IsEmpty() = false for empty secret")
	}
	if NewSecret("x").IsEmpty() {
		t.Error("IsEmpty() = true for non-empty secret")
	}
	text, _ := NewSecret("sk-1").MarshalText()
	if string(text) != "[REDACTED]" {
		t.Errorf("MarshalText() = %q", text)
	}
}
