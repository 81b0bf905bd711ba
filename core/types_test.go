package core

import (
	"encoding/json"
	"testing"
)

func TestMessageJSONMarshal(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"system role", Message{Role: RoleSystem, Content: "You are a developer."}, `{"role":"system","content":"You are a developer."}`},
		{"user role", Message{Role: RoleUser, Content: "Hello"}, `{"role":"user","content":"Hello"}`},
		{"empty content", Message{Role: RoleUser}, `{"role":"user"}`},
		{"parts are not serialized", Message{Role: RoleUser, Parts: []ContentPart{InputText{Text: "x"}}}, `{"role":"user"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMessageIsEmpty(t *testing.T) {
	if !(Message{Role: RoleUser}).IsEmpty() {
		t.Error("IsEmpty() = false for bare message")
	}
	if (Message{Role: RoleUser, Parts: []ContentPart{InputImage{ImageURL: "u"}}}).IsEmpty() {
		t.Error("IsEmpty() = true for message with parts")
	}
}

func TestChatRequestOmitsNilFields(t *testing.T) {
	got, err := json.Marshal(ChatRequest{Model: "gpt-4o", Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestChatResponseTruncated(t *testing.T) {
	if !(&ChatResponse{FinishReason: "length"}).Truncated() {
		t.Error("Truncated() = false for finish_reason=length")
	}
	if (&ChatResponse{FinishReason: "stop"}).Truncated() {
		t.Error("Truncated() = true for finish_reason=stop")
	}
}

func TestModelInfoHasCapability(t *testing.T) {
	m := ModelInfo{ID: "gpt-4o", Capabilities: []Feature{FeatureChat, FeatureVision}}
	if !m.HasCapability(FeatureVision) {
		t.Error("HasCapability(vision) = false")
	}
	if m.HasCapability(FeatureChatStreaming) {
		t.Error("HasCapability(streaming) = true")
	}
}

func TestContentPartTypes(t *testing.T) {
	if got := (InputText{}).ContentType(); got != "input_text" {
		t.Errorf("InputText.ContentType() = %q", got)
	}
	if got := (InputImage{}).ContentType(); got != "input_image" {
		t.Errorf("InputImage.ContentType() = %q", got)
	}
}
