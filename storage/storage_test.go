package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base string
		key  string
		want string
	}{
		{"https://files.example.com", "exports/a.xlsx", "https://files.example.com/exports/a.xlsx"},
		{"https://files.example.com/", "/exports/a.xlsx", "https://files.example.com/exports/a.xlsx"},
		{"https://cdn.example.com/bucket", "exports/a.xlsx", "https://cdn.example.com/bucket/exports/a.xlsx"},
		{"https://cdn.example.com/bucket/", "", ""},
	}
	for _, tt := range tests {
		base, err := url.Parse(tt.base)
		if err != nil {
			t.Fatal(err)
		}
		if got := publicURL(base, tt.key); got != tt.want {
			t.Errorf("publicURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
		}
	}
}

func TestNewCloudflareR2UploaderRequiresAllFields(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc", BucketName: "b"})
	if err == nil {
		t.Fatal("expected error for partial configuration")
	}
}

func TestMemoryUploader(t *testing.T) {
	u, err := NewMemoryUploader("https://files.example.com")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	res, err := u.Upload(ctx, "exports/x.xlsx", "application/octet-stream", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if res.Location != "https://files.example.com/exports/x.xlsx" {
		t.Errorf("Location = %q", res.Location)
	}
	data, ct, ok := u.Object("exports/x.xlsx")
	if !ok || string(data) != "payload" || ct != "application/octet-stream" {
		t.Errorf("Object() = %q, %q, %v", data, ct, ok)
	}
	if err := u.Delete(ctx, "exports/x.xlsx"); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := u.Object("exports/x.xlsx"); ok {
		t.Error("object still present after Delete")
	}
}
