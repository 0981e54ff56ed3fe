// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/imagegate/internal/models"
)

func intPtr(v int) *int { return &v }

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

func TestValidateStruct_MountRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		req       models.MountRequest
		wantField string
		wantTag   string
	}{
		{name: "valid minimal", req: models.MountRequest{Src: "https://cdn.example/x.jpg"}},
		{name: "valid with overrides", req: models.MountRequest{
			Src:             "http://10.0.0.5:8080/uploads/jalan/12.png?w=400",
			MaxRetries:      intPtr(0),
			BaseDelayMS:     intPtr(250),
			CacheTTLSeconds: intPtr(60),
		}},
		{name: "missing src", req: models.MountRequest{}, wantField: "src", wantTag: "required"},
		{name: "javascript scheme", req: models.MountRequest{Src: "javascript:alert(1)"}, wantField: "src", wantTag: "httpurl"},
		{name: "relative path", req: models.MountRequest{Src: "/uploads/a.png"}, wantField: "src", wantTag: "httpurl"},
		{name: "negative retries", req: models.MountRequest{Src: "https://a.example/x.png", MaxRetries: intPtr(-1)}, wantField: "max_retries", wantTag: "min"},
		{name: "zero base delay", req: models.MountRequest{Src: "https://a.example/x.png", BaseDelayMS: intPtr(0)}, wantField: "base_delay_ms", wantTag: "min"},
		{name: "src too long", req: models.MountRequest{Src: "https://a.example/" + strings.Repeat("a", 5000)}, wantField: "src", wantTag: "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verr := ValidateStruct(&tt.req)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatalf("expected %s/%s error", tt.wantField, tt.wantTag)
			}
			first := verr.Errors()[0]
			if first.Field() != tt.wantField || first.Tag() != tt.wantTag {
				t.Errorf("got %s/%s (%q), want %s/%s", first.Field(), first.Tag(), first.Error(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(&models.MountRequest{Src: "ftp://x", MaxRetries: intPtr(1000)})
	if verr == nil {
		t.Fatal("expected errors")
	}
	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "src must be an absolute http or https URL") {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if !strings.Contains(apiErr.Message, "max_retries must be at most 100") {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Errorf("Details = %v, want fields list", apiErr.Details)
	}
}

func TestIsHTTPURL(t *testing.T) {
	t.Parallel()

	for s, want := range map[string]bool{
		"https://cdn.example/x.jpg": true,
		"http://localhost:9000/a":   true,
		"blob:imagegate/abc":        false,
		"https:///nohost":           false,
		"":                          false,
	} {
		if got := IsHTTPURL(s); got != want {
			t.Errorf("IsHTTPURL(%q) = %v, want %v", s, got, want)
		}
	}
}
