// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestStatus_NamesAndLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   Status
		name     string
		label    string
		terminal bool
	}{
		{StatusIdle, "idle", "Menunggu", false},
		{StatusLoading, "loading", "Memuat", false},
		{StatusLoaded, "loaded", "Dimuat", true},
		{StatusFailed, "failed", "Gagal", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.status.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.status.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
			if got := tt.status.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
			parsed, err := ParseStatus(tt.name)
			if err != nil || parsed != tt.status {
				t.Errorf("ParseStatus(%q) = %v, %v", tt.name, parsed, err)
			}
		})
	}
}

func TestStatus_Unknown(t *testing.T) {
	t.Parallel()

	s := Status(42)
	if got := s.String(); got != "status(42)" {
		t.Errorf("String() = %q", got)
	}
	if got := s.Label(); got != "status(42)" {
		t.Errorf("Label() = %q", got)
	}
	if _, err := ParseStatus("retrying"); err == nil {
		t.Error("ParseStatus should reject unknown names")
	}
}

func TestStatus_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(LoadState{Status: StatusFailed, Attempt: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"status":"failed"`) {
		t.Errorf("status should encode by name: %s", data)
	}

	var st LoadState
	if err := json.Unmarshal([]byte(`{"status":"loading","attempt":2}`), &st); err != nil {
		t.Fatal(err)
	}
	if st.Status != StatusLoading || st.Attempt != 2 {
		t.Errorf("decoded %+v", st)
	}

	if err := json.Unmarshal([]byte(`{"status":"exploded"}`), &st); err == nil {
		t.Error("unknown status should fail to decode")
	}
	if err := json.Unmarshal([]byte(`{"status":3}`), &st); err == nil {
		t.Error("numeric status should fail to decode")
	}
}

func TestCacheEntry_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"future", now.Add(time.Millisecond), false},
		{"exactly now", now, true},
		{"past", now.Add(-time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := &CacheEntry{Key: "img_x", ObjectURL: "blob:imagegate/x", ExpiresAt: tt.expiresAt}
			if got := e.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlob_Size(t *testing.T) {
	t.Parallel()

	var nilBlob *Blob
	if nilBlob.Size() != 0 {
		t.Error("nil blob should have size 0")
	}
	if got := (&Blob{Data: make([]byte, 17)}).Size(); got != 17 {
		t.Errorf("Size = %d, want 17", got)
	}
}
