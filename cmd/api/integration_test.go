package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

////////////////////////////////////////////////////////////////////////////////
// INTEGRATION TEST SUITE
//
// Exercises a running deployment end-to-end:
//
//   Client → HTTP API → profile store → Response
//
// Skipped unless BASE_URL points at a live service, e.g.
//
//   BASE_URL=http://localhost:8080 go test ./cmd/api/
////////////////////////////////////////////////////////////////////////////////

func baseURL(t *testing.T) string {
	t.Helper()
	v := os.Getenv("BASE_URL")
	if v == "" {
		t.Skip("BASE_URL not set")
	}
	return v
}

// unique generates an id so runs never collide with earlier rows.
func unique(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// waitReady polls /ready until the store is reachable.
func waitReady(t *testing.T) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(30 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL(t) + "/ready")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(300 * time.Millisecond)
	}

	t.Fatalf("service not ready after 30s")
}

func postJSON(t *testing.T, payload any) (int, string) {
	t.Helper()

	b, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, baseURL(t)+"/handle-new-user", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(out)
}

func insertEvent(id string) map[string]any {
	return map[string]any{
		"event": "INSERT",
		"session": map[string]any{
			"user": map[string]any{
				"id":    id,
				"email": id + "@example.com",
				"raw_user_meta_data": map[string]any{
					"phone":        "123",
					"display_name": "Ann",
					"user_type":    "farmer",
				},
			},
		},
	}
}

func TestIntegration_HealthAndReady(t *testing.T) {
	waitReady(t)

	resp, err := http.Get(baseURL(t) + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health expected 200 got %d", resp.StatusCode)
	}
}

func TestIntegration_NonInsertRejected(t *testing.T) {
	waitReady(t)

	s, body := postJSON(t, map[string]any{"event": "UPDATE", "session": map[string]any{}})
	if s != http.StatusBadRequest || body != "Only INSERT events are handled" {
		t.Fatalf("expected 400 Only INSERT..., got %d %q", s, body)
	}
}

// A replayed INSERT hits the primary key and surfaces the store error.
func TestIntegration_CreateThenReplay(t *testing.T) {
	waitReady(t)

	ev := insertEvent(unique("user"))

	s, body := postJSON(t, ev)
	if s != http.StatusOK || body != "User profile created" {
		t.Fatalf("expected 200 created, got %d %q", s, body)
	}

	s, body = postJSON(t, ev)
	if s != http.StatusInternalServerError || len(body) < len("Error: ") || body[:7] != "Error: " {
		t.Fatalf("expected 500 Error: ..., got %d %q", s, body)
	}
}
