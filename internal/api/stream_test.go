package api

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/guardian-sim/internal/sim"
)

func TestStreamDeliversSnapshots(t *testing.T) {
	_, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The current state arrives immediately on connect.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap sim.Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if snap.Tick != 0 {
		t.Errorf("initial tick = %d", snap.Tick)
	}

	// A mutation pushes a fresh snapshot.
	doPost(t, ts.URL+"/api/v1/start", testAdminKey)
	doPost(t, ts.URL+"/api/v1/step", testAdminKey)

	deadline := time.Now().Add(2 * time.Second)
	for snap.Tick < 1 {
		if time.Now().After(deadline) {
			t.Fatal("no snapshot for the stepped tick")
		}
		conn.SetReadDeadline(deadline)
		if err := conn.ReadJSON(&snap); err != nil {
			t.Fatalf("read pushed snapshot: %v", err)
		}
	}
	if !snap.Running && snap.Outcome == nil {
		t.Error("pushed snapshot inconsistent with an active run")
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request should be limited")
	}
	if rl.Allow("10.0.0.2") != true {
		t.Error("other callers keep their own budget")
	}
	if rl.RetryAfter("10.0.0.1") <= 0 {
		t.Error("retry-after should be positive for a limited caller")
	}
}
