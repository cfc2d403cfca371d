package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/baaaaaaaka/claude_sessions/internal/claudehistory"
	"github.com/baaaaaaaka/claude_sessions/internal/config"
)

func TestServeBroadcastsDiskChanges(t *testing.T) {
	claudeDir := sampleClaudeDir(t)
	store, err := claudehistory.NewStore(claudehistory.Options{ClaudeDir: claudeDir})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	settings := config.DefaultSettings()
	settings.Serve.Debounce = 50 * time.Millisecond

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("listen not available: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- serve(ctx, store, settings, ln, &out) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Errorf("serve did not stop")
		}
	})

	base := "http://" + ln.Addr().String()
	resp, err := http.Get(base + "/api/projects")
	if err != nil {
		t.Fatalf("GET projects: %v", err)
	}
	var payload []claudehistory.Project
	err = json.NewDecoder(resp.Body).Decode(&payload)
	_ = resp.Body.Close()
	if err != nil || len(payload) != 1 {
		t.Fatalf("unexpected projects response %#v, %v", payload, err)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	time.Sleep(200 * time.Millisecond)

	writeTranscript(t, claudeDir, "-work-other", "b.jsonl", `{"sessionId":"o1"}`)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg struct {
		Type     string                  `json:"type"`
		Projects []claudehistory.Project `json:"projects"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if msg.Type != "projects_updated" || len(msg.Projects) != 2 {
		t.Fatalf("unexpected update %#v", msg)
	}
	if !strings.Contains(out.String(), "Listening on http://") {
		t.Fatalf("expected listen banner, got %q", out.String())
	}
}
