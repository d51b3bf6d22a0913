//go:build e2e
// +build e2e

package e2e

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

type sseEvent struct {
	Name string
	Data string
}

type sseStream struct {
	events <-chan sseEvent
	cancel context.CancelFunc
}

// connectSSE opens an event stream for the given user and blocks until the
// first keep-alive, which confirms the session is subscribed. Events arriving
// after that point are guaranteed to be delivered.
func connectSSE(t *testing.T, userID int64) *sseStream {
	t.Helper()

	ctx, cancel := context.WithCancel(testContext)
	t.Cleanup(cancel)

	resp := authedGet(t, ctx, "/events", userID)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("expected 200 opening stream, got %d", resp.StatusCode)
	}

	events := make(chan sseEvent, 32)
	ready := make(chan struct{})
	var readyOnce sync.Once

	go func() {
		defer resp.Body.Close()
		scanner := bufio.NewScanner(resp.Body)
		var name string
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, ":"):
				readyOnce.Do(func() { close(ready) })
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				events <- sseEvent{Name: name, Data: strings.TrimPrefix(line, "data: ")}
			}
		}
	}()

	select {
	case <-ready:
	case <-time.After(10 * time.Second):
		t.Fatal("session never became live")
	}

	return &sseStream{events: events, cancel: cancel}
}

// expectEvent waits for the next event on the stream and asserts its name
func expectEvent(t *testing.T, stream *sseStream, name string) sseEvent {
	t.Helper()
	select {
	case ev := <-stream.events:
		if ev.Name != name {
			t.Fatalf("expected %s event, got %s: %s", name, ev.Name, ev.Data)
		}
		return ev
	case <-time.After(10 * time.Second):
		t.Fatalf("timed out waiting for %s event", name)
		return sseEvent{}
	}
}

// expectNoEvent asserts that nothing arrives on the stream within a short window
func expectNoEvent(t *testing.T, stream *sseStream) {
	t.Helper()
	select {
	case ev := <-stream.events:
		t.Fatalf("unexpected event %s: %s", ev.Name, ev.Data)
	case <-time.After(1 * time.Second):
	}
}

// createChat inserts a chat row, firing the chat_updated trigger
func createChat(t *testing.T, name string, members string) int64 {
	t.Helper()
	var id int64
	err := testDB.QueryRowContext(testContext,
		`INSERT INTO chats (ws_id, name, type, members) VALUES (1, $1, 'group', $2::bigint[]) RETURNING id`,
		name, members,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create chat: %v", err)
	}
	return id
}

// setChatMembers updates a chat's member list, firing the chat_updated trigger
func setChatMembers(t *testing.T, chatID int64, members string) {
	t.Helper()
	if _, err := testDB.ExecContext(testContext,
		`UPDATE chats SET members = $2::bigint[] WHERE id = $1`, chatID, members); err != nil {
		t.Fatalf("failed to update chat members: %v", err)
	}
}

// createMessage inserts a message row, firing the chat_message_created trigger
func createMessage(t *testing.T, chatID, senderID int64, content string) int64 {
	t.Helper()
	var id int64
	err := testDB.QueryRowContext(testContext,
		`INSERT INTO messages (chat_id, sender_id, content) VALUES ($1, $2, $3) RETURNING id`,
		chatID, senderID, content,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	return id
}
