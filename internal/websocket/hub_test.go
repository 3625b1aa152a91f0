package websocket

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"starmf/internal/models"
)

func TestNewHub(t *testing.T) {
	hub := NewHub(zap.NewNop())

	if hub == nil {
		t.Fatal("NewHub returned nil")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestOriginChecker_Check(t *testing.T) {
	checker := &OriginChecker{
		allowedOrigins: map[string]struct{}{
			"http://localhost:3000": {},
			"https://example.com":   {},
		},
		allowAll: false,
	}

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},                       // non-browser клиенты
		{"http://localhost:3000", true},  // allowed
		{"https://example.com", true},    // allowed
		{"http://evil.com", false},       // not allowed
		{"http://localhost:8080", false}, // not in list
	}

	for _, tt := range tests {
		got := checker.Check(tt.origin)
		if got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestOriginChecker_AllowAll(t *testing.T) {
	checker := &OriginChecker{allowAll: true}

	origins := []string{
		"http://localhost:3000",
		"https://evil.com",
		"http://anything.example.org",
	}

	for _, origin := range origins {
		if !checker.Check(origin) {
			t.Errorf("allowAll=true but Check(%q) = false", origin)
		}
	}
}

func TestHub_BroadcastOrderUpdate(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		hub:  hub,
		send: make(chan []byte, clientSendBufferSize),
	}
	hub.register <- client

	order := &models.Order{
		ID:             42,
		ClientID:       "UCC001",
		OrderType:      models.OrderTypePurchase,
		Status:         models.OrderStatusSubmitted,
		BseOrderNumber: "SB100",
	}
	hub.BroadcastOrderUpdate(order)

	select {
	case data := <-client.send:
		var msg OrderUpdateMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("failed to decode broadcast message: %v", err)
		}
		if msg.Type != MessageTypeOrderUpdate {
			t.Errorf("expected type %q, got %q", MessageTypeOrderUpdate, msg.Type)
		}
		if msg.OrderID != 42 {
			t.Errorf("expected order id 42, got %d", msg.OrderID)
		}
		if msg.Data.Status != models.OrderStatusSubmitted {
			t.Errorf("expected status SUBMITTED, got %s", msg.Data.Status)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("broadcast message not delivered")
	}
}

func TestHub_SlowClientRemoved(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	// Клиент с буфером в одно сообщение, никто не читает
	slow := &Client{
		hub:  hub,
		send: make(chan []byte, 1),
	}
	hub.register <- slow

	order := &models.Order{ID: 1, Status: models.OrderStatusSubmitted}
	hub.BroadcastOrderUpdate(order) // заполняет буфер
	hub.BroadcastOrderUpdate(order) // переполняет, клиент удаляется

	deadline := time.After(1 * time.Second)
	for hub.ClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatalf("slow client was not removed, %d clients remain", hub.ClientCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHub_Stop(t *testing.T) {
	hub := NewHub(zap.NewNop())

	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	hub.Stop()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Error("Hub.Run() did not exit after Stop()")
	}
}

func TestHub_ConcurrentOperations(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	var wg sync.WaitGroup
	const goroutines = 10
	const operations = 200

	order := &models.Order{ID: 1, Status: models.OrderStatusSubmitted}

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < operations; j++ {
				hub.BroadcastOrderUpdate(order)
			}
		}()
	}

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < operations; j++ {
				_ = hub.ClientCount()
			}
		}()
	}

	wg.Wait()
}
