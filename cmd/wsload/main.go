// Command wsload opens many notification websockets against a running API
// and keeps them alive with ping frames, reporting how many connected and
// how many pongs and pushes came back.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted atomic.Int64
	ConnectionsSuccess   atomic.Int64
	ConnectionsFailed    atomic.Int64
	PingsSent            atomic.Int64
	Pongs                atomic.Int64
	Pushes               atomic.Int64
	Errors               atomic.Int64
}

var metrics Metrics

var httpClient = &http.Client{Timeout: 5 * time.Second}

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	email := flag.String("email", "demo@example.com", "Test user email")
	password := flag.String("password", "password123", "Test user password")
	clients := flag.Int("clients", 50, "Number of concurrent clients")
	perSecond := flag.Float64("rate", 20, "New connections per second")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	flag.Parse()

	log.Printf("🚀 Starting websocket load test")
	log.Printf("Target: %s | Clients: %d | Duration: %v", *host, *clients, *duration)

	token, err := login(*host, *email, *password)
	if err != nil {
		log.Fatalf("❌ Login failed: %v", err)
	}
	log.Printf("✅ Logged in successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	// Tickets come from a rate limited endpoint; pace the dials.
	limiter := rate.NewLimiter(rate.Limit(*perSecond), 1)

	var wg sync.WaitGroup
	for i := 0; i < *clients; i++ {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			runClient(ctx, *host, token)
		}()
	}

	<-ctx.Done()
	log.Println("Waiting for clients to disconnect...")
	wg.Wait()
	printMetrics()
}

func login(host, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := httpClient.Post(fmt.Sprintf("http://%s/api/auth/login", host), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func getTicket(host, token string) (string, error) {
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/api/ws/ticket", host), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ticket issuance failed with status %d", resp.StatusCode)
	}

	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Ticket, nil
}

func runClient(ctx context.Context, host, token string) {
	metrics.ConnectionsAttempted.Add(1)

	ticket, err := getTicket(host, token)
	if err != nil {
		metrics.ConnectionsFailed.Add(1)
		metrics.Errors.Add(1)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws", RawQuery: "ticket=" + url.QueryEscape(ticket)}
	c, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		metrics.ConnectionsFailed.Add(1)
		metrics.Errors.Add(1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()
	metrics.ConnectionsSuccess.Add(1)

	go func() {
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			if gjson.GetBytes(msg, "type").String() == "pong" {
				metrics.Pongs.Add(1)
			} else {
				metrics.Pushes.Add(1)
			}
		}
	}()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			if err := c.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
				metrics.Errors.Add(1)
				return
			}
			metrics.PingsSent.Add(1)
		}
	}
}

func printMetrics() {
	log.Println("\n📊 Test Results")
	log.Println("===============")
	log.Printf("Connections Attempted: %d", metrics.ConnectionsAttempted.Load())
	log.Printf("Connections Successful: %d", metrics.ConnectionsSuccess.Load())
	log.Printf("Connections Failed: %d", metrics.ConnectionsFailed.Load())
	log.Printf("Pings Sent: %d", metrics.PingsSent.Load())
	log.Printf("Pongs Received: %d", metrics.Pongs.Load())
	log.Printf("Pushes Received: %d", metrics.Pushes.Load())
	log.Printf("Total Errors: %d", metrics.Errors.Load())
}
