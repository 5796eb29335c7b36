package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Smoke test against a running server: registers a throwaway user, opens the
// task event stream, creates a task and waits for the matching event.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "5000"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := fmt.Sprintf("127.0.0.1:%s", port)

	email := "smoke-" + uuid.NewString()[:8] + "@example.com"
	var reg struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	token := postJSON("http://"+base+"/api/auth/register", "", map[string]string{
		"name": "Smoke", "email": email, "password": "smoke-pass",
	}, http.StatusCreated, &reg)
	log.Printf("registered %s id=%s", email, reg.User.ID)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+base+"/api/tasks/events", header)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var ev struct {
		Type string `json:"type"`
		Task *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"task"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	if err := conn.ReadJSON(&ev); err != nil || ev.Type != "ready" {
		log.Fatalf("expected ready, got %+v (%v)", ev, err)
	}
	log.Println("event stream ready")

	var created struct {
		Task struct {
			ID string `json:"id"`
		} `json:"task"`
	}
	postJSON("http://"+base+"/api/tasks", token, map[string]string{
		"title": "smoke task", "description": "created by events_smoke",
	}, http.StatusCreated, &created)

	if err := conn.ReadJSON(&ev); err != nil {
		log.Fatalf("read event: %v", err)
	}
	if ev.Type != "task.created" || ev.Task == nil || ev.Task.ID != created.Task.ID {
		log.Fatalf("unexpected event %+v", ev)
	}
	log.Printf("received %s for task %s: OK", ev.Type, ev.Task.ID)
}

// postJSON sends body, checks the status, decodes into out and returns the
// session cookie value if one was set.
func postJSON(url, token string, body any, want int, out any) string {
	b, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("POST %s: status %d", url, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		log.Fatalf("decode %s: %v", url, err)
	}
	for _, ck := range res.Cookies() {
		if ck.Name == "token" {
			return ck.Value
		}
	}
	return ""
}
