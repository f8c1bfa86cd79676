// Command smoketest drives a running server through the main user journey:
// register, login, profile, mining, spin, VIP tiers, orders and a deposit.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func (c *client) do(method, path string, body interface{}) (int, map[string]interface{}, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			return resp.StatusCode, nil, err
		}
	} else if len(raw) > 0 {
		out["items"] = json.RawMessage(raw)
	}
	return resp.StatusCode, out, nil
}

type step struct {
	name   string
	method string
	path   string
	body   interface{}
	// accepted statuses; 200 when empty
	want []int
}

func main() {
	baseURL := flag.String("base", "http://localhost:5200", "server base URL")
	login := flag.String("login", fmt.Sprintf("smoke-%d", time.Now().Unix()), "login to register")
	password := flag.String("password", "smoke-password", "password for the test account")
	flag.Parse()

	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: 10 * time.Second}}
	creds := map[string]string{"login": *login, "password": *password}

	log.Infof("🔎 Smoke testing %s as %s", *baseURL, *login)

	if _, resp, err := c.do(http.MethodPost, "/api/auth/register", creds); err != nil {
		log.Fatalf("register failed: %v", err)
	} else {
		log.Infof("register: %v", resp["user"])
	}

	status, resp, err := c.do(http.MethodPost, "/api/auth/login", creds)
	if err != nil || status != http.StatusOK {
		log.Fatalf("login failed: status=%d err=%v body=%v", status, err, resp)
	}
	token, _ := resp["access_token"].(string)
	if token == "" {
		log.Fatalf("login response has no token: %v", resp)
	}
	c.token = token

	steps := []step{
		{name: "health", method: http.MethodGet, path: "/health"},
		{name: "profile", method: http.MethodGet, path: "/api/auth/me"},
		{name: "mining status", method: http.MethodGet, path: "/api/mining/status"},
		{name: "tap", method: http.MethodPost, path: "/api/mining/tap", want: []int{200, 429}},
		{name: "daily spin", method: http.MethodPost, path: "/api/spin/daily", want: []int{200, 429}},
		{name: "vip levels", method: http.MethodGet, path: "/api/vip/levels"},
		{name: "vip upgrade", method: http.MethodPost, path: "/api/vip/upgrade"},
		{name: "available orders", method: http.MethodGet, path: "/api/orders/available"},
		{name: "deposit", method: http.MethodPost, path: "/api/transactions/deposit", body: map[string]int{"amount": 1000}},
		{name: "history", method: http.MethodGet, path: "/api/transactions/history"},
		{name: "notifications", method: http.MethodGet, path: "/api/notifications"},
	}

	failed := 0
	for i, s := range steps {
		status, resp, err := c.do(s.method, s.path, s.body)
		ok := err == nil && accepted(status, s.want)
		if ok {
			log.Infof("✅ %2d. %s (%d)", i+1, s.name, status)
			log.Debugf("   %v", resp)
			continue
		}
		failed++
		log.Errorf("❌ %2d. %s: status=%d err=%v body=%v", i+1, s.name, status, err, resp)
	}

	if failed > 0 {
		log.Errorf("%d of %d steps failed", failed, len(steps))
		os.Exit(1)
	}
	log.Infof("All %d steps passed", len(steps))
}

func accepted(status int, want []int) bool {
	if len(want) == 0 {
		return status == http.StatusOK
	}
	for _, w := range want {
		if status == w {
			return true
		}
	}
	return false
}
