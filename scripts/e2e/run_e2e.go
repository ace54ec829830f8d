// Package main runs smoke scenarios against a deployed WhatsAuto webhook.
//
// Scenarios cover each body encoding the webhook accepts and each reply rule:
//   - JSON greeting with a known sender
//   - URL-encoded small talk
//   - Comma-separated key=value dump that asks for a meeting
//   - Empty body
//   - Malformed JSON under strict mode
//
// Usage:
//
//	API_BASE_URL=... go run scripts/e2e/run_e2e.go               # runs all
//	API_BASE_URL=... go run scripts/e2e/run_e2e.go json-greeting # runs one
//
// The booking scenario creates a real calendar event when the target has
// credentials configured; set E2E_SKIP_BOOKING=1 to leave it out.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var (
	apiBase string
	client  = &http.Client{Timeout: 30 * time.Second}
)

type scenario struct {
	Name string
	Fn   func(t *T)
}

// T is a lightweight test context for a single scenario.
type T struct {
	passed int
	failed int
	name   string
}

func (t *T) check(name string, ok bool) {
	if ok {
		fmt.Printf("    PASS: %s\n", name)
		t.passed++
	} else {
		fmt.Printf("    FAIL: %s\n", name)
		t.failed++
	}
}

func (t *T) fatalf(format string, args ...interface{}) {
	fmt.Printf("    FATAL: "+format+"\n", args...)
	t.failed++
}

type webhookResult struct {
	status int
	reply  string
	errMsg string
}

func post(contentType, body string) (webhookResult, error) {
	req, err := http.NewRequest(http.MethodPost, apiBase+"/webhook", strings.NewReader(body))
	if err != nil {
		return webhookResult{}, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := client.Do(req)
	if err != nil {
		return webhookResult{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var payload struct {
		Reply string `json:"reply"`
		Error string `json:"error"`
	}
	_ = json.Unmarshal(raw, &payload)
	fmt.Printf("    <- %d %s\n", resp.StatusCode, strings.TrimSpace(string(raw)))
	return webhookResult{status: resp.StatusCode, reply: payload.Reply, errMsg: payload.Error}, nil
}

func scenarioIndex(t *T) {
	resp, err := client.Get(apiBase + "/")
	if err != nil {
		t.fatalf("GET /: %v", err)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	t.check("GET / returns 200", resp.StatusCode == http.StatusOK)
	t.check("availability text mentions WhatsAuto", strings.Contains(string(body), "WhatsAuto"))
}

func scenarioJSONGreeting(t *T) {
	res, err := post("application/json", `{"message":"olá","sender":"Ana"}`)
	if err != nil {
		t.fatalf("post: %v", err)
		return
	}
	t.check("status 200", res.status == http.StatusOK)
	t.check("greets the sender by name", strings.Contains(res.reply, "Olá, Ana"))
}

func scenarioFormSmallTalk(t *T) {
	res, err := post("application/x-www-form-urlencoded", "message=tudo+bem&sender=Bruno")
	if err != nil {
		t.fatalf("post: %v", err)
		return
	}
	t.check("status 200", res.status == http.StatusOK)
	t.check("small talk reply", strings.Contains(res.reply, "Estou bem"))
}

func scenarioCommaDumpBooking(t *T) {
	if os.Getenv("E2E_SKIP_BOOKING") != "" {
		fmt.Println("    SKIP: E2E_SKIP_BOOKING set")
		return
	}
	res, err := post("text/plain", "app=WhatsAuto,sender=E2E,message=agendar reuniao")
	if err != nil {
		t.fatalf("post: %v", err)
		return
	}
	t.check("status 200 even when booking fails", res.status == http.StatusOK)
	t.check("reply reports the booking result", strings.Contains(res.reply, "Reunião agendada") || strings.Contains(res.reply, "Não foi possível agendar"))
}

func scenarioEmptyBody(t *T) {
	res, err := post("", "")
	if err != nil {
		t.fatalf("post: %v", err)
		return
	}
	t.check("status 200", res.status == http.StatusOK)
	t.check("could-not-extract reply", strings.Contains(res.reply, "Não consegui extrair"))
	t.check("not the generic echo", !strings.Contains(res.reply, "Recebi sua mensagem"))
}

func scenarioMalformedJSON(t *T) {
	res, err := post("application/json", `{"message":`)
	if err != nil {
		t.fatalf("post: %v", err)
		return
	}
	t.check("status 400", res.status == http.StatusBadRequest)
	t.check("error envelope present", res.errMsg != "")
}

func main() {
	apiBase = strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if apiBase == "" {
		fmt.Fprintln(os.Stderr, "ERROR: API_BASE_URL required")
		os.Exit(1)
	}

	scenarios := []scenario{
		{"index", scenarioIndex},
		{"json-greeting", scenarioJSONGreeting},
		{"form-small-talk", scenarioFormSmallTalk},
		{"comma-dump-booking", scenarioCommaDumpBooking},
		{"empty-body", scenarioEmptyBody},
		{"malformed-json", scenarioMalformedJSON},
	}

	// Filter by name if argument provided
	filter := ""
	if len(os.Args) > 1 {
		filter = os.Args[1]
	}

	totalPassed := 0
	totalFailed := 0
	scenarioResults := make([]string, 0)

	for _, s := range scenarios {
		if filter != "" && s.Name != filter {
			continue
		}

		fmt.Printf("\n========================================\n")
		fmt.Printf("SCENARIO: %s\n", s.Name)
		fmt.Printf("========================================\n")

		t := &T{name: s.Name}
		s.Fn(t)

		totalPassed += t.passed
		totalFailed += t.failed

		status := "✅"
		if t.failed > 0 {
			status = "❌"
		}
		scenarioResults = append(scenarioResults, fmt.Sprintf("  %s %s (%d passed, %d failed)", status, s.Name, t.passed, t.failed))
	}

	fmt.Printf("\n========================================\n")
	fmt.Println("SUMMARY")
	fmt.Printf("========================================\n")
	for _, r := range scenarioResults {
		fmt.Println(r)
	}
	fmt.Printf("\nTotal: %d passed, %d failed\n", totalPassed, totalFailed)

	if totalFailed > 0 {
		fmt.Println("\n❌ SOME TESTS FAILED")
		os.Exit(1)
	}
	fmt.Println("\n✅ ALL TESTS PASSED")
}
