package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	baseURL  = "http://localhost:3000/api"
	email    = "demo@example.com"
	password = "demo-password"
)

// Simplified DTOs for the script
type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

type createSessionResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type executeResponse struct {
	Data struct {
		ID         int64    `json:"id"`
		StepType   string   `json:"step_type"`
		Result     string   `json:"result"`
		Confidence int      `json:"confidence"`
		Status     string   `json:"status"`
		Warnings   []string `json:"warnings"`
	} `json:"data"`
}

var accessToken string

func main() {
	fmt.Println("=== Research Pipeline Simulation Client ===")

	token, err := login()
	if err != nil {
		log.Fatalf("Failed to login (run cmd/seed first?): %v", err)
	}
	accessToken = token

	sessionID, err := createSession()
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	fmt.Printf("Session Created: %s\n", sessionID)

	steps := []string{"thesis", "search", "reader", "trend", "hypothesis", "map"}

	var lastRecordID int64
	for _, step := range steps {
		fmt.Printf("\nEXECUTE %s\n", step)

		start := time.Now()
		rec, err := executeStep(sessionID, step)
		elapsed := time.Since(start)

		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("  status=%s confidence=%d (%v)\n", rec.Data.Status, rec.Data.Confidence, elapsed)
		if len(rec.Data.Warnings) > 0 {
			fmt.Printf("  warnings: %v\n", rec.Data.Warnings)
		}
		fmt.Printf("  %s\n", truncate(rec.Data.Result, 160))
		lastRecordID = rec.Data.ID

		// Small delay between steps so the walkthrough is readable
		time.Sleep(500 * time.Millisecond)
	}

	// Accept the final map record, the way a reviewer would
	if lastRecordID != 0 {
		if err := sendFeedback(lastRecordID, "accepted"); err != nil {
			fmt.Printf("Feedback error: %v\n", err)
		} else {
			fmt.Printf("\nFeedback 'accepted' recorded for record %d\n", lastRecordID)
		}
	}

	fmt.Println("\n=== Simulation complete ===")
}

func login() (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	data, err := doRequest("POST", baseURL+"/auth/v1/login", body)
	if err != nil {
		return "", err
	}
	var resp loginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}
	return resp.Data.Token, nil
}

func createSession() (string, error) {
	body, _ := json.Marshal(map[string]string{
		"title":    "Simulation Run",
		"question": "How do induced pluripotent stem cells contribute to modeling neurodegeneration?",
	})
	data, err := doRequest("POST", baseURL+"/session/v1/", body)
	if err != nil {
		return "", err
	}
	var resp createSessionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}
	return resp.Data.ID, nil
}

func executeStep(sessionID, step string) (*executeResponse, error) {
	url := fmt.Sprintf("%s/pipeline/v1/sessions/%s/steps/%s/execute", baseURL, sessionID, step)
	data, err := doRequest("POST", url, nil)
	if err != nil {
		return nil, err
	}
	var resp executeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func sendFeedback(recordID int64, decision string) error {
	body, _ := json.Marshal(map[string]string{"decision": decision})
	url := fmt.Sprintf("%s/pipeline/v1/records/%d/feedback", baseURL, recordID)
	_, err := doRequest("PATCH", url, body)
	return err
}

func doRequest(method, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
