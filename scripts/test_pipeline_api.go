package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // No timeout; LLM-backed steps can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func dataField(body []byte) map[string]interface{} {
	var parsed map[string]interface{}
	json.Unmarshal(body, &parsed)
	if data, ok := parsed["data"].(map[string]interface{}); ok {
		return data
	}
	return nil
}

func main() {
	color.Cyan("🚀 Starting Research Pipeline API Test\n")

	// 1. Register (idempotent-ish: falls through to login if taken)
	color.Yellow("\n1. Register Test Researcher")
	registerReq := map[string]interface{}{
		"email":     "pipeline-test@example.com",
		"password":  "pipeline-test-pass",
		"full_name": "Pipeline Tester",
	}
	resp, body, err := sendRequest("POST", "/auth/v1/register", "", registerReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	// 2. Login
	color.Yellow("\n2. Login")
	loginReq := map[string]interface{}{
		"email":    "pipeline-test@example.com",
		"password": "pipeline-test-pass",
	}
	resp, body, err = sendRequest("POST", "/auth/v1/login", "", loginReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var token string
	if data := dataField(body); data != nil {
		if t, ok := data["token"].(string); ok {
			token = t
		}
	}
	if token == "" {
		color.Red("No token in login response")
		os.Exit(1)
	}

	// 3. Create a session
	color.Yellow("\n3. Create Research Session")
	sessionReq := map[string]interface{}{
		"title":    "API Test Session",
		"question": "What role do iPSC models play in studying neurodegeneration?",
	}
	resp, body, err = sendRequest("POST", "/session/v1/", token, sessionReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var sessionID string
	if data := dataField(body); data != nil {
		if id, ok := data["id"].(string); ok {
			sessionID = id
			fmt.Printf("Created Session ID: %s\n", sessionID)
		}
	}
	if sessionID == "" {
		color.Red("No session id in response")
		os.Exit(1)
	}

	// 4. Dependency gating: SEARCH before THESIS must be rejected
	color.Yellow("\n4. Execute SEARCH before THESIS (expect 409)")
	resp, body, err = sendRequest("POST", "/pipeline/v1/sessions/"+sessionID+"/steps/search/execute", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode == http.StatusConflict {
		color.Green("Correctly rejected: %s", resp.Status)
	} else {
		color.Red("Expected 409, got: %s", resp.Status)
	}
	var rejectResp map[string]interface{}
	json.Unmarshal(body, &rejectResp)
	prettyPrint(rejectResp)

	// 5. Execute THESIS
	color.Yellow("\n5. Execute THESIS")
	resp, body, err = sendRequest("POST", "/pipeline/v1/sessions/"+sessionID+"/steps/thesis/execute", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	if data := dataField(body); data != nil {
		fmt.Printf("Result: %v\nConfidence: %v Status: %v\n", data["result"], data["confidence"], data["status"])
	}

	// 6. Step status board
	color.Yellow("\n6. Step Status Board")
	resp, body, err = sendRequest("GET", "/pipeline/v1/sessions/"+sessionID+"/steps", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var boardResp map[string]interface{}
	json.Unmarshal(body, &boardResp)
	prettyPrint(boardResp)

	// 7. Session statistics
	color.Yellow("\n7. Session Statistics")
	resp, body, err = sendRequest("GET", "/session/v1/"+sessionID+"/statistics", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var statsResp map[string]interface{}
	json.Unmarshal(body, &statsResp)
	prettyPrint(statsResp)

	// 8. Cleanup
	color.Yellow("\n8. Cleanup: Delete Session")
	resp, _, err = sendRequest("DELETE", "/session/v1/"+sessionID, token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
	}

	color.Cyan("\n✅ Pipeline API test finished")
}
