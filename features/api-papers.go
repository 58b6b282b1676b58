package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"ai-research-be/pkg/arxiv"

	"github.com/joho/godotenv"
)

// Config holds sidecar settings
type Config struct {
	ArxivBaseURL string
	Port         string
	MaxResults   int
}

// Response structures
type PaperResponse struct {
	Query  string        `json:"query"`
	Count  int           `json:"count"`
	Papers []PaperOption `json:"papers"`
}

type PaperOption struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Abstract  string   `json:"abstract,omitempty"`
	Published string   `json:"published,omitempty"`
	URL       string   `json:"url"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	config := Config{
		ArxivBaseURL: os.Getenv("ARXIV_BASE_URL"),
		Port:         getEnv("PORT", "8080"),
		MaxResults:   getEnvAsInt("PAPERS_MAX_RESULTS", 10),
	}

	client := arxiv.NewClient(config.ArxivBaseURL)

	log.Printf("Paper lookup sidecar starting on port %s", config.Port)

	http.HandleFunc("/api/papers", corsMiddleware(searchPapersHandler(client, config)))
	http.HandleFunc("/health", healthHandler)

	log.Fatal(http.ListenAndServe(":"+config.Port, nil))
}

func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// searchPapersHandler serves GET /api/papers?q=kw1,kw2&max=5
func searchPapersHandler(client *arxiv.Client, config Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			http.Error(w, `{"error":"q parameter is required"}`, http.StatusBadRequest)
			return
		}

		max := config.MaxResults
		if raw := r.URL.Query().Get("max"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 50 {
				max = parsed
			}
		}

		keywords := splitKeywords(query)

		ctx := r.Context()
		start := time.Now()
		papers, err := client.Search(ctx, keywords, max)
		if err != nil {
			log.Printf("arXiv search failed for %q: %v", query, err)
			http.Error(w, `{"error":"upstream search failed"}`, http.StatusBadGateway)
			return
		}
		log.Printf("arXiv search %q returned %d papers in %v", query, len(papers), time.Since(start))

		resp := PaperResponse{
			Query:  query,
			Count:  len(papers),
			Papers: make([]PaperOption, 0, len(papers)),
		}
		for _, p := range papers {
			resp.Papers = append(resp.Papers, PaperOption{
				ID:        p.ID,
				Title:     p.Title,
				Authors:   p.Authors,
				Abstract:  p.Abstract,
				Published: p.Published,
				URL:       p.URL,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func splitKeywords(query string) []string {
	parts := strings.Split(query, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return fallback
}
