package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"ai-research-be/internal/model"
	"ai-research-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	if len(os.Args) < 2 {
		log.Fatal("Usage: inspect_session <session-uuid>")
	}
	sessionID := os.Args[1]

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var session model.ResearchSession
	if err := db.Where("id = ?", sessionID).First(&session).Error; err != nil {
		log.Fatal("Session not found:", err)
	}

	fmt.Printf("🔍 INSPECTING SESSION: %s (%s)\n", session.Title, session.Id)
	fmt.Printf("Question: %s\n", session.Question)

	var memory map[string]interface{}
	if err := json.Unmarshal(session.Memory, &memory); err == nil {
		pretty, _ := json.MarshalIndent(memory, "", "  ")
		fmt.Println("\n─ SHARED MEMORY ─")
		fmt.Println(string(pretty))
	}

	var records []model.StepRecord
	if err := db.Where("session_id = ?", session.Id).Order("id DESC").Find(&records).Error; err != nil {
		log.Fatal("Failed to load step records:", err)
	}

	fmt.Printf("\n─ STEP RECORDS (%d, newest first) ─\n", len(records))
	for _, r := range records {
		fmt.Printf("#%d %-10s status=%-9s confidence=%3d feedback=%-8s %s\n",
			r.Id, r.StepType, r.Status, r.Confidence, r.UserFeedback, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	var files []model.UploadedFile
	if err := db.Where("session_id = ?", session.Id).Order("id DESC").Find(&files).Error; err == nil && len(files) > 0 {
		fmt.Printf("\n─ UPLOADED FILES (%d) ─\n", len(files))
		for _, f := range files {
			fmt.Printf("#%d %s (%s, %d bytes, %d chars extracted)\n",
				f.Id, f.OriginalFilename, f.ContentType, f.Size, len(f.ExtractedText))
		}
	}
}
