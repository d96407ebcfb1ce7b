package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fieldvoice/fieldvoicego/internal/config"
	"github.com/fieldvoice/fieldvoicego/internal/database"
	"github.com/fieldvoice/fieldvoicego/internal/models"
	"github.com/fieldvoice/fieldvoicego/internal/store"
)

// Dumps the remote and local stores for troubleshooting in the field.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		fmt.Printf("❌ Failed to connect: %v\n", err)
		fmt.Println("\n💡 Try starting the server first:")
		fmt.Println("   go run ./cmd/api")
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("📊 FieldVoice Data Report")
	fmt.Println("─────────────────────────")

	var projectCount, reportCount, requestCount, responseCount int64
	db.DB.Model(&models.Project{}).Count(&projectCount)
	db.DB.Model(&models.Report{}).Count(&reportCount)
	db.DB.Model(&models.AIRequest{}).Count(&requestCount)
	db.DB.Model(&models.AIResponse{}).Count(&responseCount)

	fmt.Printf("Projects:      %d\n", projectCount)
	fmt.Printf("Reports:       %d\n", reportCount)
	fmt.Printf("AI requests:   %d\n", requestCount)
	fmt.Printf("AI responses:  %d\n", responseCount)
	fmt.Println()

	var reports []models.Report
	db.DB.Order("report_date DESC").Limit(10).Find(&reports)
	if len(reports) > 0 {
		fmt.Println("Recent reports:")
		for _, r := range reports {
			fmt.Printf("  %s  %s  project=%s  status=%s\n", r.ID[:8], r.ReportDate, r.ProjectID[:8], r.Status)
		}
		fmt.Println()
	}

	// Local store: drafts and the offline queue.
	localStore, err := store.Open(cfg.Local.Path)
	if err != nil {
		fmt.Printf("⚠️ Could not open local store at %s: %v\n", cfg.Local.Path, err)
		return
	}
	defer localStore.Close()

	entries, err := localStore.QueueEntries()
	if err != nil {
		fmt.Printf("⚠️ Could not read sync queue: %v\n", err)
		return
	}

	fmt.Printf("Local store:   %s\n", cfg.Local.Path)
	fmt.Printf("Active project: %s\n", localStore.ActiveProjectID())
	fmt.Printf("Queue depth:   %d\n", len(entries))
	for _, e := range entries {
		line, _ := json.Marshal(map[string]interface{}{
			"id":      e.ID,
			"project": e.ProjectID,
			"date":    e.ReportDate,
			"status":  e.Status,
			"error":   e.ErrorMessage,
		})
		fmt.Printf("  %s\n", line)
	}
}
