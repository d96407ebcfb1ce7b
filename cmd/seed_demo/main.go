package main

import (
	"fmt"
	"log"
	"time"

	"github.com/fieldvoice/fieldvoicego/internal/config"
	"github.com/fieldvoice/fieldvoicego/internal/database"
	"github.com/fieldvoice/fieldvoicego/internal/models"
)

func main() {
	fmt.Println("🌱 FieldVoice Demo Data Seeder")
	fmt.Println("==============================")

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")
	fmt.Println()

	// Run migrations first
	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.Project{},
		&models.Contractor{},
		&models.ProjectSetItem{},
		&models.Report{},
		&models.AIRequest{},
		&models.AIResponse{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")
	fmt.Println()

	// Check if data already exists
	var projectCount int64
	db.Model(&models.Project{}).Count(&projectCount)
	if projectCount > 0 {
		fmt.Printf("⚠️  Database already has %d projects. Clear it first? (y/N): ", projectCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}

		fmt.Println("🗑️  Clearing existing data...")
		db.Exec("TRUNCATE TABLE report_ai_response CASCADE")
		db.Exec("TRUNCATE TABLE report_ai_request CASCADE")
		db.Exec("TRUNCATE TABLE reports CASCADE")
		db.Exec("TRUNCATE TABLE project_equipment CASCADE")
		db.Exec("TRUNCATE TABLE contractors CASCADE")
		db.Exec("TRUNCATE TABLE projects CASCADE")
		fmt.Println("✅ Data cleared")
	}

	fmt.Println()
	fmt.Println("🏗️  Creating demo projects...")

	projects := []models.Project{
		{
			Name:            "Lakefront Levee Rehabilitation",
			ProjectNumber:   "NOAB-2025-014",
			Location:        "New Orleans, LA - Lakefront District",
			ClientName:      "New Orleans Aviation Board",
			Engineer:        "Delta Civil Group",
			PrimeContractor: "Bayou Heavy Construction LLC",
			IsActive:        true,
			Contractors: []models.Contractor{
				{Name: "Bayou Heavy Construction LLC", Company: "Bayou Heavy Construction LLC", Trade: "Earthwork"},
				{Name: "Crescent Electric", Company: "Crescent Electric Services", Trade: "Electrical"},
				{Name: "Pelican Concrete", Company: "Pelican Concrete Inc", Trade: "Concrete"},
			},
			Equipment: []models.ProjectSetItem{
				{Name: "Excavator CAT 336"},
				{Name: "Dozer D6"},
				{Name: "Vibratory Roller"},
				{Name: "Water Truck"},
			},
		},
		{
			Name:            "Terminal Apron Expansion Phase 2",
			ProjectNumber:   "NOAB-2025-021",
			Location:        "Kenner, LA - North Terminal",
			ClientName:      "New Orleans Aviation Board",
			Engineer:        "Gulf Coast Engineering",
			PrimeContractor: "Magnolia Paving Co",
			IsActive:        true,
			Contractors: []models.Contractor{
				{Name: "Magnolia Paving Co", Company: "Magnolia Paving Co", Trade: "Paving"},
				{Name: "Southern Striping", Company: "Southern Striping LLC", Trade: "Markings"},
			},
			Equipment: []models.ProjectSetItem{
				{Name: "Asphalt Paver"},
				{Name: "Tandem Roller"},
				{Name: "Milling Machine"},
			},
		},
	}

	for i := range projects {
		if err := db.DB.Create(&projects[i]).Error; err != nil {
			log.Fatalf("❌ Failed to create project %q: %v", projects[i].Name, err)
		}
		fmt.Printf("   ✅ %s (%s) with %d contractors, %d equipment items\n",
			projects[i].Name, projects[i].ProjectNumber,
			len(projects[i].Contractors), len(projects[i].Equipment))
	}

	// A submitted report from yesterday exercises the eligibility rules
	// on first run.
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	submittedAt := time.Now().Add(-18 * time.Hour)
	report := models.Report{
		ProjectID:   projects[1].ID,
		ReportDate:  yesterday,
		Status:      models.ReportStatusSubmitted,
		CaptureMode: string(models.CaptureModeMinimal),
		SubmittedAt: &submittedAt,
	}
	if err := db.DB.Create(&report).Error; err != nil {
		log.Fatalf("❌ Failed to create demo report: %v", err)
	}
	fmt.Printf("   ✅ Submitted report for %s on %s\n", projects[1].Name, yesterday)

	fmt.Println()
	fmt.Println("🎉 Demo data ready")
}
