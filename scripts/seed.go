package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/app"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/application/services"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/evaluation"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/config"
)

// Seeds the database with one processed document per golden policy case.
func main() {
	var goldenPath string
	var userID string

	flag.StringVar(&goldenPath, "golden", "config/golden_policies.json", "Path to the golden policy cases")
	flag.StringVar(&userID, "user", "seed-user", "Owner recorded on the seeded documents")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cases, err := evaluation.LoadGoldenCases(goldenPath)
	if err != nil {
		log.Fatalf("Failed to load golden cases: %v", err)
	}

	ctx := context.Background()
	application, err := app.New(ctx, cfg, nil, app.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	created := 0
	for _, gc := range cases {
		doc, err := application.Documents.Upload(ctx, services.UploadInput{
			UserID:   userID,
			Filename: gc.ID + ".txt",
			MimeType: "text/plain",
			Content:  strings.NewReader(gc.Text),
		})
		if err != nil {
			log.Printf("Failed to upload %s: %v", gc.ID, err)
			continue
		}

		result := application.Documents.Process(ctx, doc.ID)
		if !result.Success {
			log.Printf("Processing %s failed: %v", gc.ID, result.Errors)
			continue
		}
		created++
		log.Printf("Seeded %s as document %s (%s)", gc.ID, doc.ID, result.AutoCreationStatus)
	}

	log.Printf("Seeding completed: %d of %d documents processed", created, len(cases))
}
