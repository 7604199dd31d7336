package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ManuelReschke/AdEngine/app/repository"
	"github.com/ManuelReschke/AdEngine/internal/pkg/config"
	"github.com/ManuelReschke/AdEngine/internal/pkg/database"
	"github.com/ManuelReschke/AdEngine/internal/pkg/env"
	"github.com/ManuelReschke/AdEngine/internal/pkg/usageexport"
)

func main() {
	monthFlag := flag.String("month", "", "month to export as YYYY-MM (default: previous month, UTC)")
	flag.Parse()

	env.SetupEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	month, err := parseMonth(*monthFlag, time.Now().UTC())
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db, err := database.Open(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatalf("database unavailable: %v", err)
	}

	s3Client, err := usageexport.NewS3Client(ctx, cfg)
	if err != nil {
		log.Fatalf("S3 unavailable: %v", err)
	}

	res, err := usageexport.NewExporter(repository.NewFactory(db).GetUsageRepository(), s3Client, cfg.S3Bucket).Export(ctx, month)
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}
	log.Printf("exported %d usage records for %s to s3://%s/%s", res.Rows, month.Format("2006-01"), res.Bucket, res.Key)
}

// parseMonth returns the first instant of the requested month. An empty value
// selects the month before now.
func parseMonth(value string, now time.Time) (time.Time, error) {
	if value == "" {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first.AddDate(0, -1, 0), nil
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -month %q, expected YYYY-MM", value)
	}
	return t.UTC(), nil
}
