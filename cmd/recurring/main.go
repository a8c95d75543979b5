package main

import (
	"context"
	"flag"
	"log"
	"time"

	"ai-invoicing-be/internal/bootstrap"
	"ai-invoicing-be/internal/config"
	"ai-invoicing-be/pkg/database"
)

// Runs due recurring schedules. With -once it processes a single batch and
// exits, which is the mode to use under cron. Without it, the process stays
// up and ticks on the given interval.
func main() {
	once := flag.Bool("once", false, "run a single batch and exit")
	interval := flag.Duration("interval", time.Hour, "tick interval in daemon mode")
	flag.Parse()

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	runBatch := func() {
		count, err := container.RecurringService.RunOnce(context.Background(), time.Now())
		if err != nil {
			log.Printf("Error: recurring batch failed: %v", err)
			return
		}
		log.Printf("Recurring batch done, %d document(s) created", count)
	}

	runBatch()
	if *once {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		runBatch()
	}
}
