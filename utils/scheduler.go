package utils

import (
	"log"
	"time"

	cron "github.com/robfig/cron/v3"
)

// StartCleanupScheduler sweeps abandoned staged uploads every hour. Files are
// kept for a day so a generated draft can still be saved as a quote.
func StartCleanupScheduler() {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		removed, err := SweepTempUploads(24 * time.Hour)
		if err != nil {
			log.Printf("Temp upload sweep failed: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("Temp upload sweep removed %d stale file(s)", removed)
		}
	})

	c.Start()
	log.Println("Upload cleanup scheduler started")
}
