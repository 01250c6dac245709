package config

import (
	"gaugetrack.GO/cron/jobs"
)

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

var CronJobs = map[string]CronJob{
	"incompletesets": {Schedule: "0 6 * * *", Job: jobs.IncompleteSetsJob},
	"cachewarm":      {Schedule: "@every 10m", Job: jobs.CacheWarmJob},
	// Add more jobs here
}
