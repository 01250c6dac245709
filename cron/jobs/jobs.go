package jobs

import (
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm"

	"gaugetrack.GO/core/cache"
	gaugeRepo "gaugetrack.GO/model/repository/gauge"
)

var (
	db   *gorm.DB
	dbMu sync.RWMutex
)

// Init hands scheduled jobs their DB handle. Call once at startup,
// before the scheduler starts.
func Init(d *gorm.DB) {
	dbMu.Lock()
	defer dbMu.Unlock()
	db = d
}

func handle() *gorm.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return db
}

// IncompleteSetsJob reports sets left with a single live member.
// Incomplete is a durable state: nothing expires it, an operator has to
// replace the lost member or retire the set.
func IncompleteSetsJob(args ...string) {
	d := handle()
	if d == nil {
		log.Println("cron incompletesets: no DB configured, skipping")
		return
	}
	ids, err := gaugeRepo.GetGaugeRepository(d).IncompleteSets()
	if err != nil {
		log.Printf("cron incompletesets: query failed: %v", err)
		return
	}
	if len(ids) == 0 {
		log.Println("cron incompletesets: no incomplete sets")
		return
	}
	for _, id := range ids {
		log.Printf("cron incompletesets: set %s has one live member; replace the missing member to restore it", id)
	}
}

// CacheWarmJob precomputes spare-pool counts per category.
func CacheWarmJob(args ...string) {
	d := handle()
	if d == nil {
		log.Println("cron cachewarm: no DB configured, skipping")
		return
	}
	counts, err := gaugeRepo.GetGaugeRepository(d).SpareCounts()
	if err != nil {
		log.Printf("cron cachewarm: query failed: %v", err)
		return
	}
	c := cache.GetInstance()
	for categoryID, n := range counts {
		c.Set(fmt.Sprintf("spares:count:%d", categoryID), n, 600, []string{"spares"})
	}
	log.Printf("cron cachewarm: warmed spare counts for %d categories", len(counts))
}
