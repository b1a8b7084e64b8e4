package project

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/machinewrapped/go-subtrans/pkg/log"
)

// Autosaver periodically checkpoints the project from a background goroutine
// while the foreground drives the translation. It has an explicit Start/Stop
// lifecycle; Stop blocks until the loop has observed the stop signal.
type Autosaver struct {
	interval time.Duration
	project  *Project

	backupCronExpr string
	backupCron     *cron.Cron

	mu       sync.Mutex
	started  bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// DefaultAutosaveInterval is used when no interval is configured.
const DefaultAutosaveInterval = 20 * time.Second

func NewAutosaver(interval time.Duration, backupCronExpr string, project *Project) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{
		interval:       interval,
		project:        project,
		backupCronExpr: backupCronExpr,
		stopCh:         make(chan struct{}),
	}
}

// Start launches the background save loop and, when configured, the backup
// schedule. Starting twice is a no-op.
func (a *Autosaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return
	}
	a.started = true

	a.wg.Add(1)
	go a.loop()

	if a.backupCronExpr != "" {
		a.backupCron = cron.New()
		if _, err := a.backupCron.AddFunc(a.backupCronExpr, a.project.autosaveBackup); err != nil {
			log.Error("Failed to schedule project backups: %v", err)
			a.backupCron = nil
		} else {
			a.backupCron.Start()
		}
	}
}

// Stop signals the loop and waits for it to exit. Stopping twice is a no-op.
func (a *Autosaver) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCh)
		a.wg.Wait()

		a.mu.Lock()
		if a.backupCron != nil {
			<-a.backupCron.Stop().Done()
			a.backupCron = nil
		}
		a.mu.Unlock()
	})
}

// loop checkpoints the project on every tick while the dirty flag is set. A
// failed write is logged and the loop carries on; autosave never ends a run.
func (a *Autosaver) loop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			a.project.autosaveTick()
		}
	}
}
