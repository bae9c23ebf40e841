package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"devmon/internal/models"

	"golang.org/x/sync/errgroup"
)

const (
	// samplePeriod is the fixed tick period. Not configurable at runtime.
	samplePeriod = 2 * time.Second

	// cpuAlertThreshold is the CPU load percentage above which a tick counts
	// toward the alert streak.
	cpuAlertThreshold = 90.0

	// cpuAlertStreak is how many consecutive high-load ticks fire one alert.
	cpuAlertStreak = 3

	alertTitle = "High CPU load"
	alertBody  = "CPU load has stayed above 90% for several samples. Consider closing heavy applications."
)

// MetricsSource provides the seven per-tick metric requests. All methods may
// block; the sampler calls them concurrently under one context per tick.
type MetricsSource interface {
	CPULoad(ctx context.Context) (float64, error)
	Memory(ctx context.Context) (models.MemoryStatus, error)
	Filesystems(ctx context.Context) ([]models.DiskStatus, error)
	Graphics(ctx context.Context) ([]models.GPUStatus, error)
	OSLabel(ctx context.Context) (string, error)
	CPUIdentity(ctx context.Context) (models.CPUIdentity, error)
	Processes(ctx context.Context) ([]models.ProcessStatus, error)
}

// Sampler owns the periodic sampling loop: one timer, sequential
// non-overlapping ticks, an alert-streak counter and the active publish
// targets. At most one loop runs per Sampler; Start replaces a running loop.
type Sampler struct {
	source   MetricsSource
	notifier Notifier

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	// highStreak counts consecutive ticks with CPU load above the threshold.
	// It persists across Start/Stop cycles for the process lifetime and is
	// only touched from the tick path, which Stop serializes against.
	highStreak int
}

func NewSampler(source MetricsSource, notifier Notifier) *Sampler {
	return &Sampler{
		source:   source,
		notifier: notifier,
	}
}

// Start begins sampling, publishing each successful tick to onSnapshot and
// each failed tick to onError. A previously running loop is stopped first,
// so two timers never coexist.
func (s *Sampler) Start(onSnapshot func(*models.Snapshot), onError func(string)) {
	s.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(ctx, done, onSnapshot, onError)
	slog.Info("[SAMPLER] started", "period", samplePeriod)
}

// Stop cancels future ticks and waits for the loop goroutine to exit.
// Idempotent: safe to call when not running.
func (s *Sampler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	slog.Info("[SAMPLER] stopped")
}

// run drives the fixed-period loop. The tick body executes inline, so ticks
// never overlap: a tick slower than the period delays later ticks instead of
// stacking them.
func (s *Sampler) run(ctx context.Context, done chan struct{}, onSnapshot func(*models.Snapshot), onError func(string)) {
	defer close(done)

	ticker := time.NewTicker(samplePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, onSnapshot, onError)
		}
	}
}

// tick gathers all seven metric requests concurrently, fails as a whole when
// any request fails, applies the alert threshold and publishes the snapshot.
// The loop keeps its schedule regardless of the outcome.
func (s *Sampler) tick(ctx context.Context, onSnapshot func(*models.Snapshot), onError func(string)) {
	var (
		load        float64
		memory      models.MemoryStatus
		filesystems []models.DiskStatus
		graphics    []models.GPUStatus
		osLabel     string
		identity    models.CPUIdentity
		processes   []models.ProcessStatus
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { var err error; load, err = s.source.CPULoad(gctx); return err })
	g.Go(func() error { var err error; memory, err = s.source.Memory(gctx); return err })
	g.Go(func() error { var err error; filesystems, err = s.source.Filesystems(gctx); return err })
	g.Go(func() error { var err error; graphics, err = s.source.Graphics(gctx); return err })
	g.Go(func() error { var err error; osLabel, err = s.source.OSLabel(gctx); return err })
	g.Go(func() error { var err error; identity, err = s.source.CPUIdentity(gctx); return err })
	g.Go(func() error { var err error; processes, err = s.source.Processes(gctx); return err })

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			// Stopped mid-gather; discard rather than report a cancellation.
			return
		}
		slog.Warn("[SAMPLER] tick failed", "err", err)
		onError(err.Error())
		return
	}

	snapshot := buildSnapshot(time.Now(), load, memory, filesystems, graphics, osLabel, identity, processes)
	s.checkThreshold(load)

	if ctx.Err() != nil {
		// Stopped after the gather finished; suppress the stale publish.
		return
	}
	onSnapshot(snapshot)
}

// checkThreshold tracks consecutive high-load ticks and fires a one-shot
// alert when the streak reaches cpuAlertStreak, then resets the counter so
// the alert can repeat after another full streak.
func (s *Sampler) checkThreshold(load float64) {
	if load <= cpuAlertThreshold {
		s.highStreak = 0
		return
	}

	s.highStreak++
	if s.highStreak == cpuAlertStreak {
		slog.Info("[SAMPLER] sustained high CPU load", "load", load, "streak", cpuAlertStreak)
		s.notifier.Notify(alertTitle, alertBody)
		s.highStreak = 0
	}
}

// buildSnapshot assembles the immutable tick record. Memory used percentage
// is derived from totals, disk comes from the first mounted volume (omitted
// when none are reported), the GPU block is present only when a controller
// exists, and processes are ranked by memory and truncated.
func buildSnapshot(now time.Time, load float64, memory models.MemoryStatus, filesystems []models.DiskStatus, graphics []models.GPUStatus, osLabel string, identity models.CPUIdentity, processes []models.ProcessStatus) *models.Snapshot {
	if memory.TotalBytes > 0 {
		memory.UsedPercent = float64(memory.UsedBytes) / float64(memory.TotalBytes) * 100
	}

	var diskStatus *models.DiskStatus
	if len(filesystems) > 0 {
		first := filesystems[0]
		diskStatus = &first
	} else {
		slog.Debug("[SAMPLER] no mounted filesystems reported, omitting disk")
	}

	var gpuStatus *models.GPUStatus
	if len(graphics) > 0 {
		first := graphics[0]
		gpuStatus = &first
	}

	return &models.Snapshot{
		Timestamp: now,
		CPULoad:   load,
		CPU:       identity,
		Memory:    memory,
		Disk:      diskStatus,
		GPU:       gpuStatus,
		OS:        osLabel,
		Processes: RankProcesses(processes, topProcessCount),
	}
}
