package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubscriberFunc receives one Delivery per emitted frame. It is invoked
// synchronously from the engine's own sampler goroutine, once per
// subscriber, in subscription order. A panicking subscriber is recovered
// (see emit); a callback that blocks holds up the sampler loop and every
// later subscriber, so callbacks must return promptly.
type SubscriberFunc func(Delivery)

type subscriberEntry struct {
	id uuid.UUID
	cb SubscriberFunc
}

// CaptureEngine is the singleton capture-encode-fan-out pipeline. Only one
// instance exists per process; Initialize/Instance/Shutdown manage its
// lifecycle explicitly so tests can reset state deterministically instead
// of relying on process exit.
type CaptureEngine struct {
	logger *zap.Logger
	source ScreenSource
	codec  ImageCodec
	real   ScreenSize

	accountant *MemoryAccountant
	metrics    *Metrics
	controller *Controller
	limits     Limits

	// mu guards every field below it: the profile/quality the hot loop
	// reads each tick, and the subscriber list external callers mutate.
	// Only one goroutine (run) ever drives the sampler/encode/emit
	// sequence; subscribe/unsubscribe/quality-update are comparatively
	// rare control-plane operations that take mu directly rather than
	// being funneled through the hot loop.
	mu          sync.Mutex
	profile     DisplayProfile
	quality     QualityConfig
	subscribers []subscriberEntry
	running     bool
	cancel      context.CancelFunc

	wg sync.WaitGroup

	// releaseMu guards releaseTimers, the set of still-pending delayed
	// memory-accountant releases scheduled by emit. Kept separate from mu
	// so a release firing never contends with the hot loop's control-plane
	// lock; stopLoop drains this set so Shutdown cancels every release
	// still outstanding instead of leaking timers past the engine's life.
	releaseMu     sync.Mutex
	releaseTimers map[*time.Timer]struct{}
}

var (
	singletonMu sync.Mutex
	singleton   *CaptureEngine
)

// Initialize creates the singleton CaptureEngine if one does not already
// exist, selecting a DisplayProfile from the real screen width. Calling it
// again before Shutdown returns the existing instance unchanged.
func Initialize(real ScreenSize, source ScreenSource, codec ImageCodec, logger *zap.Logger) *CaptureEngine {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	if singleton != nil {
		return singleton
	}

	profile := SelectProfile(real.Width)
	limits := DefaultLimits()
	singleton = &CaptureEngine{
		logger:        logger,
		source:        source,
		codec:         codec,
		real:          real,
		accountant:    NewMemoryAccountant(int64(512) * 1024 * 1024),
		metrics:       NewMetrics(),
		controller:    NewController(limits),
		limits:        limits,
		profile:       profile,
		quality:       NewQualityConfig(profile),
		releaseTimers: make(map[*time.Timer]struct{}),
	}
	return singleton
}

// SetMemoryCeiling overrides the default 512MB in-flight-byte ceiling; call
// after Initialize and before the first Subscribe.
func (e *CaptureEngine) SetMemoryCeiling(bytes int64) {
	e.accountant = NewMemoryAccountant(bytes)
}

// SetLimits overrides the coalesce wait, controller cadence, and static
// width/quality clamp range that Initialize otherwise seeds from
// DefaultLimits; call after Initialize and before the first Subscribe so
// the running loop and controller never observe a torn update.
func (e *CaptureEngine) SetLimits(limits Limits) {
	e.limits = limits
	e.controller = NewController(limits)
}

// Instance returns the current singleton, or nil if Initialize has not
// been called (or Shutdown has since torn it down).
func Instance() *CaptureEngine {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	return singleton
}

// Shutdown tears down the singleton: stops the sampler loop if running and
// clears the package-level reference so a subsequent Initialize starts
// fresh.
func Shutdown() {
	singletonMu.Lock()
	e := singleton
	singleton = nil
	singletonMu.Unlock()

	if e != nil {
		e.stopLoop()
	}
}

// Subscribe registers cb to receive every subsequent emitted frame and
// starts the sampler loop if this is the first subscriber. The returned
// function unsubscribes; it is idempotent and safe to call more than once
// or concurrently with other unsubscribes.
func (e *CaptureEngine) Subscribe(cb SubscriberFunc) (unsubscribe func()) {
	e.mu.Lock()
	id := uuid.New()
	e.subscribers = append(e.subscribers, subscriberEntry{id: id, cb: cb})
	shouldStart := len(e.subscribers) == 1 && !e.running
	e.mu.Unlock()

	if shouldStart {
		e.startLoop()
	}

	var once sync.Once
	return func() {
		once.Do(func() { e.unsubscribeByID(id) })
	}
}

func (e *CaptureEngine) unsubscribeByID(id uuid.UUID) {
	e.mu.Lock()
	idx := -1
	for i, s := range e.subscribers {
		if s.id == id {
			idx = i
			break
		}
	}
	if idx >= 0 {
		e.subscribers = append(e.subscribers[:idx], e.subscribers[idx+1:]...)
	}
	empty := len(e.subscribers) == 0
	e.mu.Unlock()

	if empty {
		e.stopLoop()
	}
}

// SubscriberCount reports the number of currently active subscribers.
func (e *CaptureEngine) SubscriberCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subscribers)
}

// UpdateQuality applies an externally driven quality-update message. A nil
// field is left untouched; an out-of-bounds field is rejected. When
// anything actually changes, the rolling processing-time window is reset
// so the controller's next evaluation isn't judging the new settings
// against samples gathered under the old ones.
func (e *CaptureEngine) UpdateQuality(width, jpegQuality, fps *int) {
	e.mu.Lock()
	changed := ApplyExternalUpdate(&e.quality, e.limits, width, jpegQuality, fps)
	e.mu.Unlock()

	if changed {
		e.metrics.ResetWindow()
	}
}

func (e *CaptureEngine) startLoop() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.mu.Unlock()

	e.logger.Info("capture engine starting")
	e.wg.Add(1)
	go e.run(ctx)
}

func (e *CaptureEngine) stopLoop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.wg.Wait()

	e.cancelPendingReleases()
	e.metrics.ClearHash()
	e.metrics.ResetWindow()
	e.metrics.ResetCounters()
	e.logger.Info("capture engine stopped")
}

// run is the engine's single owning goroutine: it is the only place that
// samples, dedups, coalesces, encodes, and emits. Subscribe/unsubscribe and
// UpdateQuality are the only other writers to shared state, and they only
// ever touch the mutex-guarded profile/quality/subscribers fields, never
// the loop-local state below.
func (e *CaptureEngine) run(ctx context.Context) {
	defer e.wg.Done()

	sampleTimer := time.NewTimer(e.nextSampleDelay(0))
	defer sampleTimer.Stop()

	statsTicker := time.NewTicker(statsResetInterval)
	defer statsTicker.Stop()

	coalesceFire := make(chan struct{}, 1)
	var coalesceTimer *time.Timer
	stopCoalesce := func() {
		if coalesceTimer != nil {
			coalesceTimer.Stop()
			coalesceTimer = nil
		}
	}
	defer stopCoalesce()

	armCoalesce := func(wait time.Duration) {
		if coalesceTimer != nil {
			return
		}
		coalesceTimer = time.AfterFunc(wait, func() {
			select {
			case coalesceFire <- struct{}{}:
			default:
			}
		})
	}

	var pending *Frame
	encodeBusy := false
	lastEmit := time.Now().Add(-time.Hour)
	lastControllerRun := time.Now()

	// encodeDone carries the result of an encode running on its own
	// worker goroutine back onto run's serialized queue. Buffered by one
	// so the worker never blocks handing its result off, even if run is
	// momentarily busy with another case.
	type encodeResult struct {
		encoded   *EncodedFrame
		err       error
		elapsedMs float64
	}
	encodeDone := make(chan encodeResult, 1)

	// startEncode offloads the image work — decode/resize/JPEG-encode —
	// to a worker goroutine per spec §5 ("awaiting the encoder" is a
	// suspension point, not a blocking call on the sampler loop itself).
	// Everything else (dedup, coalesce, emit, controller) still executes
	// only on this goroutine.
	startEncode := func(frame *Frame) {
		encodeBusy = true
		go func() {
			start := time.Now()
			encoded, err := e.encode(frame)
			elapsedMs := float64(time.Since(start).Microseconds()) / 1000.0
			encodeDone <- encodeResult{encoded: encoded, err: err, elapsedMs: elapsedMs}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-statsTicker.C:
			e.metrics.ResetCounters()

		case <-sampleTimer.C:
			intervalMs := e.computeAdaptiveIntervalMs()
			elapsed := time.Since(lastEmit)
			pressure := e.accountant.Pressure()

			skip := encodeBusy ||
				elapsed < time.Duration(intervalMs)*time.Millisecond ||
				(pressure && elapsed < time.Duration(intervalMs)*3*time.Millisecond/2)

			if skip {
				e.metrics.IncrementDropped()
			} else if raw, err := e.source.Capture(ctx); err != nil {
				e.logger.Error("screen capture failed", zap.Error(err))
			} else {
				digest := CalculateFrameHash(raw)
				last, has := e.metrics.LastHash()
				if has && digest == last {
					e.metrics.IncrementDropped()
				} else {
					e.metrics.SetLastHash(digest)
					pending = &Frame{Data: raw, Real: e.real}
					armCoalesce(e.limits.CoalesceMaxWait)
				}
			}
			sampleTimer.Reset(e.nextSampleDelay(intervalMs))

		case <-coalesceFire:
			coalesceTimer = nil
			if pending != nil && !encodeBusy {
				frame := pending
				pending = nil
				startEncode(frame)
			}

		case res := <-encodeDone:
			encodeBusy = false

			if res.err != nil {
				e.logger.Error("frame encode failed", zap.Error(res.err))
			} else {
				e.emit(res.encoded, res.elapsedMs)
				lastEmit = time.Now()

				if time.Since(lastControllerRun) >= e.limits.PerformanceCheckInterval {
					e.runController()
					lastControllerRun = time.Now()
				}
			}
		}
	}
}

// nextSampleDelay returns the wait before the next sample attempt:
// max(adaptiveIntervalMs, 1000/fps).
func (e *CaptureEngine) nextSampleDelay(intervalMs int) time.Duration {
	if intervalMs <= 0 {
		intervalMs = e.computeAdaptiveIntervalMs()
	}

	e.mu.Lock()
	fps := e.quality.FPS
	e.mu.Unlock()
	if fps <= 0 {
		fps = 1
	}

	fpsMs := 1000 / fps
	if fpsMs > intervalMs {
		intervalMs = fpsMs
	}
	return time.Duration(intervalMs) * time.Millisecond
}

// computeAdaptiveIntervalMs derives the minimum spacing between samples
// from the real resolution, current memory pressure, and recent encode
// latency, so a struggling pipeline backs off on its own cadence before
// the quality controller has a chance to step in.
func (e *CaptureEngine) computeAdaptiveIntervalMs() int {
	base := MinFrameIntervalMs
	switch {
	case e.real.Width >= 3840:
		base = 50
	case e.real.Width >= 2560:
		base = 40
	}

	if e.accountant.Pressure() {
		base *= 1.5
	}

	avg := e.metrics.AverageProcessingMs()
	if avg > 0.7*base {
		base = math.Max(base, avg*1.2)
	}

	return int(base)
}

func (e *CaptureEngine) encode(frame *Frame) (*EncodedFrame, error) {
	img, err := e.codec.Decode(frame.Data)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	e.mu.Lock()
	quality := e.quality
	e.mu.Unlock()

	dims := ComputeScaledDims(quality.Width, frame.Real)

	// Filter choice reacts to sustained load (the full rolling window);
	// high-motion detection reacts to only the last 5 samples. Two
	// different windows over the same metric, per spec.
	avgProcessing := e.metrics.AverageProcessingMs()
	recentAvg := e.metrics.RecentAverage(5)

	if w, h := img.Bounds(); w != dims.Width || h != dims.Height {
		filter := FilterBilinear
		if avgProcessing > 0.8*MinFrameIntervalMs {
			filter = FilterNearestNeighbor
		}
		img = img.Resize(dims.Width, dims.Height, filter)
	}

	jpegQuality := quality.JPEGQuality
	if recentAvg > 0.7*MinFrameIntervalMs {
		jpegQuality = clamp(jpegQuality-10, e.limits.MinQuality, e.limits.MaxQuality)
	}

	data, err := img.EncodeJPEG(jpegQuality, JPEGOptions{Progressive: false, ChromaSubsampling: true, FastEntropy: true})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return &EncodedFrame{Data: data, Dims: dims, Size: len(data)}, nil
}

// emit records the frame in the memory accountant, splits it into chunks
// if the active profile requires it, and fans it out to every subscriber
// in subscription order. A panicking subscriber callback is recovered and
// logged so it cannot take down the sampler loop or block later
// subscribers in the same emit.
func (e *CaptureEngine) emit(encoded *EncodedFrame, processingMs float64) {
	e.mu.Lock()
	profile := e.profile
	subs := append([]subscriberEntry(nil), e.subscribers...)
	e.mu.Unlock()

	e.metrics.RecordProcessingTime(processingMs)
	e.metrics.IncrementSent(time.Now().UnixMilli())

	size := int64(encoded.Size)
	e.accountant.Add(size)
	e.scheduleRelease(size)

	var delivery Delivery
	if NeedsChunking(encoded.Size, profile) {
		chunks := SplitChunks(encoded.Data)
		delivery = Delivery{Chunked: &ChunkedFrame{Chunks: chunks, Total: len(chunks), Dims: encoded.Dims}}
	} else {
		delivery = Delivery{Encoded: encoded}
	}

	for _, s := range subs {
		e.deliverSafely(s.cb, delivery)
	}
}

// scheduleRelease arms the 1s delayed release of size bytes from the
// memory accountant and tracks the timer so stopLoop can cancel it if the
// engine shuts down before it fires.
func (e *CaptureEngine) scheduleRelease(size int64) {
	var timer *time.Timer
	timer = time.AfterFunc(time.Second, func() {
		e.releaseMu.Lock()
		delete(e.releaseTimers, timer)
		e.releaseMu.Unlock()
		e.accountant.Release(size)
	})

	e.releaseMu.Lock()
	e.releaseTimers[timer] = struct{}{}
	e.releaseMu.Unlock()
}

// cancelPendingReleases stops every release timer still outstanding. Timers
// that have already fired (or are mid-fire) are left alone; Timer.Stop is a
// no-op in that case and the fired callback removes itself from the set.
func (e *CaptureEngine) cancelPendingReleases() {
	e.releaseMu.Lock()
	defer e.releaseMu.Unlock()
	for timer := range e.releaseTimers {
		timer.Stop()
		delete(e.releaseTimers, timer)
	}
}

func (e *CaptureEngine) deliverSafely(cb SubscriberFunc, delivery Delivery) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("subscriber callback panicked", zap.Any("recover", r))
		}
	}()
	cb(delivery)
}

func (e *CaptureEngine) runController() {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.metrics.Snapshot()
	interval := float64(e.computeAdaptiveIntervalMs())
	in := ControllerInputs{
		AvgProcessingMs:  snap.AvgProcessingMs,
		AdaptiveInterval: interval,
		DropRate:         snap.DropRate,
		Pressure:         e.accountant.Pressure(),
		HighRes:          e.real.Width >= 3840,
	}
	e.controller.Evaluate(&e.quality, e.profile, in)
}

// Status is a read-only snapshot of the engine's current state, exposed
// through the optional status endpoint.
type Status struct {
	Profile        string
	Quality        QualityConfig
	Subscribers    int
	Running        bool
	MemoryPressure bool
	MemoryBytes    int64
	Metrics        Snapshot
}

// StatusSnapshot returns the engine's current status for introspection.
func (e *CaptureEngine) StatusSnapshot() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Profile:        e.profile.Name,
		Quality:        e.quality,
		Subscribers:    len(e.subscribers),
		Running:        e.running,
		MemoryPressure: e.accountant.Pressure(),
		MemoryBytes:    e.accountant.Total(),
		Metrics:        e.metrics.Snapshot(),
	}
}
