package telemetry

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sampler periodically reads the runtime heap size into a gauge, so a
// scrape series shows each role's memory curve over a run.
type Sampler struct {
	gauge    prometheus.Gauge
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// StartSampler launches the sampling goroutine. Call Stop to end it.
func StartSampler(gauge prometheus.Gauge, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = time.Second
	}
	s := &Sampler{
		gauge:    gauge,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Sampler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sample()
	for {
		select {
		case <-ticker.C:
			s.sample()
		case <-s.stop:
			return
		}
	}
}

func (s *Sampler) sample() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.gauge.Set(float64(ms.HeapAlloc))
}

// Stop ends the sampling goroutine and waits for it to exit.
func (s *Sampler) Stop() {
	close(s.stop)
	<-s.done
}
