package background

import (
	"context"
	"log/slog"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type StatusSetter interface {
	SetServing(serving bool)
}

type BackgroundTasks struct {
	Probes        map[string]Pinger
	Health        StatusSetter
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
}

func NewBackgroundTasks(probes map[string]Pinger, health StatusSetter) *BackgroundTasks {
	return &BackgroundTasks{
		Probes:        probes,
		Health:        health,
		ProbeInterval: 10 * time.Second,
		ProbeTimeout:  2 * time.Second,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startHealthProbe(ctx)
}

func (bt *BackgroundTasks) startHealthProbe(ctx context.Context) {
	ticker := time.NewTicker(bt.ProbeInterval)
	defer ticker.Stop()

	healthy := bt.CheckOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := bt.CheckOnce(ctx)
			if now != healthy {
				slog.Info("dependency health changed", "serving", now)
				healthy = now
			}
		}
	}
}

// CheckOnce pings every probe and publishes the combined status.
func (bt *BackgroundTasks) CheckOnce(ctx context.Context) bool {
	serving := true
	for name, probe := range bt.Probes {
		probeCtx, cancel := context.WithTimeout(ctx, bt.ProbeTimeout)
		err := probe.Ping(probeCtx)
		cancel()
		if err != nil {
			slog.Warn("dependency ping failed", "dependency", name, "error", err)
			serving = false
		}
	}
	if bt.Health != nil {
		bt.Health.SetServing(serving)
	}
	return serving
}
