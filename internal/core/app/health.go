package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type availability interface {
	Available() error
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

// Check reports "up" when every enabled component works and "degraded"
// otherwise. Disabled components never degrade the status.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}
	degrade := func(component, detail string) {
		status.Status = "degraded"
		status.Components[component] = detail
	}

	if s.app.Pipeline == nil {
		degrade("pipeline", "missing")
	} else {
		status.Components["pipeline"] = "ok"
	}

	checkCollaborator := func(name string, enabled bool, c any) {
		if !enabled {
			status.Components[name] = "disabled"
			return
		}
		if av, ok := c.(availability); ok {
			if err := av.Available(); err != nil {
				degrade(name, err.Error())
				return
			}
		}
		status.Components[name] = "ok"
	}
	checkCollaborator("executor", s.app.executor != nil, s.app.executor)
	checkCollaborator("visualizer", s.app.visualizer != nil, s.app.visualizer)

	switch {
	case s.app.store == nil:
		status.Components["history"] = "disabled"
	default:
		if _, err := s.app.store.LoadRuns(ctx, time.Now().UTC(), 1); err != nil {
			degrade("history", err.Error())
		} else if s.app.writer != nil {
			status.Components["history"] = fmt.Sprintf("ok (%d pending)", s.app.writer.Pending())
		} else {
			status.Components["history"] = "ok"
		}
	}

	return status
}
