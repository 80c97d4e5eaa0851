package service

import (
	"time"

	"github.com/rs/zerolog"
)

// Tracer получает начало и конец фаз запроса. В meta у End всегда есть
// "elapsed". Реализации не должны блокировать.
type Tracer interface {
	Start(phase string, meta map[string]any)
	End(phase string, meta map[string]any)
}

type nopTracer struct{}

func (nopTracer) Start(string, map[string]any) {}
func (nopTracer) End(string, map[string]any)   {}

// LogTracer пишет концы фаз в zerolog на уровне debug.
type LogTracer struct {
	Log zerolog.Logger
}

func (LogTracer) Start(string, map[string]any) {}

func (t LogTracer) End(phase string, meta map[string]any) {
	t.Log.Debug().Str("phase", phase).Fields(meta).Msg("phase done")
}

func (m *Matcher) span(phase string, meta map[string]any) func(map[string]any) {
	m.tracer.Start(phase, meta)
	t0 := time.Now()
	return func(end map[string]any) {
		if end == nil {
			end = map[string]any{}
		}
		end["elapsed"] = time.Since(t0)
		m.tracer.End(phase, end)
	}
}
