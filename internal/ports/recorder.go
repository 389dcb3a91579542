package ports

import (
	"time"

	"github.com/bnema/ngmetro/internal/domain"
)

// RunRecorder receives pipeline telemetry. Implementations must be safe for
// concurrent use.
type RunRecorder interface {
	CacheLoaded(status domain.CacheStatus)
	StageCompleted(stage domain.Stage, elapsed time.Duration, err error)
	Reauthenticated()
	RunCompleted(elapsed time.Duration, err error)
}

type NopRecorder struct{}

func (NopRecorder) CacheLoaded(domain.CacheStatus)                    {}
func (NopRecorder) StageCompleted(domain.Stage, time.Duration, error) {}
func (NopRecorder) Reauthenticated()                                  {}
func (NopRecorder) RunCompleted(time.Duration, error)                 {}
