package vid

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/mpi-vid/errors"
)

// RemapFunc returns the real id a live mapping must point at after restart.
// Returning the null sentinel drops the mapping.
type RemapFunc[T any] func(virt, oldReal T) T

// Restore walks a snapshot of the live mappings and rebinds each virtual id
// through UpdateMapping, or releases it through OnRemove when remap returns
// the null sentinel. ctx is checked between entries.
func (r *Registry[T]) Restore(ctx context.Context, remap RemapFunc[T]) error {
	snapshot := r.Snapshot()

	var remapped, dropped int
	for _, m := range snapshot {
		if err := ctx.Err(); err != nil {
			return errors.Canceled(r.name, err)
		}

		real := remap(m.Virtual, m.Real)
		if real == r.null {
			r.OnRemove(m.Virtual)
			dropped++
			continue
		}
		r.UpdateMapping(m.Virtual, real)
		remapped++
	}

	r.log.Info("restored virtual ids",
		zap.Int("remapped", remapped),
		zap.Int("dropped", dropped))
	return nil
}
