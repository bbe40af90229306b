package store

import "context"

// project maps a snapshot stream to one of its fields, dropping consecutive
// equal values. The output closes when src does.
func project[T any](ctx context.Context, src <-chan snapshot, fn func(snapshot) T, equal func(a, b T) bool) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)

		var (
			last T
			sent bool
		)
		for snap := range src {
			v := fn(snap)
			if sent && equal(last, v) {
				continue
			}
			select {
			case out <- v:
				last, sent = v, true
			case <-ctx.Done():
				// drain src until the hub closes it
				for range src {
				}
				return
			}
		}
	}()

	return out
}
