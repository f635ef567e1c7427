package mmf

import "golang.org/x/exp/constraints"

// morph computes the next value for a compare-and-swap retry loop from the
// currently observed one. Returning an error aborts the loop without
// retrying; returning old unchanged is treated as a successful no-op that
// skips the swap entirely.
type morph[T constraints.Integer] func(old T) (next T, err error)

// casRetry repeatedly loads, computes, and attempts to commit a new value
// until the swap succeeds or f aborts the loop. This is the generic shape
// behind every Control Word transition: load, check invariants, try to
// commit, retry on a lost race.
func casRetry[T constraints.Integer](load func() T, swap func(old, next T) bool, f morph[T]) error {
	for {
		old := load()
		next, err := f(old)
		if err != nil {
			return err
		}
		if old == next || swap(old, next) {
			return nil
		}
	}
}
