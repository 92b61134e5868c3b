package envguard

import (
	stderrors "errors"

	"github.com/kbukum/testkit/errors"
)

// prior records one key's value before directives were applied.
// present=false means the key did not exist and restoration removes it.
type prior struct {
	value   string
	present bool
}

// snapshot maps directive-touched keys to their prior values. It is taken
// immediately before apply and consumed by restore; never persisted.
type snapshot struct {
	priors map[string]prior
}

// capture records the current value of every given key. Keys outside the
// list are deliberately ignored: restoration is directive-scoped, not a
// full-namespace rollback.
func capture(store Store, keys []string) *snapshot {
	snap := &snapshot{priors: make(map[string]prior, len(keys))}
	for _, key := range keys {
		v, ok := store.Lookup(key)
		snap.priors[key] = prior{value: v, present: ok}
	}
	return snap
}

// restore puts every snapshotted key back: prior value reinstated, or
// removed if the key had been absent. Every key is attempted even when an
// earlier one fails; failures are aggregated.
func restore(store Store, snap *snapshot) error {
	var errs []error
	for key, p := range snap.priors {
		var err error
		if p.present {
			err = store.Set(key, p.value)
		} else {
			err = store.Unset(key)
		}
		if err != nil {
			op := "restore"
			errs = append(errs, errors.PlatformMutation(op, key, err))
		}
	}
	return stderrors.Join(errs...)
}
