package rebalance

import "log/slog"

// unitOfWork makes one triggering operation all-or-nothing. Each sub-step
// registers an apply function and an inverse; when a later step fails, the
// already-applied steps are reverted in reverse order, so no partial state
// (including the exposure mutation from the same invocation) survives.
type unitOfWork struct {
	applied []step
}

type step struct {
	name   string
	revert func()
}

func newUnitOfWork() *unitOfWork {
	return &unitOfWork{}
}

// do runs apply; on success it records revert for a potential rollback, on
// failure it rolls back everything applied so far and returns the error.
// revert may be nil for steps with no inverse.
func (u *unitOfWork) do(name string, apply func() error, revert func()) error {
	if err := apply(); err != nil {
		u.rollback()
		return err
	}
	u.applied = append(u.applied, step{name: name, revert: revert})
	return nil
}

func (u *unitOfWork) rollback() {
	for i := len(u.applied) - 1; i >= 0; i-- {
		s := u.applied[i]
		if s.revert != nil {
			s.revert()
		}
		slog.Debug("rolled back step", "step", s.name)
	}
	u.applied = nil
}
