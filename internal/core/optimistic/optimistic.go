package optimistic

import "errors"

// ErrRejected is returned when the remote side answered but did not accept the change
var ErrRejected = errors.New("change rejected by backend")

// Apply runs the optimistic update protocol. snapshot captures the value that
// restore puts back, apply changes local state before the remote call, and
// commit performs the remote call. Local state is restored when commit fails
// or reports false.
func Apply[T any](snapshot func() T, apply func(), commit func() (bool, error), restore func(T)) error {
	prev := snapshot()
	apply()

	ok, err := commit()
	if err != nil {
		restore(prev)
		return err
	}
	if !ok {
		restore(prev)
		return ErrRejected
	}
	return nil
}
