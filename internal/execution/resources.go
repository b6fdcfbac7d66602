package execution

import (
	"errors"
	"io"
)

// resource is a stream opened for one run.
type resource struct {
	name     string
	closer   io.Closer
	released bool
}

// resourceTracker releases every stream a run opened exactly once, whichever way the run ends.
type resourceTracker struct {
	items []*resource
}

func (t *resourceTracker) track(name string, closer io.Closer) *resource {
	r := &resource{name: name, closer: closer}
	t.items = append(t.items, r)
	return r
}

func (t *resourceTracker) release(r *resource) error {
	if r == nil || r.released {
		return nil
	}
	r.released = true
	return r.closer.Close()
}

func (t *resourceTracker) releaseAll() error {
	var errs []error
	for _, r := range t.items {
		errs = append(errs, t.release(r))
	}
	return errors.Join(errs...)
}
