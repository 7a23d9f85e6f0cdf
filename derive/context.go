package derive

import "context"

type result struct {
	password string
	err      error
}

// DeriveContext is Derive with a caller-side deadline.  The derivation
// itself cannot be interrupted; if ctx ends first, DeriveContext returns
// ctx.Err() at once and the abandoned derivation wipes its own buffers
// when it finishes.  It works on a private copy of req.MasterSecret, so
// the caller may clear theirs as soon as this returns.
func (d *Deriver) DeriveContext(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	master := d.acquire("master", CopySecret(req.MasterSecret))
	req.MasterSecret = nil

	done := make(chan result, 1)
	go func() {
		pw, err := d.derive(req, master)
		done <- result{pw, err}
	}()

	select {
	case r := <-done:
		return r.password, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
