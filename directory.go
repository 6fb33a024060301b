package admin

import (
	"context"
	"fmt"
	"sync"
)

// Directory is the operator-facing account list workflow. It keeps the last
// known-good snapshot of the listing: only a confirmed server write triggers
// a refetch, so the view never shows a list it cannot reconcile with the
// store.
type Directory struct {
	store     ProfileStore
	confirmer Confirmer
	change    *ChangeRoleHandler
	remove    *DeleteAccountHandler
	logger    Logger

	mu       sync.Mutex
	snapshot []*Profile
	closed   bool
}

// DirectoryOption customizes directory construction
type DirectoryOption func(*Directory)

// WithDirectoryLogger overrides the default logger
func WithDirectoryLogger(l Logger) DirectoryOption {
	return func(d *Directory) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDirectoryActivitySink propagates the sink to the mutation handlers
func WithDirectoryActivitySink(s ActivitySink) DirectoryOption {
	return func(d *Directory) {
		d.change.WithActivitySink(s)
		d.remove.WithActivitySink(s)
	}
}

// WithDirectorySubjectRemover routes deletions through a remover that also
// destroys the credential record
func WithDirectorySubjectRemover(r SubjectRemover) DirectoryOption {
	return func(d *Directory) {
		d.remove.WithSubjectRemover(r)
	}
}

// NewDirectory builds the directory view over the given store. The
// confirmer is consulted before every mutation; a nil confirmer declines
// everything, which fails closed.
func NewDirectory(store ProfileStore, confirmer Confirmer, opts ...DirectoryOption) *Directory {
	d := &Directory{
		store:     store,
		confirmer: confirmer,
		change:    NewChangeRoleHandler(store),
		remove:    NewDeleteAccountHandler(store),
		logger:    defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d
}

// Users returns the last known-good snapshot
func (d *Directory) Users() []*Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot
}

// Load refetches the full account list. On failure the previous snapshot is
// kept so the operator keeps a reconcilable view.
func (d *Directory) Load(ctx context.Context) ([]*Profile, error) {
	records, err := d.store.List(ctx)
	if err != nil {
		d.logger.Error("directory list failed: %v", err)
		return d.Users(), err
	}

	d.mu.Lock()
	if !d.closed {
		d.snapshot = records
	}
	d.mu.Unlock()

	return records, nil
}

// ChangeRole runs the full interactive workflow for one target row: no-op
// guard, confirmation naming the target email, mutation, then refetch on
// success only.
func (d *Directory) ChangeRole(ctx context.Context, target *Profile, newRole Role) error {
	if target == nil {
		return ErrMissingUserID
	}

	if newRole == target.Role {
		return ErrRoleUnchanged
	}

	prompt := fmt.Sprintf("Change role of %s to %s?", target.Email, newRole)
	if !d.confirm(ctx, prompt) {
		return ErrConfirmationDeclined
	}

	msg := ChangeRoleMessage{
		UserID:  target.ID.String(),
		NewRole: newRole,
	}

	return d.apply(ctx, func() error {
		return d.change.Execute(ctx, msg)
	})
}

// Delete runs the interactive deletion workflow for one target row
func (d *Directory) Delete(ctx context.Context, target *Profile) error {
	if target == nil {
		return ErrMissingUserID
	}

	prompt := fmt.Sprintf("Delete user %s?", target.Email)
	if !d.confirm(ctx, prompt) {
		return ErrConfirmationDeclined
	}

	msg := DeleteAccountMessage{UserID: target.ID.String()}

	return d.apply(ctx, func() error {
		return d.remove.Execute(ctx, msg)
	})
}

// ApplyRoleChange applies an already-confirmed role change request, as
// submitted by the HTTP surface, refetching on success.
func (d *Directory) ApplyRoleChange(ctx context.Context, msg ChangeRoleMessage) error {
	return d.apply(ctx, func() error {
		return d.change.Execute(ctx, msg)
	})
}

// ApplyDelete applies an already-confirmed deletion request
func (d *Directory) ApplyDelete(ctx context.Context, msg DeleteAccountMessage) error {
	return d.apply(ctx, func() error {
		return d.remove.Execute(ctx, msg)
	})
}

// Close marks the view unmounted; late responses no longer replace the
// snapshot.
func (d *Directory) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

// apply runs the mutation and refetches only after a confirmed write; a
// failure leaves the snapshot untouched.
func (d *Directory) apply(ctx context.Context, mutate func() error) error {
	if err := mutate(); err != nil {
		return err
	}

	if _, err := d.Load(ctx); err != nil {
		// The write is confirmed; a refetch failure only leaves the
		// listing stale, it does not undo success.
		d.logger.Warn("refetch after mutation failed: %v", err)
	}

	return nil
}

func (d *Directory) confirm(ctx context.Context, prompt string) bool {
	if d.confirmer == nil {
		return false
	}
	return d.confirmer.Confirm(ctx, prompt)
}
