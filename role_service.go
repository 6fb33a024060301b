package admin

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// ChangeRoleMessage is the role mutation request for a single target row
type ChangeRoleMessage struct {
	UserID  string `json:"userId" form:"userId"`
	NewRole Role   `json:"newRole" form:"newRole"`
}

func (m ChangeRoleMessage) Type() string { return "profile.role.change" }

// Validate runs client-side validation; failures here never reach the store
func (m ChangeRoleMessage) Validate() error {
	if m.UserID == "" {
		return ErrMissingUserID
	}

	if m.NewRole == RoleUnset {
		return ErrMissingRole
	}

	if err := validation.Validate(string(m.NewRole),
		validation.In(string(RoleUser), string(RoleAdmin), string(RoleModerator)),
	); err != nil {
		return ErrInvalidRole.WithMetadata(map[string]any{
			"role": string(m.NewRole),
		})
	}

	return nil
}

// ChangeRoleHandler applies a validated role change atomically against the
// profile store. Exactly one row is mutated per call; the result is
// observable only as success or failure.
type ChangeRoleHandler struct {
	store  ProfileStore
	logger Logger
	sink   ActivitySink
}

// NewChangeRoleHandler returns a handler bound to the given store
func NewChangeRoleHandler(store ProfileStore) *ChangeRoleHandler {
	return &ChangeRoleHandler{
		store:  store,
		logger: defLogger{},
		sink:   noopActivitySink{},
	}
}

func (h *ChangeRoleHandler) WithLogger(l Logger) *ChangeRoleHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *ChangeRoleHandler) WithActivitySink(s ActivitySink) *ChangeRoleHandler {
	h.sink = normalizeActivitySink(s)
	return h
}

// Execute validates and applies the role change. Store errors are returned
// untouched so the operator sees the reported reason verbatim. An update
// that raises no error but returns zero rows yields ErrNoEffect.
func (h *ChangeRoleHandler) Execute(ctx context.Context, msg ChangeRoleMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	rows, err := h.store.UpdateRole(ctx, msg.UserID, msg.NewRole)
	if err != nil {
		h.logger.Error("role update failed for %s: %v", msg.UserID, err)
		return err
	}

	if len(rows) == 0 {
		h.logger.Warn("role update touched zero rows for %s", msg.UserID)
		return ErrNoEffect.WithMetadata(map[string]any{
			"user_id": msg.UserID,
			"role":    string(msg.NewRole),
		})
	}

	updated := rows[0]
	h.recordEvent(ctx, ActivityEvent{
		EventType: ActivityEventRoleChanged,
		UserID:    updated.ID.String(),
		Email:     updated.Email,
		ToRole:    updated.Role,
	})

	return nil
}

func (h *ChangeRoleHandler) recordEvent(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := normalizeActivitySink(h.sink).Record(ctx, event); err != nil {
		h.logger.Warn("role change activity sink error: %v", err)
	}
}

// DeleteAccountMessage requests removal of a single account
type DeleteAccountMessage struct {
	UserID string `json:"userId" form:"userId"`
}

func (m DeleteAccountMessage) Type() string { return "profile.delete" }

// Validate runs client-side validation
func (m DeleteAccountMessage) Validate() error {
	if m.UserID == "" {
		return ErrMissingUserID
	}
	return nil
}

// DeleteAccountHandler removes the target row, with the same zero-rows
// detection as role changes. With a SubjectRemover wired, the credential
// record goes with the profile row; otherwise only the profile row is
// removed.
type DeleteAccountHandler struct {
	store   ProfileStore
	remover SubjectRemover
	logger  Logger
	sink    ActivitySink
}

// NewDeleteAccountHandler returns a handler bound to the given store
func NewDeleteAccountHandler(store ProfileStore) *DeleteAccountHandler {
	return &DeleteAccountHandler{
		store:  store,
		logger: defLogger{},
		sink:   noopActivitySink{},
	}
}

func (h *DeleteAccountHandler) WithLogger(l Logger) *DeleteAccountHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *DeleteAccountHandler) WithActivitySink(s ActivitySink) *DeleteAccountHandler {
	h.sink = normalizeActivitySink(s)
	return h
}

func (h *DeleteAccountHandler) WithSubjectRemover(r SubjectRemover) *DeleteAccountHandler {
	h.remover = r
	return h
}

func (h *DeleteAccountHandler) Execute(ctx context.Context, msg DeleteAccountMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	affected, err := h.delete(ctx, msg.UserID)
	if err != nil {
		h.logger.Error("account delete failed for %s: %v", msg.UserID, err)
		return err
	}

	if affected == 0 {
		return ErrNoEffect.WithMetadata(map[string]any{
			"user_id": msg.UserID,
		})
	}

	event := ActivityEvent{
		EventType:  ActivityEventProfileDelete,
		UserID:     msg.UserID,
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.sink).Record(ctx, event); err != nil {
		h.logger.Warn("delete activity sink error: %v", err)
	}

	return nil
}

func (h *DeleteAccountHandler) delete(ctx context.Context, id string) (int64, error) {
	if h.remover != nil {
		return h.remover.RemoveSubject(ctx, id)
	}
	return h.store.Delete(ctx, id)
}
