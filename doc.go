// Package admin implements the account administration console: an
// authorization gate deciding whether the current session may enter the
// admin surface, and a role mutation workflow applied against the profile
// store.
//
// Authorization gate:
//   - AccessGate owns the checking/denied/admitted state machine. Admission
//     is recomputed from the session provider and the profile store on every
//     check, and every lookup failure resolves to denial, never admission.
//   - A provider-pushed invalidation event forces the gate to denied at any
//     time. Subscriptions are cancellable so repeated mounts do not leak
//     listeners.
//
// Role mutations:
//   - ChangeRoleHandler validates inputs before touching the store, updates
//     exactly one row, and confirms the write by reading the row back. An
//     update that reports no error but returns zero rows is classified as
//     ErrNoEffect, distinct from store failures.
//
// Activity sinks:
//   - ActivitySink is a light-weight emitter describing admissions, sign
//     outs, role changes, and deletions. Sinks run best-effort (errors are
//     logged) so callers can forward events without blocking the console.
package admin
