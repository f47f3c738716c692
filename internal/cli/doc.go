// Package cli is the MailTrack staff console: a line-oriented REPL whose
// commands drive the tracker store, the status lifecycle, comment threads
// and the intake flow. Notices are printed as one-line toasts.
package cli
