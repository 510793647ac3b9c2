package domain

import "errors"

var (
	// ErrValidation is deliberately coarse: it never says which field is missing.
	ErrValidation = errors.New("please fill in all required fields")

	ErrIntegrationUnavailable = errors.New("integration unavailable")
	ErrExternalCall           = errors.New("external call failed")
	ErrNotFound               = errors.New("not found")

	ErrUnlockPending   = errors.New("unlock already in progress")
	ErrAlreadyUnlocked = errors.New("contact already unlocked")
	ErrNoPendingUnlock = errors.New("no unlock in progress")
	ErrContactLocked   = errors.New("contact is locked")

	ErrNoAudio = errors.New("no audio data received")
)
