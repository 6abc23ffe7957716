package errors

import stderrors "errors"

var (
	// ErrAccountInUse is returned when an account is created at an address that
	// already holds one, regardless of which program owns it.
	ErrAccountInUse    = stderrors.New("account: address already in use")
	ErrAccountNotFound = stderrors.New("account: not found")
	// ErrAccountOwner is returned when an account exists but belongs to a
	// different program than the caller expected.
	ErrAccountOwner = stderrors.New("account: unexpected owner program")
)
