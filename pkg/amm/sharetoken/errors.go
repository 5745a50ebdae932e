package sharetoken

import "errors"

var (
	// ErrExpired is returned when a signed approval's deadline has passed.
	ErrExpired = errors.New("sharetoken: EXPIRED")
	// ErrInvalidSignature is returned when the recovered signer is null or
	// does not match the claimed owner.
	ErrInvalidSignature = errors.New("sharetoken: INVALID_SIGNATURE")
	// ErrInsufficientBalance is returned by Transfer/TransferFrom when the
	// source balance is below the requested amount.
	ErrInsufficientBalance = errors.New("sharetoken: insufficient balance")
	// ErrInsufficientAllowance is returned by TransferFrom when the
	// spender's allowance is below the requested amount.
	ErrInsufficientAllowance = errors.New("sharetoken: insufficient allowance")
)
