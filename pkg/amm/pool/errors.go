package pool

import "errors"

var (
	ErrLocked                     = errors.New("pool: LOCKED")
	ErrOverflow                   = errors.New("pool: OVERFLOW")
	ErrInsufficientLiquidityMinted = errors.New("pool: INSUFFICIENT_LIQUIDITY_MINTED")
	ErrInsufficientLiquidityBurned = errors.New("pool: INSUFFICIENT_LIQUIDITY_BURNED")
	ErrInsufficientOutputAmount    = errors.New("pool: INSUFFICIENT_OUTPUT_AMOUNT")
	ErrInsufficientLiquidity       = errors.New("pool: INSUFFICIENT_LIQUIDITY")
	ErrInvalidTo                   = errors.New("pool: INVALID_TO")
	ErrInsufficientInputAmount     = errors.New("pool: INSUFFICIENT_INPUT_AMOUNT")
	ErrK                           = errors.New("pool: K")
	ErrTransferFailed              = errors.New("pool: TRANSFER_FAILED")
)
