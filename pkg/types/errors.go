package types

import "errors"

// Sentinel errors grouped by kind, wrapped with fmt.Errorf("%w: ...") at
// call sites throughout the module.
var (
	// ErrInvalidInput covers non-positive amounts, malformed addresses, and
	// out-of-range scalars.
	ErrInvalidInput = errors.New("types: invalid input")

	// ErrInsufficientFunds means the sender's balance is below the amount
	// at send time.
	ErrInsufficientFunds = errors.New("types: insufficient funds")

	// ErrInvalidProof means a ZK sub-proof failed: range, bit-OR, equality,
	// subtraction, or Schnorr.
	ErrInvalidProof = errors.New("types: invalid proof")

	// ErrInvalidTransaction covers signature mismatches, off-curve
	// ciphertext points, and identity-element ciphertexts.
	ErrInvalidTransaction = errors.New("types: invalid transaction")

	// ErrChainInconsistency covers Merkle mismatches, previous-hash
	// breaks, and recomputed block hash differences.
	ErrChainInconsistency = errors.New("types: chain inconsistency")

	// ErrNotFound is a non-fatal miss on a tx_id or address lookup.
	ErrNotFound = errors.New("types: not found")

	// ErrSerialization covers JSON decode failures and schema mismatches.
	ErrSerialization = errors.New("types: serialization error")
)
