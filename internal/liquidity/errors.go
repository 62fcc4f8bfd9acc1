package liquidity

import "errors"

var (
	// Pool construction errors.
	ErrDuplicateToken                  = errors.New("liquidity: duplicate token in reserves")
	ErrInvalidReserves                 = errors.New("liquidity: invalid reserve set")
	ErrZeroScalingFactor               = errors.New("liquidity: zero scaling factor")
	ErrInvalidAmplificationPrecision   = errors.New("liquidity: invalid amplification precision")
	ErrSurgeParameterOutOfRange        = errors.New("liquidity: surge parameter out of range")
	ErrInvalidPoolParameters           = errors.New("liquidity: invalid pool parameters")

	// Quote-time errors.
	ErrUnknownTokenPair   = errors.New("liquidity: token pair not served by pool")
	ErrQuoterUnavailable  = errors.New("liquidity: external quoter unavailable")
)
