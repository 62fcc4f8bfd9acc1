package liquidity

// Per-family settlement gas estimates, used for route ranking tie-breaks.
// Rough calldata-plus-execution figures; exactness is not required, only
// stable relative ordering.
const (
	gasConstantProduct = 90_000
	gasWeighted        = 100_000
	gasStable          = 120_000
	gasStableSurge     = 130_000
	gasGyro2CLP        = 140_000
	gasGyro3CLP        = 150_000
	gasGyroE           = 180_000
	gasReClamm         = 150_000
	gasQuantAMM        = 150_000
	gasConcentrated    = 150_000
	gasERC4626         = 60_000
	gasLimitOrder      = 66_000
)
