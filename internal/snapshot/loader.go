package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"auctionSolver/internal/liquidity"
	"auctionSolver/internal/model"
	"auctionSolver/internal/poolmath"
)

// TokenRecord is one reserve entry of a pool record. Numbers are decimal
// strings; rate and the scaling fraction default to one when omitted.
type TokenRecord struct {
	Address  string `json:"address"`
	Balance  string `json:"balance"`
	ScaleNum string `json:"scale_num,omitempty"`
	ScaleDen string `json:"scale_den,omitempty"`
	Rate     string `json:"rate,omitempty"`
}

// PoolRecord is one snapshot line. Kind selects which parameter fields apply.
type PoolRecord struct {
	ID     string        `json:"id"`
	Kind   string        `json:"kind"`
	FeeNum string        `json:"fee_num,omitempty"`
	FeeDen string        `json:"fee_den,omitempty"`
	Tokens []TokenRecord `json:"tokens,omitempty"`

	Weights map[string]string `json:"weights,omitempty"`

	AmpFactor      string `json:"amp_factor,omitempty"`
	AmpPrecision   string `json:"amp_precision,omitempty"`
	SurgeThreshold string `json:"surge_threshold,omitempty"`
	MaxSurgeFee    string `json:"max_surge_fee,omitempty"`

	SqrtAlpha  string `json:"sqrt_alpha,omitempty"`
	SqrtBeta   string `json:"sqrt_beta,omitempty"`
	Root3Alpha string `json:"root3_alpha,omitempty"`

	Eclp *EclpRecord `json:"eclp,omitempty"`

	ReClamm  *ReClammRecord  `json:"reclamm,omitempty"`
	QuantAMM *QuantAMMRecord `json:"quantamm,omitempty"`

	PoolAddress string `json:"pool_address,omitempty"`
	FeeTier     uint32 `json:"fee_tier,omitempty"`

	Asset string `json:"asset,omitempty"`
	Vault string `json:"vault,omitempty"`

	MakerToken  string `json:"maker_token,omitempty"`
	TakerToken  string `json:"taker_token,omitempty"`
	MakerAmount string `json:"maker_amount,omitempty"`
	TakerAmount string `json:"taker_amount,omitempty"`
}

// EclpRecord carries the ellipse parameters (18 decimals) and the derived
// values (38 decimals, signed).
type EclpRecord struct {
	Alpha     string `json:"alpha"`
	Beta      string `json:"beta"`
	C         string `json:"c"`
	S         string `json:"s"`
	Lambda    string `json:"lambda"`
	TauAlphaX string `json:"tau_alpha_x"`
	TauAlphaY string `json:"tau_alpha_y"`
	TauBetaX  string `json:"tau_beta_x"`
	TauBetaY  string `json:"tau_beta_y"`
	U         string `json:"u"`
	V         string `json:"v"`
	W         string `json:"w"`
	Z         string `json:"z"`
	DSq       string `json:"d_sq"`
}

// ReClammRecord is the rebalancing state at snapshot time.
type ReClammRecord struct {
	VirtualBalances    [2]string `json:"virtual_balances"`
	DailyShiftBase     string    `json:"daily_shift_base"`
	CenterednessMargin string    `json:"centeredness_margin"`
	StartFourthRoot    string    `json:"start_fourth_root_price_ratio"`
	EndFourthRoot      string    `json:"end_fourth_root_price_ratio"`
	UpdateStart        uint64    `json:"price_ratio_update_start"`
	UpdateEnd          uint64    `json:"price_ratio_update_end"`
	LastTimestamp      uint64    `json:"last_timestamp"`
}

// QuantAMMRecord is the weight-update schedule at snapshot time. Multipliers
// are signed per-second wei deltas.
type QuantAMMRecord struct {
	Weights           map[string]string `json:"weights"`
	Multipliers       map[string]string `json:"multipliers"`
	LastUpdateTime    uint64            `json:"last_update_time"`
	LastInteropTime   uint64            `json:"last_interop_time"`
	MaxTradeSizeRatio string            `json:"max_trade_size_ratio"`
}

// Providers supplies the external dependencies some edge kinds need, plus the
// quote-time clock for the time-dependent families. Kinds whose provider is
// nil are skipped with a warning so offline snapshots still load.
type Providers struct {
	Oracle     liquidity.ConcentratedOracle
	Previewer  liquidity.VaultPreviewer
	EpsilonBps uint64
	Timestamp  uint64
}

// Load reads a JSONL snapshot file and builds the routing index.
func Load(path string, providers Providers, logger *zap.Logger) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	edges, err := Read(file, providers, logger)
	if err != nil {
		return nil, err
	}
	return Build(edges), nil
}

// Read decodes pool records line by line and builds their edges.
func Read(r io.Reader, providers Providers, logger *zap.Logger) ([]liquidity.Quoter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var edges []liquidity.Quoter
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var record PoolRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("snapshot line %d: %w", line, err)
		}
		edge, err := buildEdge(record, providers)
		if err != nil {
			return nil, fmt.Errorf("snapshot line %d (%s): %w", line, record.ID, err)
		}
		if edge == nil {
			logger.Warn("skipping snapshot record without provider",
				zap.String("id", record.ID),
				zap.String("kind", record.Kind))
			continue
		}
		edges = append(edges, edge)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	logger.Info("snapshot loaded", zap.Int("edges", len(edges)))
	return edges, nil
}

func buildEdge(record PoolRecord, providers Providers) (liquidity.Quoter, error) {
	fee, err := parseFee(record.FeeNum, record.FeeDen)
	if err != nil {
		return nil, err
	}

	switch record.Kind {
	case "constant_product":
		if len(record.Tokens) != 2 {
			return nil, fmt.Errorf("constant product needs 2 tokens, have %d", len(record.Tokens))
		}
		tokenA, err := parseAddress(record.Tokens[0].Address)
		if err != nil {
			return nil, err
		}
		tokenB, err := parseAddress(record.Tokens[1].Address)
		if err != nil {
			return nil, err
		}
		balanceA, err := parseU256(record.Tokens[0].Balance)
		if err != nil {
			return nil, err
		}
		balanceB, err := parseU256(record.Tokens[1].Balance)
		if err != nil {
			return nil, err
		}
		return liquidity.NewConstantProductPool(record.ID, tokenA, tokenB, balanceA, balanceB, fee)

	case "weighted":
		entries, err := parseReserves(record.Tokens)
		if err != nil {
			return nil, err
		}
		weights, err := parseAddressAmounts(record.Weights)
		if err != nil {
			return nil, fmt.Errorf("weights: %w", err)
		}
		return liquidity.NewWeightedPool(record.ID, entries, weights, fee)

	case "stable", "stable_surge":
		entries, err := parseReserves(record.Tokens)
		if err != nil {
			return nil, err
		}
		ampFactor, err := parseU256(record.AmpFactor)
		if err != nil {
			return nil, fmt.Errorf("amp factor: %w", err)
		}
		ampPrecision, err := parseU256(record.AmpPrecision)
		if err != nil {
			return nil, fmt.Errorf("amp precision: %w", err)
		}
		if record.Kind == "stable" {
			return liquidity.NewStablePool(record.ID, entries, ampFactor, ampPrecision, fee)
		}
		threshold, err := parseU256(record.SurgeThreshold)
		if err != nil {
			return nil, fmt.Errorf("surge threshold: %w", err)
		}
		maxSurge, err := parseU256(record.MaxSurgeFee)
		if err != nil {
			return nil, fmt.Errorf("max surge fee: %w", err)
		}
		return liquidity.NewStableSurgePool(record.ID, entries, ampFactor, ampPrecision, fee, threshold, maxSurge)

	case "gyro_2clp":
		entries, err := parseReserves(record.Tokens)
		if err != nil {
			return nil, err
		}
		sqrtAlpha, err := parseU256(record.SqrtAlpha)
		if err != nil {
			return nil, fmt.Errorf("sqrt alpha: %w", err)
		}
		sqrtBeta, err := parseU256(record.SqrtBeta)
		if err != nil {
			return nil, fmt.Errorf("sqrt beta: %w", err)
		}
		return liquidity.NewGyro2CLPPool(record.ID, entries, sqrtAlpha, sqrtBeta, fee)

	case "gyro_3clp":
		entries, err := parseReserves(record.Tokens)
		if err != nil {
			return nil, err
		}
		root3Alpha, err := parseU256(record.Root3Alpha)
		if err != nil {
			return nil, fmt.Errorf("root3 alpha: %w", err)
		}
		return liquidity.NewGyro3CLPPool(record.ID, entries, root3Alpha, fee)

	case "gyro_eclp":
		entries, err := parseReserves(record.Tokens)
		if err != nil {
			return nil, err
		}
		if record.Eclp == nil {
			return nil, fmt.Errorf("missing eclp parameters")
		}
		params, derived, err := parseEclp(record.Eclp)
		if err != nil {
			return nil, err
		}
		return liquidity.NewGyroECLPPool(record.ID, entries, params, derived, fee)

	case "reclamm":
		entries, err := parseReserves(record.Tokens)
		if err != nil {
			return nil, err
		}
		if record.ReClamm == nil {
			return nil, fmt.Errorf("missing reclamm state")
		}
		state, err := parseReClamm(record.ReClamm, providers.Timestamp)
		if err != nil {
			return nil, err
		}
		return liquidity.NewReClammPool(record.ID, entries, state, fee)

	case "quantamm":
		entries, err := parseReserves(record.Tokens)
		if err != nil {
			return nil, err
		}
		if record.QuantAMM == nil {
			return nil, fmt.Errorf("missing quantamm state")
		}
		state, err := parseQuantAMM(record.QuantAMM, providers.Timestamp)
		if err != nil {
			return nil, err
		}
		return liquidity.NewQuantAMMPool(record.ID, entries, state, fee)

	case "concentrated":
		if providers.Oracle == nil {
			return nil, nil
		}
		if len(record.Tokens) != 2 {
			return nil, fmt.Errorf("concentrated needs 2 tokens, have %d", len(record.Tokens))
		}
		pool, err := parseAddress(record.PoolAddress)
		if err != nil {
			return nil, fmt.Errorf("pool address: %w", err)
		}
		tokenA, err := parseAddress(record.Tokens[0].Address)
		if err != nil {
			return nil, err
		}
		tokenB, err := parseAddress(record.Tokens[1].Address)
		if err != nil {
			return nil, err
		}
		return liquidity.NewConcentratedPool(record.ID, pool, tokenA, tokenB, record.FeeTier, providers.Oracle)

	case "erc4626":
		if providers.Previewer == nil {
			return nil, nil
		}
		asset, err := parseAddress(record.Asset)
		if err != nil {
			return nil, fmt.Errorf("asset: %w", err)
		}
		vault, err := parseAddress(record.Vault)
		if err != nil {
			return nil, fmt.Errorf("vault: %w", err)
		}
		return liquidity.NewVaultEdge(record.ID, asset, vault, providers.EpsilonBps, providers.Previewer)

	case "limit_order":
		maker, err := parseAddress(record.MakerToken)
		if err != nil {
			return nil, fmt.Errorf("maker token: %w", err)
		}
		taker, err := parseAddress(record.TakerToken)
		if err != nil {
			return nil, fmt.Errorf("taker token: %w", err)
		}
		makerAmount, err := parseU256(record.MakerAmount)
		if err != nil {
			return nil, fmt.Errorf("maker amount: %w", err)
		}
		takerAmount, err := parseU256(record.TakerAmount)
		if err != nil {
			return nil, fmt.Errorf("taker amount: %w", err)
		}
		return liquidity.NewLimitOrder(record.ID, maker, taker, makerAmount, takerAmount)

	default:
		return nil, fmt.Errorf("unknown pool kind %q", record.Kind)
	}
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseU256(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("missing numeric field")
	}
	v := new(uint256.Int)
	if err := v.SetFromDecimal(s); err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, nil
}

func parseBig(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("missing numeric field")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("parse %q as integer", s)
	}
	return v, nil
}

func parseFee(num, den string) (model.Rational, error) {
	if num == "" && den == "" {
		return model.Rational{Num: new(uint256.Int), Den: uint256.NewInt(1)}, nil
	}
	n, err := parseU256(num)
	if err != nil {
		return model.Rational{}, fmt.Errorf("fee numerator: %w", err)
	}
	d, err := parseU256(den)
	if err != nil {
		return model.Rational{}, fmt.Errorf("fee denominator: %w", err)
	}
	return model.NewRational(n, d)
}

func parseReserves(tokens []TokenRecord) ([]liquidity.TokenReserve, error) {
	entries := make([]liquidity.TokenReserve, 0, len(tokens))
	for i, token := range tokens {
		address, err := parseAddress(token.Address)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		balance, err := parseU256(token.Balance)
		if err != nil {
			return nil, fmt.Errorf("token %d balance: %w", i, err)
		}
		entry := liquidity.TokenReserve{
			Token:         address,
			Balance:       balance,
			ScalingFactor: model.Rational{Num: uint256.NewInt(1), Den: uint256.NewInt(1)},
		}
		if token.ScaleNum != "" || token.ScaleDen != "" {
			num, err := parseU256(token.ScaleNum)
			if err != nil {
				return nil, fmt.Errorf("token %d scale numerator: %w", i, err)
			}
			den, err := parseU256(token.ScaleDen)
			if err != nil {
				return nil, fmt.Errorf("token %d scale denominator: %w", i, err)
			}
			entry.ScalingFactor = model.Rational{Num: num, Den: den}
		}
		if token.Rate != "" {
			rate, err := parseU256(token.Rate)
			if err != nil {
				return nil, fmt.Errorf("token %d rate: %w", i, err)
			}
			entry.Rate = rate
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseAddressAmounts(values map[string]string) (map[common.Address]*uint256.Int, error) {
	out := make(map[common.Address]*uint256.Int, len(values))
	for key, value := range values {
		address, err := parseAddress(key)
		if err != nil {
			return nil, err
		}
		amount, err := parseU256(value)
		if err != nil {
			return nil, err
		}
		out[address] = amount
	}
	return out, nil
}

func parseEclp(record *EclpRecord) (poolmath.EclpParams, poolmath.EclpDerived, error) {
	var params poolmath.EclpParams
	var derived poolmath.EclpDerived
	var firstErr error
	field := func(name, raw string) *big.Int {
		if firstErr != nil {
			return nil
		}
		value, err := parseBig(raw)
		if err != nil {
			firstErr = fmt.Errorf("eclp %s: %w", name, err)
			return nil
		}
		return value
	}
	params.Alpha = field("alpha", record.Alpha)
	params.Beta = field("beta", record.Beta)
	params.C = field("c", record.C)
	params.S = field("s", record.S)
	params.Lambda = field("lambda", record.Lambda)
	derived.TauAlpha.X = field("tau_alpha_x", record.TauAlphaX)
	derived.TauAlpha.Y = field("tau_alpha_y", record.TauAlphaY)
	derived.TauBeta.X = field("tau_beta_x", record.TauBetaX)
	derived.TauBeta.Y = field("tau_beta_y", record.TauBetaY)
	derived.U = field("u", record.U)
	derived.V = field("v", record.V)
	derived.W = field("w", record.W)
	derived.Z = field("z", record.Z)
	derived.DSq = field("d_sq", record.DSq)
	return params, derived, firstErr
}

func parseReClamm(record *ReClammRecord, now uint64) (liquidity.ReClammState, error) {
	var state liquidity.ReClammState
	for i, raw := range record.VirtualBalances {
		value, err := parseU256(raw)
		if err != nil {
			return state, fmt.Errorf("virtual balance %d: %w", i, err)
		}
		state.VirtualBalances[i] = value
	}
	var err error
	if state.DailyShiftBase, err = parseU256(record.DailyShiftBase); err != nil {
		return state, fmt.Errorf("daily shift base: %w", err)
	}
	if state.CenterednessMargin, err = parseU256(record.CenterednessMargin); err != nil {
		return state, fmt.Errorf("centeredness margin: %w", err)
	}
	if state.StartFourthRootPriceRatio, err = parseU256(record.StartFourthRoot); err != nil {
		return state, fmt.Errorf("start price ratio: %w", err)
	}
	if state.EndFourthRootPriceRatio, err = parseU256(record.EndFourthRoot); err != nil {
		return state, fmt.Errorf("end price ratio: %w", err)
	}
	state.PriceRatioUpdateStart = record.UpdateStart
	state.PriceRatioUpdateEnd = record.UpdateEnd
	state.LastTimestamp = record.LastTimestamp
	state.CurrentTimestamp = now
	if state.CurrentTimestamp < state.LastTimestamp {
		state.CurrentTimestamp = state.LastTimestamp
	}
	return state, nil
}

func parseQuantAMM(record *QuantAMMRecord, now uint64) (liquidity.QuantAMMState, error) {
	state := liquidity.QuantAMMState{
		Weights:         make(map[common.Address]liquidity.QuantAMMWeights, len(record.Weights)),
		LastUpdateTime:  record.LastUpdateTime,
		LastInteropTime: record.LastInteropTime,
	}
	for key, raw := range record.Weights {
		address, err := parseAddress(key)
		if err != nil {
			return state, fmt.Errorf("weight token: %w", err)
		}
		weight, err := parseU256(raw)
		if err != nil {
			return state, fmt.Errorf("weight for %s: %w", key, err)
		}
		multiplier := new(big.Int)
		if rawMultiplier, ok := record.Multipliers[key]; ok {
			if multiplier, err = parseBig(rawMultiplier); err != nil {
				return state, fmt.Errorf("multiplier for %s: %w", key, err)
			}
		}
		state.Weights[address] = liquidity.QuantAMMWeights{Weight: weight, Multiplier: multiplier}
	}
	var err error
	if state.MaxTradeSizeRatio, err = parseU256(record.MaxTradeSizeRatio); err != nil {
		return state, fmt.Errorf("max trade size ratio: %w", err)
	}
	state.CurrentTimestamp = now
	if state.CurrentTimestamp < state.LastUpdateTime {
		state.CurrentTimestamp = state.LastUpdateTime
	}
	return state, nil
}
