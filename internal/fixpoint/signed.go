package fixpoint

import (
	"math/big"
)

// Signed fixed point over int256, used by the Gyro E-CLP and QuantAMM math.
// Rounding is magnitude-based: "down" truncates toward zero and "up" rounds
// away from zero, regardless of sign. This intentionally lives in a separate
// namespace from the unsigned ops; the rounding semantics are not the same.

var (
	// SOne is 10^18 as a signed value.
	SOne = big.NewInt(1e18)
	// SOneXp is 10^38, the extended 38-decimal unit.
	SOneXp = newBigInt("100000000000000000000000000000000000000")

	sTen19 = newBigInt("10000000000000000000")

	maxInt256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	minInt256 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))

	bigOne = big.NewInt(1)
)

func newBigInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("fixpoint: bad integer literal " + s)
	}
	return v
}

func checkInt256(v *big.Int) (*big.Int, error) {
	if v.Cmp(maxInt256) > 0 {
		return nil, ErrOverflow
	}
	if v.Cmp(minInt256) < 0 {
		return nil, ErrUnderflow
	}
	return v, nil
}

// SAdd returns a + b with int256 bounds checking.
func SAdd(a, b *big.Int) (*big.Int, error) {
	return checkInt256(new(big.Int).Add(a, b))
}

// SSub returns a - b with int256 bounds checking.
func SSub(a, b *big.Int) (*big.Int, error) {
	return checkInt256(new(big.Int).Sub(a, b))
}

// MulDownMag returns a*b / 10^18 truncated toward zero.
func MulDownMag(a, b *big.Int) (*big.Int, error) {
	product := new(big.Int).Mul(a, b)
	if _, err := checkInt256(product); err != nil {
		return nil, err
	}
	return product.Quo(product, SOne), nil
}

// MulDownMagU is MulDownMag without the overflow check, for call sites where
// the reference math proves the product fits.
func MulDownMagU(a, b *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Quo(product, SOne)
}

// MulUpMag returns a*b / 10^18 rounded away from zero.
func MulUpMag(a, b *big.Int) (*big.Int, error) {
	product := new(big.Int).Mul(a, b)
	if _, err := checkInt256(product); err != nil {
		return nil, err
	}
	return roundUpMag(product, SOne), nil
}

// MulUpMagU is MulUpMag without the overflow check.
func MulUpMagU(a, b *big.Int) *big.Int {
	return roundUpMag(new(big.Int).Mul(a, b), SOne)
}

// DivDownMag returns a * 10^18 / b truncated toward zero.
func DivDownMag(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	inflated := new(big.Int).Mul(a, SOne)
	if _, err := checkInt256(inflated); err != nil {
		return nil, ErrDivInterval
	}
	return inflated.Quo(inflated, b), nil
}

// DivDownMagU is DivDownMag without the inflation check.
func DivDownMagU(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	inflated := new(big.Int).Mul(a, SOne)
	return inflated.Quo(inflated, b), nil
}

// DivUpMag returns a * 10^18 / b rounded away from zero.
func DivUpMag(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	if b.Sign() < 0 {
		b = new(big.Int).Neg(b)
		a = new(big.Int).Neg(a)
	}
	inflated := new(big.Int).Mul(a, SOne)
	if _, err := checkInt256(inflated); err != nil {
		return nil, ErrDivInterval
	}
	return roundUpMag(inflated, b), nil
}

// DivUpMagU is DivUpMag without the inflation check.
func DivUpMagU(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	if b.Sign() < 0 {
		b = new(big.Int).Neg(b)
		a = new(big.Int).Neg(a)
	}
	return roundUpMag(new(big.Int).Mul(a, SOne), b), nil
}

// MulXp returns a*b / 10^38 truncated toward zero.
func MulXp(a, b *big.Int) (*big.Int, error) {
	product := new(big.Int).Mul(a, b)
	if _, err := checkInt256(product); err != nil {
		return nil, err
	}
	return product.Quo(product, SOneXp), nil
}

// MulXpU is MulXp without the overflow check.
func MulXpU(a, b *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Quo(product, SOneXp)
}

// DivXp returns a * 10^38 / b truncated toward zero.
func DivXp(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	inflated := new(big.Int).Mul(a, SOneXp)
	if _, err := checkInt256(inflated); err != nil {
		return nil, ErrDivInterval
	}
	return inflated.Quo(inflated, b), nil
}

// DivXpU is DivXp without the inflation check.
func DivXpU(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	inflated := new(big.Int).Mul(a, SOneXp)
	return inflated.Quo(inflated, b), nil
}

// MulDownXpToNp multiplies an 18-decimal value a by a 38-decimal value b and
// returns an 18-decimal result rounded down. The 38-decimal operand is split
// as b = b1*10^19 + b2 to keep intermediate products inside int256.
func MulDownXpToNp(a, b *big.Int) (*big.Int, error) {
	b1 := new(big.Int).Quo(b, sTen19)
	b2 := new(big.Int).Rem(b, sTen19)
	prod1 := new(big.Int).Mul(a, b1)
	if _, err := checkInt256(prod1); err != nil {
		return nil, err
	}
	prod2 := new(big.Int).Mul(a, b2)
	if _, err := checkInt256(prod2); err != nil {
		return nil, err
	}
	return mulDownXpToNpCombine(prod1, prod2), nil
}

// MulDownXpToNpU is MulDownXpToNp without the overflow checks.
func MulDownXpToNpU(a, b *big.Int) *big.Int {
	b1 := new(big.Int).Quo(b, sTen19)
	b2 := new(big.Int).Rem(b, sTen19)
	prod1 := new(big.Int).Mul(a, b1)
	prod2 := new(big.Int).Mul(a, b2)
	return mulDownXpToNpCombine(prod1, prod2)
}

// MulUpXpToNp is the upward-rounding variant of MulDownXpToNp. The rounding
// branch differs when both partial products are non-positive.
func MulUpXpToNp(a, b *big.Int) (*big.Int, error) {
	b1 := new(big.Int).Quo(b, sTen19)
	b2 := new(big.Int).Rem(b, sTen19)
	prod1 := new(big.Int).Mul(a, b1)
	if _, err := checkInt256(prod1); err != nil {
		return nil, err
	}
	prod2 := new(big.Int).Mul(a, b2)
	if _, err := checkInt256(prod2); err != nil {
		return nil, err
	}
	return mulUpXpToNpCombine(prod1, prod2), nil
}

// MulUpXpToNpU is MulUpXpToNp without the overflow checks.
func MulUpXpToNpU(a, b *big.Int) *big.Int {
	b1 := new(big.Int).Quo(b, sTen19)
	b2 := new(big.Int).Rem(b, sTen19)
	prod1 := new(big.Int).Mul(a, b1)
	prod2 := new(big.Int).Mul(a, b2)
	return mulUpXpToNpCombine(prod1, prod2)
}

func mulDownXpToNpCombine(prod1, prod2 *big.Int) *big.Int {
	sum := new(big.Int).Quo(prod2, sTen19)
	sum.Add(prod1, sum)
	if prod1.Sign() >= 0 && prod2.Sign() >= 0 {
		return sum.Quo(sum, sTen19)
	}
	sum.Add(sum, bigOne)
	sum.Quo(sum, sTen19)
	return sum.Sub(sum, bigOne)
}

func mulUpXpToNpCombine(prod1, prod2 *big.Int) *big.Int {
	sum := new(big.Int).Quo(prod2, sTen19)
	sum.Add(prod1, sum)
	if prod1.Sign() <= 0 && prod2.Sign() <= 0 {
		return sum.Quo(sum, sTen19)
	}
	sum.Sub(sum, bigOne)
	sum.Quo(sum, sTen19)
	return sum.Add(sum, bigOne)
}

// roundUpMag divides num by den rounding away from zero. den must be positive.
func roundUpMag(num, den *big.Int) *big.Int {
	if num.Sign() > 0 {
		num.Sub(num, bigOne)
		num.Quo(num, den)
		return num.Add(num, bigOne)
	}
	if num.Sign() < 0 {
		num.Add(num, bigOne)
		num.Quo(num, den)
		return num.Sub(num, bigOne)
	}
	return num
}
