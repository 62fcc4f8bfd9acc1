package fixpoint

import (
	"errors"
	"math/big"
	"testing"
)

func TestMulDownMagTruncatesTowardZero(t *testing.T) {
	a := big.NewInt(-1)
	got, err := MulDownMag(a, big.NewInt(5e17))
	if err != nil {
		t.Fatalf("mul down mag: %v", err)
	}
	// |-1 * 0.5| floors to 0; sign reapplied afterwards.
	if got.Sign() != 0 {
		t.Fatalf("mul down mag: got %s want 0", got)
	}
}

func TestMulUpMagRoundsAwayFromZero(t *testing.T) {
	got, err := MulUpMag(big.NewInt(-1), big.NewInt(5e17))
	if err != nil {
		t.Fatalf("mul up mag: %v", err)
	}
	if got.Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("mul up mag: got %s want -1", got)
	}

	got, err = MulUpMag(big.NewInt(1), big.NewInt(5e17))
	if err != nil {
		t.Fatalf("mul up mag: %v", err)
	}
	if got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("mul up mag: got %s want 1", got)
	}
}

func TestDivMagRounding(t *testing.T) {
	down, err := DivDownMag(big.NewInt(-1), big.NewInt(3e18))
	if err != nil {
		t.Fatalf("div down mag: %v", err)
	}
	// |-1/3| = 0.333e-18 floors to 0.
	if down.Sign() != 0 {
		t.Fatalf("div down mag: got %s want 0", down)
	}

	up, err := DivUpMag(big.NewInt(-1), big.NewInt(3e18))
	if err != nil {
		t.Fatalf("div up mag: %v", err)
	}
	if up.Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("div up mag: got %s want -1", up)
	}
}

func TestDivUpMagNegativeDenominator(t *testing.T) {
	up, err := DivUpMag(big.NewInt(1), big.NewInt(-3e18))
	if err != nil {
		t.Fatalf("div up mag: %v", err)
	}
	if up.Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("div up mag with negative denominator: got %s want -1", up)
	}
}

func TestSignedDivisionByZero(t *testing.T) {
	if _, err := DivDownMag(big.NewInt(1), new(big.Int)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("div down mag by zero: %v", err)
	}
	if _, err := DivXp(big.NewInt(1), new(big.Int)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("div xp by zero: %v", err)
	}
}

func TestMulXpIdentity(t *testing.T) {
	a := big.NewInt(-123456789)
	got, err := MulXp(a, SOneXp)
	if err != nil {
		t.Fatalf("mul xp: %v", err)
	}
	if got.Cmp(a) != 0 {
		t.Fatalf("mul xp identity: got %s want %s", got, a)
	}
}

func TestMulXpToNpRoundingBracket(t *testing.T) {
	cases := []struct {
		a string
		b string
	}{
		{"1000000000000000000", "100000000000000000000000000000000000001"},
		{"-1000000000000000000", "100000000000000000000000000000000000001"},
		{"123456789123456789", "-33333333333333333333333333333333333333"},
		{"-987654321", "-77777777777777777777777777777777777777"},
	}
	for _, tc := range cases {
		a := newBigInt(tc.a)
		b := newBigInt(tc.b)
		down, err := MulDownXpToNp(a, b)
		if err != nil {
			t.Fatalf("mul down xp to np: %v", err)
		}
		up, err := MulUpXpToNp(a, b)
		if err != nil {
			t.Fatalf("mul up xp to np: %v", err)
		}
		if down.Cmp(up) > 0 {
			t.Fatalf("down %s above up %s for a=%s b=%s", down, up, tc.a, tc.b)
		}
		if diff := new(big.Int).Sub(up, down); diff.Cmp(big.NewInt(1)) > 0 {
			t.Fatalf("rounding gap %s for a=%s b=%s", diff, tc.a, tc.b)
		}
	}
}

func TestMulXpToNpExact(t *testing.T) {
	// 1.0 (18-dec) times 1.0 (38-dec) is exactly 1.0 with no rounding gap.
	down, err := MulDownXpToNp(SOne, SOneXp)
	if err != nil {
		t.Fatalf("mul down xp to np: %v", err)
	}
	up, err := MulUpXpToNp(SOne, SOneXp)
	if err != nil {
		t.Fatalf("mul up xp to np: %v", err)
	}
	if down.Cmp(SOne) != 0 || up.Cmp(SOne) != 0 {
		t.Fatalf("exact product: down=%s up=%s want %s", down, up, SOne)
	}
}

func TestInt256Bounds(t *testing.T) {
	big255 := new(big.Int).Lsh(big.NewInt(1), 200)
	if _, err := MulDownMag(big255, big255); !errors.Is(err, ErrOverflow) {
		t.Fatalf("mul down mag overflow: %v", err)
	}
	neg := new(big.Int).Neg(big255)
	if _, err := MulDownMag(neg, big255); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("mul down mag underflow: %v", err)
	}
}
