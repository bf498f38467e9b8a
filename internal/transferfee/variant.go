// variant.go - Limb layouts and the public constants shared by every proof.

package transferfee

import (
	"fmt"
	"strings"
	"sync"

	"feeproof/internal/encryption"
)

// Variant selects how the transfer amount is split into limbs.
type Variant uint8

const (
	// Narrow splits into a 16-bit low limb and a 32-bit high limb and adds a
	// negated low-limb term to the range proof.
	Narrow Variant = iota
	// Wide splits into two 32-bit limbs.
	Wide
)

const (
	// MaxFeeBasisPoints is the basis-point denominator, i.e. a rate of 100%.
	MaxFeeBasisPoints = 10_000

	newBalanceBits = 64
	deltaFeeBits   = 64
	narrowLoBits   = 16
)

type limbLayout struct {
	loBits, hiBits int
	negatedLo      bool
}

func (v Variant) layout() limbLayout {
	if v == Wide {
		return limbLayout{loBits: 32, hiBits: 32}
	}
	return limbLayout{loBits: narrowLoBits, hiBits: 32, negatedLo: true}
}

func (v Variant) valid() bool {
	return v == Narrow || v == Wide
}

func (v Variant) String() string {
	switch v {
	case Narrow:
		return "narrow"
	case Wide:
		return "wide"
	default:
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
}

// ParseVariant accepts "narrow" or "wide".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "narrow":
		return Narrow, nil
	case "wide":
		return Wide, nil
	default:
		return 0, fmt.Errorf("unknown variant %q", s)
	}
}

// LoBits is the width of the low limb.
func (v Variant) LoBits() int { return v.layout().loBits }

// HiBits is the width of the high limb.
func (v Variant) HiBits() int { return v.layout().hiBits }

// MaxAmount is the largest amount the layout can carry.
func (v Variant) MaxAmount() uint64 {
	l := v.layout()
	total := l.loBits + l.hiBits
	if total >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(total) - 1
}

// rangeBitLengths lists the range proof widths in proof order:
// new balance, lo, [negated lo], hi, delta_fee, 10000 - delta_fee.
func (v Variant) rangeBitLengths() []int {
	l := v.layout()
	out := []int{newBalanceBits, l.loBits}
	if l.negatedLo {
		out = append(out, l.loBits)
	}
	return append(out, l.hiBits, deltaFeeBits, deltaFeeBits)
}

// constantCommitments returns the zero-opening commitments to 2^16 - 1 and to
// MaxFeeBasisPoints. They are computed on first use and never modified.
var constantCommitments = sync.OnceValues(func() (maxLo, maxFeeBasisPoints encryption.Commitment) {
	return encryption.Encode(1<<narrowLoBits - 1), encryption.Encode(MaxFeeBasisPoints)
})
