// discrete_log.go - Baby-step giant-step recovery of x from x·G for x < 2^32.
//
// The baby-step table maps the compressed encoding of j·G to j for j < 2^16 and is
// built once per process. Giant steps subtract 2^16·G and are split across
// goroutines; a lookup hit at giant step i yields x = i·2^16 + j.

package encryption

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"golang.org/x/sync/errgroup"

	"feeproof/internal/curve"
)

const (
	dlogStepBits   = 16
	dlogBabySteps  = 1 << dlogStepBits
	dlogGiantSteps = 1 << dlogStepBits
	dlogMaxWorkers = 16
	// how often a worker checks whether another worker already found the answer
	dlogCancelCheck = 256
)

var (
	dlogOnce  sync.Once
	dlogTable map[[curve.PointSize]byte]uint32
	// -(2^16)·G
	dlogGiantStep curve.Point
)

func buildDlogTable() {
	table := make(map[[curve.PointSize]byte]uint32, dlogBabySteps)
	var acc bn254.G1Jac
	for j := 0; j < dlogBabySteps; j++ {
		var p curve.Point
		p.FromJacobian(&acc)
		table[p.Bytes()] = uint32(j)
		acc.AddMixed(&pedersenG)
	}
	var step curve.Point
	step.FromJacobian(&acc)
	dlogGiantStep.Neg(&step)
	dlogTable = table
}

// decodeU32 finds x < 2^32 with x·G == target.
func decodeU32(target *curve.Point) (uint64, bool) {
	dlogOnce.Do(buildDlogTable)

	workers := runtime.GOMAXPROCS(0)
	if workers > dlogMaxWorkers {
		workers = dlogMaxWorkers
	}
	chunk := (dlogGiantSteps + workers - 1) / workers

	var (
		found  atomic.Bool
		result atomic.Uint64
		g      errgroup.Group
	)
	for start := 0; start < dlogGiantSteps; start += chunk {
		start := start
		end := min(start+chunk, dlogGiantSteps)
		g.Go(func() error {
			// cur = target - start·2^16·G
			offset := curve.ScalarFromUint64(uint64(start) << dlogStepBits)
			skip := curve.BaseMul(&offset)
			first := curve.Sub(target, &skip)
			var cur bn254.G1Jac
			cur.FromAffine(&first)

			for i := start; i < end; i++ {
				if (i-start)%dlogCancelCheck == 0 && found.Load() {
					return nil
				}
				var p curve.Point
				p.FromJacobian(&cur)
				if j, ok := dlogTable[p.Bytes()]; ok {
					result.Store(uint64(i)<<dlogStepBits | uint64(j))
					found.Store(true)
					return nil
				}
				cur.AddMixed(&dlogGiantStep)
			}
			return nil
		})
	}
	_ = g.Wait()
	return result.Load(), found.Load()
}
