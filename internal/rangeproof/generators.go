package rangeproof

import (
	"encoding/binary"
	"sync"

	"feeproof/internal/curve"
)

// GeneratorCapacity is the largest aggregated bit count a proof may cover.
const GeneratorCapacity = 256

var generatorDST = []byte("FEEPROOF-V1-BN254G1-BULLETPROOF-GENS")

// generators returns the vector bases G_i and H_i, derived by hashing to the curve
// on first use and shared read-only afterwards.
var generators = sync.OnceValues(func() ([]curve.Point, []curve.Point) {
	gVec := make([]curve.Point, GeneratorCapacity)
	hVec := make([]curve.Point, GeneratorCapacity)
	for i := range gVec {
		gVec[i] = curve.HashToPoint(generatorLabel("G", i), generatorDST)
		hVec[i] = curve.HashToPoint(generatorLabel("H", i), generatorDST)
	}
	return gVec, hVec
})

func generatorLabel(prefix string, i int) []byte {
	return binary.LittleEndian.AppendUint32([]byte(prefix), uint32(i))
}
