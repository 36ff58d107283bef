package importer

import (
	"math/rand/v2"

	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// ThresholdRemap replaces user ids above a threshold with a uniform random id
// from a fixed range. The defaults (above 50 -> [5, 40]) turn synthetic
// comment authors into ids that exist in the demo data set. It is not an
// anonymization scheme.
type ThresholdRemap struct {
	cfg  lmsseed.RemapConfig
	uint64N func(n uint64) uint64
}

// NewThresholdRemap builds a remap from cfg. A non-zero cfg.Seed makes the
// sequence of drawn ids reproducible.
func NewThresholdRemap(cfg lmsseed.RemapConfig) *ThresholdRemap {
	uint64N := rand.Uint64N
	if cfg.Seed != 0 {
		uint64N = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)).Uint64N
	}
	return &ThresholdRemap{cfg: cfg, uint64N: uint64N}
}

func (r *ThresholdRemap) Remap(userID int64) int64 {
	if r.cfg.Disabled || userID <= r.cfg.Threshold {
		return userID
	}
	// Width is counted unsigned so [0, MaxInt64] does not overflow.
	width := uint64(r.cfg.Max-r.cfg.Min) + 1
	return r.cfg.Min + int64(r.uint64N(width))
}

// IdentityRemap leaves every id unchanged.
type IdentityRemap struct{}

func (IdentityRemap) Remap(userID int64) int64 { return userID }

var (
	_ lmsseed.RemapStrategy = (*ThresholdRemap)(nil)
	_ lmsseed.RemapStrategy = IdentityRemap{}
	_ lmsseed.Hasher        = (*BcryptHasher)(nil)
)
