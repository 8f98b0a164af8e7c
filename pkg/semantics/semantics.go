// Package semantics implements role semantics (L3): per-speaker masks
// encoding "speaker is truthful => statement true; speaker lies =>
// statement false," and, if enabled, the shill rule. Everything here is
// derived from N alone plus a set of per-speaker statement codes and a
// TruthCache; it holds no state of its own.
package semantics

import (
	"github.com/asv/wolfpuzzle/pkg/bitmask"
	"github.com/asv/wolfpuzzle/pkg/cache"
)

// HumanMask returns the assignments where villager i is not a werewolf
// (bit i of the assignment index is 0).
func HumanMask(domain uint, i int) *bitmask.Set {
	m := bitmask.New(domain)
	for j := uint(0); j < domain; j++ {
		if j&(1<<uint(i)) == 0 {
			m.SetBit(j)
		}
	}
	return m
}

// WolfMask returns the complement of HumanMask within [0, domain).
func WolfMask(domain uint, i int) *bitmask.Set {
	return HumanMask(domain, i).Not()
}

// SpeakerCompat computes speaker_i_compat(c) = (human_mask[i] & truth[c])
// | (wolf_mask[i] & ~truth[c]): the assignments consistent with "if i is
// human then c is true; if i is a werewolf then c is false."
func SpeakerCompat(domain uint, speaker int, truth *bitmask.Set) *bitmask.Set {
	human := HumanMask(domain, speaker)
	wolf := WolfMask(domain, speaker)
	return human.And(truth).Or(wolf.And(truth.Not()))
}

// BundleAllTrueMask computes the "all true" mask of a bundle of statement
// codes: the intersection of each statement's truth mask. A speaker is
// truthful iff every statement in their bundle is true; a liar has at least
// one false. Single-statement mode is the bundle-size-1 case.
func BundleAllTrueMask(tc *cache.TruthCache, domain uint, codes []string) (*bitmask.Set, bool) {
	all := bitmask.Full(domain)
	for _, code := range codes {
		m, ok := tc.Mask(code)
		if !ok {
			return nil, false
		}
		all = all.And(m)
	}
	return all, true
}

// SomeTrueMask computes the SUPPLEMENTED per-speaker mask used by
// generator.Config.RequireWerewolfPartialTruth: the assignments under which
// at least one statement in the bundle is true.
func SomeTrueMask(tc *cache.TruthCache, domain uint, codes []string) (*bitmask.Set, bool) {
	any := bitmask.New(domain)
	for _, code := range codes {
		m, ok := tc.Mask(code)
		if !ok {
			return nil, false
		}
		any = any.Or(m)
	}
	return any, true
}

// SpeakerCompatBundle is SpeakerCompat generalized to a bundle's all-true
// mask, per the multi-statement design note.
func SpeakerCompatBundle(domain uint, speaker int, bundleAllTrue *bitmask.Set) *bitmask.Set {
	return SpeakerCompat(domain, speaker, bundleAllTrue)
}

// ShillCompat computes, for a candidate shill s speaking bundle-all-true
// mask bundleAllTrue, the assignments consistent with "s is not a werewolf
// and s's bundle is not all-true" (s must tell at least one lie).
//
//	human_mask[s] & ~bundleAllTrue
func ShillCompat(domain uint, shill int, bundleAllTrue *bitmask.Set) *bitmask.Set {
	return HumanMask(domain, shill).And(bundleAllTrue.Not())
}
