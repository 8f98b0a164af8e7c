// Package pool provides memory optimization through object pooling.
//
// It implements a pool of scratch assignment-space bitmasks (pkg/bitmask.Set)
// sized for a given N, so the generator's candidate-evaluation loop — which
// computes one post-mask per candidate statement per speaker — can reuse
// buffers across trials instead of allocating a fresh bitset for every
// candidate.
//
// This is an internal package not intended for direct use by applications.
// It is used by pkg/generator to optimize the hot path of greedy selection.
package pool
