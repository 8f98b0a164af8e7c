// Package common provides shared functionality and constants used throughout
// the Werewolf puzzle engine.
//
// This package includes:
// - Common error definitions
// - Villager-count bounds shared by every layer
//
// This is an internal package not intended for direct use by applications.
// It supports the implementation of the public pkg/ packages.
package common
