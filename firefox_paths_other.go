//go:build !darwin && !linux && !windows

package biscuit

func firefoxRoots() []string { return nil }
