//go:build !darwin && !linux && !windows

package biscuit

func chromiumUserDataDirs(_ Browser) []string { return nil }
