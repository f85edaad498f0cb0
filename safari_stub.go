//go:build !darwin || ios

package biscuit

import "context"

type safariProvider struct{}

func (safariProvider) read(_ context.Context, _ string, _ []requestOrigin, _ Options) ([]Cookie, []string) {
	return nil, []string{"biscuit: Safari supported on macOS only"}
}
