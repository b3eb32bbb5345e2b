//go:build !windows

package locator

import (
	"context"

	"github.com/hashicorp/go-hclog"
)

// RegistryStrategy finds nothing outside Windows.
type RegistryStrategy struct{}

// NewRegistryStrategy returns the registry strategy for this platform.
func NewRegistryStrategy(hclog.Logger) *RegistryStrategy {
	return &RegistryStrategy{}
}

func (s *RegistryStrategy) Kind() StrategyKind { return KindRegistry }

func (s *RegistryStrategy) Search(context.Context, CheckFunc) (*Runtime, error) {
	return nil, nil
}
