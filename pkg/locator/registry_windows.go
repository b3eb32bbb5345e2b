//go:build windows

package locator

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sys/windows/registry"
)

// javaRegistryKeys are the vendor subtrees that record runtime homes.
var javaRegistryKeys = []string{
	`SOFTWARE\JavaSoft\Java Runtime Environment`,
	`SOFTWARE\JavaSoft\Java Development Kit`,
	`SOFTWARE\JavaSoft\JDK`,
	`SOFTWARE\JRockit\Java Runtime Environment`,
	`SOFTWARE\JRockit\Java Development Kit`,
	`SOFTWARE\IBM\Java Runtime Environment`,
	`SOFTWARE\IBM\Java2 Runtime Environment`,
	`SOFTWARE\IBM\Java Development Kit`,
}

var registryRoots = []struct {
	name string
	key  registry.Key
}{
	{"HKEY_LOCAL_MACHINE", registry.LOCAL_MACHINE},
	{"HKEY_CURRENT_USER", registry.CURRENT_USER},
}

// RegistryStrategy reads runtime homes recorded by Java installers.
type RegistryStrategy struct {
	logger hclog.Logger
}

// NewRegistryStrategy returns the registry strategy for this platform.
func NewRegistryStrategy(logger hclog.Logger) *RegistryStrategy {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &RegistryStrategy{logger: logger}
}

func (s *RegistryStrategy) Kind() StrategyKind { return KindRegistry }

func (s *RegistryStrategy) Search(ctx context.Context, check CheckFunc) (*Runtime, error) {
	// 64-bit view first, then the 32-bit one.
	for _, view := range []uint32{registry.WOW64_64KEY, registry.WOW64_32KEY} {
		rt, err := s.searchView(ctx, check, view)
		if rt != nil || err != nil {
			return rt, err
		}
	}
	return nil, nil
}

func (s *RegistryStrategy) searchView(ctx context.Context, check CheckFunc, view uint32) (*Runtime, error) {
	// CurrentVersion indirection first.
	var current []string
	for _, root := range registryRoots {
		for _, path := range javaRegistryKeys {
			version, ok := readString(root.key, path, "CurrentVersion", view)
			if !ok {
				continue
			}
			home, ok := readString(root.key, path+`\`+version, "JavaHome", view)
			if !ok {
				continue
			}
			s.logger.Trace("Registry java", "key", root.name+`\`+path, "version", version, "home", home)
			current = append(current, home)
		}
	}
	if rt, err := searchAll(ctx, check, current); rt != nil || err != nil {
		return rt, err
	}

	// Then every version subkey.
	var others []string
	for _, root := range registryRoots {
		for _, path := range javaRegistryKeys {
			k, err := registry.OpenKey(root.key, path, registry.ENUMERATE_SUB_KEYS|view)
			if err != nil {
				continue
			}
			names, err := k.ReadSubKeyNames(-1)
			k.Close()
			if err != nil {
				continue
			}
			for _, name := range names {
				if home, ok := readString(root.key, path+`\`+name, "JavaHome", view); ok {
					others = append(others, home)
				}
			}
		}
	}
	return searchAll(ctx, check, others)
}

func readString(root registry.Key, path, name string, view uint32) (string, bool) {
	k, err := registry.OpenKey(root, path, registry.QUERY_VALUE|view)
	if err != nil {
		return "", false
	}
	defer k.Close()
	value, _, err := k.GetStringValue(name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}
