package tools

import (
	"sort"
	"strings"

	"github.com/AgentWings/chrome-devtools-mcp/internal/config"
)

// Assemble produces the catalogue one server instance registers: descriptors
// whose category is disabled in cfg are removed entirely (a direct invocation
// by name must see "not found", not a soft block), and the remainder is
// sorted ascending by name. The ordering is a visible contract to clients
// enumerating tools and must be identical across runs.
func Assemble(catalogue []*Tool, cfg *config.Config) []*Tool {
	out := make([]*Tool, 0, len(catalogue))
	for _, t := range catalogue {
		if categoryEnabled(t.Category, cfg) {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	return out
}

func categoryEnabled(c Category, cfg *config.Config) bool {
	switch c {
	case CategoryPerformance:
		return !cfg.NoPerformance
	case CategoryNetwork:
		return !cfg.NoNetwork
	case CategoryEmulation:
		return !cfg.NoEmulation
	default:
		return true
	}
}
