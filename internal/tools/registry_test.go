package tools

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AgentWings/chrome-devtools-mcp/internal/config"
)

func toolNames(ts []*Tool) []string {
	names := make([]string, 0, len(ts))
	for _, t := range ts {
		names = append(names, t.Name)
	}
	return names
}

func TestAssembleSortsByName(t *testing.T) {
	assembled := Assemble(Catalogue(), &config.Config{})

	names := toolNames(assembled)
	require.True(t, sort.StringsAreSorted(names), "tool names must be sorted ascending: %v", names)
}

func TestAssembleIsDeterministic(t *testing.T) {
	cfg := &config.Config{NoEmulation: true}

	first := toolNames(Assemble(Catalogue(), cfg))
	second := toolNames(Assemble(Catalogue(), cfg))
	require.Equal(t, first, second)
}

func TestAssembleOrderIndependentOfInput(t *testing.T) {
	catalogue := Catalogue()
	reversed := make([]*Tool, len(catalogue))
	for i, tool := range catalogue {
		reversed[len(catalogue)-1-i] = tool
	}

	require.Equal(t,
		toolNames(Assemble(catalogue, &config.Config{})),
		toolNames(Assemble(reversed, &config.Config{})))
}

func TestAssembleFiltersDisabledCategories(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		excluded Category
	}{
		{name: "performance", cfg: &config.Config{NoPerformance: true}, excluded: CategoryPerformance},
		{name: "network", cfg: &config.Config{NoNetwork: true}, excluded: CategoryNetwork},
		{name: "emulation", cfg: &config.Config{NoEmulation: true}, excluded: CategoryEmulation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assembled := Assemble(Catalogue(), tt.cfg)
			require.NotEmpty(t, assembled)
			for _, tool := range assembled {
				require.NotEqual(t, tt.excluded, tool.Category,
					"tool %s should be absent from the catalogue", tool.Name)
			}
		})
	}
}

func TestAssembleDefaultIncludesAllCategories(t *testing.T) {
	assembled := Assemble(Catalogue(), &config.Config{})

	seen := map[Category]bool{}
	for _, tool := range assembled {
		seen[tool.Category] = true
	}
	require.True(t, seen[CategoryOther])
	require.True(t, seen[CategoryNetwork])
	require.True(t, seen[CategoryEmulation])
	require.True(t, seen[CategoryPerformance])
}

func TestCatalogueNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, tool := range Catalogue() {
		require.False(t, seen[tool.Name], "duplicate tool name %s", tool.Name)
		seen[tool.Name] = true
		require.NotEmpty(t, tool.Description)
		require.NotNil(t, tool.Schema)
		require.NotNil(t, tool.Handler)
	}
}
