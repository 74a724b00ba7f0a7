package tools

// Catalogue returns the full static tool table. The table is built from the
// per-domain descriptor slices at call time; descriptors themselves are
// package-level constants in spirit and are never mutated.
func Catalogue() []*Tool {
	var all []*Tool
	all = append(all, pageTools...)
	all = append(all, inputTools...)
	all = append(all, scriptTools...)
	all = append(all, consoleTools...)
	all = append(all, screenshotTools...)
	all = append(all, networkTools...)
	all = append(all, emulationTools...)
	all = append(all, performanceTools...)
	return all
}
