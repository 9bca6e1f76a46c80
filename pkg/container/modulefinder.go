package container

import (
	"path/filepath"
	"regexp"
	"strings"
)

// archiveModuleFinder is the ModuleFinder an archiveContainer exposes for
// module-graph composition. It distinguishes an explicit
// module (one carrying a module-info.class descriptor) from an automatic
// module (one named after its archive's filename, per the JPMS automatic
// module naming convention), without needing a full class-file parser: all
// this subsystem needs from a module is its name, not its exports or
// requires.
type archiveModuleFinder struct {
	container *archiveContainer
}

func (f *archiveModuleFinder) FindModules() []ModuleRef {
	name := automaticModuleName(f.container.archivePathHint())

	if _, ok, err := f.container.resolve("module-info.class"); err == nil && ok {
		return []ModuleRef{{Name: name, Explicit: true}}
	}
	return []ModuleRef{{Name: name, Explicit: false}}
}

// archivePathHint exposes the archive's own URI for naming purposes, since
// archiveContainer never stores the raw path separately from its PathRoot.
func (c *archiveContainer) archivePathHint() string {
	uri := c.root.URI()
	if uri.Opaque != "" {
		return strings.TrimPrefix(uri.Opaque, "file://")
	}
	return uri.Path
}

var (
	versionSuffix    = regexp.MustCompile(`-\d[\w.+-]*$`)
	nonIdentifierRun = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// automaticModuleName derives a module name from a jar's base filename per
// the JPMS automatic-module rules: drop the extension and any trailing
// "-<version>" component, then collapse every run of non-alphanumeric
// characters into a single dot.
func automaticModuleName(archivePath string) string {
	base := filepath.Base(archivePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = versionSuffix.ReplaceAllString(base, "")
	name := nonIdentifierRun.ReplaceAllString(base, ".")
	name = strings.Trim(name, ".")
	if name == "" {
		name = "unnamed"
	}
	return name
}
