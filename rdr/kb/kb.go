// Package kb assembles immutable rule snapshots from declarative TOML
// tables. Two tables ship embedded: the affinity tree ("nanomedicine") and
// the surface-charge propagation ladder ("surfacecharge").
//
// Assembly runs once at startup and publishes a read-only snapshot; the
// classic ripple-down authoring workflow (appending exception rules under a
// misclassifying parent) happens offline by editing the table and rebuilding
// a fresh snapshot.
package kb

import (
	"embed"
	"os"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/rdr"
)

//go:embed nanomedicine.toml surfacecharge.toml cornerstones.yaml
var embedded embed.FS

// Default builds the embedded affinity knowledge base.
func Default() (*rdr.Snapshot, error) {
	return buildEmbedded("nanomedicine.toml")
}

// SurfaceCharge builds the embedded surface-charge propagation ladder. It is
// consumed by the extraction layer, not by end users directly.
func SurfaceCharge() (*rdr.Snapshot, error) {
	return buildEmbedded("surfacecharge.toml")
}

func buildEmbedded(name string) (*rdr.Snapshot, error) {
	data, err := embedded.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "read embedded table %s", name)
	}
	table, err := ParseTable(data)
	if err != nil {
		return nil, err
	}
	return Build(table, DefaultRegistry())
}

// LoadFile parses and builds an external rule table, e.g. for `kb validate`
// or a hot-rebuild watcher. The same registry backs external tables, so an
// external table can only rearrange and reweight known conditions.
func LoadFile(path string) (*rdr.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read rule table %s", path)
	}
	table, err := ParseTable(data)
	if err != nil {
		return nil, err
	}
	return Build(table, DefaultRegistry())
}
