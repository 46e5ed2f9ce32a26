package research

import (
	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/dataflows"
	"github.com/avinier/multibagger/internal/supervisor"
)

// NewProvider returns the production input provider backed by the
// dataflows layer.
func NewProvider(cfg *config.Config) supervisor.BundleProvider {
	return dataflows.NewBuilder(cfg)
}
