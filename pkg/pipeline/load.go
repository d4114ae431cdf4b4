package pipeline

import (
	"github.com/matzehuels/topochart/pkg/registry"
	"github.com/matzehuels/topochart/pkg/topology"
)

// Load resolves the dataset named by opts. Inline data is cloned so the
// caller's positions are never touched by layout. In strict mode the
// dataset must pass [topology.Dataset.Validate].
func Load(reg *registry.Registry, opts Options) (*topology.Dataset, error) {
	var (
		data *topology.Dataset
		err  error
	)
	if opts.Data != nil {
		data = opts.Data.Clone()
	} else {
		data, err = reg.Dataset(opts.Dataset)
		if err != nil {
			return nil, err
		}
	}
	if opts.Strict {
		if err := data.Validate(); err != nil {
			return nil, err
		}
	}
	return data, nil
}
