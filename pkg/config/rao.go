package config

import (
	"github.com/marmos91/dittotape/pkg/rao"
	"github.com/marmos91/dittotape/pkg/rao/manager"
)

// ToManagerParams returns the parameters of a mount of tape vid in drive.
//
// Entries of the legacy options string override CostHeuristic and
// FilePositionEstimator. A malformed options string is a
// ConfigurationError.
func (c *RAOConfig) ToManagerParams(vid, drive string) (manager.Params, error) {
	names, err := rao.Options{
		CostHeuristic: c.CostHeuristic,
		Estimator:     c.FilePositionEstimator,
	}.Override(c.Options)
	if err != nil {
		return manager.Params{}, err
	}

	return manager.Params{
		Enabled:           c.IsEnabled(),
		Algorithm:         c.Algorithm,
		EnterpriseEnabled: c.IsEnterpriseEnabled(),
		VID:               vid,
		Drive:             drive,
		Options: manager.Options{
			CostHeuristic: names.CostHeuristic,
			Estimator:     names.Estimator,
			Weights:       c.CostWeights,
			BlockSize:     c.BlockSize.Uint64(),
		},
	}, nil
}
