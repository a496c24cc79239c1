package cmd

import (
	cfgpkg "github.com/EricSchles/pfas-cancer-project/internal/config"
	"github.com/EricSchles/pfas-cancer-project/internal/model"
	"github.com/EricSchles/pfas-cancer-project/internal/pipeline"
)

// modelParams returns the boosting parameters carried by the config.
func modelParams(c *cfgpkg.Global) model.Params {
	return model.Params{
		LearningRate:    c.ModelLearningRate,
		Estimators:      c.ModelEstimators,
		Subsample:       c.ModelSubsample,
		MaxDepth:        c.ModelMaxDepth,
		MinSamplesSplit: c.ModelMinSamplesSplit,
		Seed:            c.ModelSeed,
	}
}

func sources(c *cfgpkg.Global) pipeline.Sources {
	return pipeline.Sources{
		FacilitiesPath:  c.FacilitiesPath,
		FacilitiesSheet: c.FacilitiesSheet,
		CancerPath:      c.CancerPath,
		PopulationPath:  c.PopulationPath,
	}
}
