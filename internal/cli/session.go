package cli

import (
	"github.com/ppiankov/docketscan/internal/browser"
	"github.com/ppiankov/docketscan/internal/cache"
	"github.com/ppiankov/docketscan/internal/model"
	"github.com/ppiankov/docketscan/internal/pipeline"
	"github.com/ppiankov/docketscan/internal/util"
)

// newPipeline starts a browser and wires the lookup cache and robots policy
func newPipeline(cfg *model.Config) (*pipeline.Pipeline, error) {
	session, err := browser.NewChrome(cfg.Browser)
	if err != nil {
		return nil, err
	}

	var opts []pipeline.ResolverOption
	if c := cache.New(cfg.Cache); c != nil {
		opts = append(opts, pipeline.WithCache(c))
	}
	if cfg.People.RespectRobots {
		checker := util.NewRobotsChecker(util.NewHTTPClient(cfg.HTTP), cfg.HTTP.UserAgent)
		opts = append(opts, pipeline.WithRobots(checker))
	}

	return pipeline.NewPipeline(session, cfg, opts...), nil
}
