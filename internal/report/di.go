package report

import (
	"github.com/samber/do/v2"

	"github.com/ferret9/worklogbot/internal/config"
	"github.com/ferret9/worklogbot/internal/repository"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Aggregator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		return NewAggregator(repo, loc), nil
	})
}
