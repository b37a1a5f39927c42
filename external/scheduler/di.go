package scheduler

import (
	"github.com/samber/do/v2"

	"github.com/ferret9/worklogbot/internal/config"
	schedulerpkg "github.com/ferret9/worklogbot/internal/scheduler"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (schedulerpkg.Scheduler, error) {
		c := do.MustInvoke[*config.Config](i)
		loc, err := c.Location()
		if err != nil {
			return nil, err
		}
		return NewCronScheduler(loc), nil
	})
}
