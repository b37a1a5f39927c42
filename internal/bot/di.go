package bot

import (
	"github.com/samber/do/v2"

	"github.com/ferret9/worklogbot/internal/channels"
	"github.com/ferret9/worklogbot/internal/config"
	"github.com/ferret9/worklogbot/internal/discord"
	"github.com/ferret9/worklogbot/internal/report"
	"github.com/ferret9/worklogbot/internal/roles"
	"github.com/ferret9/worklogbot/internal/webhook"
	"github.com/ferret9/worklogbot/internal/worklog"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		return NewManager(
			cfg,
			loc,
			do.MustInvoke[*worklog.Tracker](i),
			do.MustInvoke[*roles.Reconciler](i),
			do.MustInvoke[*report.Aggregator](i),
			do.MustInvoke[*channels.Cache](i),
			do.MustInvoke[webhook.Sender](i),
			do.MustInvoke[discord.Client](i),
		), nil
	})
}
