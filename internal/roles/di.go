package roles

import (
	"github.com/samber/do/v2"

	"github.com/ferret9/worklogbot/internal/discord"
	"github.com/ferret9/worklogbot/internal/repository"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Reconciler, error) {
		dc := do.MustInvoke[discord.Client](i)
		repo := do.MustInvoke[repository.Repository](i)
		return NewReconciler(dc, repo), nil
	})
}
