package channels

import (
	"github.com/samber/do/v2"

	"github.com/ferret9/worklogbot/internal/repository"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Cache, error) {
		repo := do.MustInvoke[repository.Repository](i)
		return NewCache(repo), nil
	})
}
