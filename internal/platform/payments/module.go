package payments

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(NewGateway),
)
