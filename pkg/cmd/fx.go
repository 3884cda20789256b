package cmd

import "go.uber.org/fx"

var Module = fx.Module("cli",
	fx.Provide(
		fx.Annotate(apply, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(bootstrap, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(dev, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(dump, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(initCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(status, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(syncCmd, fx.ResultTags(`group:"commands"`)),
	),
	fx.Invoke(Run),
)
