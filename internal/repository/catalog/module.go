package catalog

import "go.uber.org/fx"

// Module provides the catalog store to Fx.
var Module = fx.Provide(NewStore)
