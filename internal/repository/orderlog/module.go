package orderlog

import "go.uber.org/fx"

// Module provides the order log and last-order snapshot to Fx.
var Module = fx.Provide(NewLog, NewSnapshot)
