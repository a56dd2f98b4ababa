package main

import (
	"go.uber.org/fx"

	"github.com/stockroom-app/stockroom/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
