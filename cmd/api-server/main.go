// Command api-server serves the game storefront API.
package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	storeapp "github.com/xenking/gamestore/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := storeapp.LoadConfig()
		if err != nil {
			return err
		}
		return storeapp.Run(ctx, lg, m, cfg)
	})
}
