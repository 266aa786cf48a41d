package main

import (
	"context"

	"github.com/isaidso/auth/internal/client/cli"
	"github.com/isaidso/auth/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	app.Main(context.Background())

}
