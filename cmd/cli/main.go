package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/localdate/internal/buildinfo"
	"github.com/dmitrijs2005/localdate/internal/cli"
	"github.com/dmitrijs2005/localdate/internal/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()

	ctx := context.Background()
	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	app.Run(ctx)
}
