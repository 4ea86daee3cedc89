package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/pointfeed/internal/buildinfo"
	"github.com/dmitrijs2005/pointfeed/internal/server"
	"github.com/dmitrijs2005/pointfeed/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
