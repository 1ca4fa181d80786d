package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/unidesk/internal/app"
	"github.com/dmitrijs2005/unidesk/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	a, err := app.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
