package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/ameledin/studiovault/internal/server"
	"github.com/ameledin/studiovault/internal/server/config"
)

func main() {
	// optional .env for local development
	godotenv.Load()

	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(context.Background()); err != nil {
		log.Printf("%v", err)
	}
}
