package main

import (
	"context"
	"flag"
	"log"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/service"
)

func main() {
	file := flag.String("file", "", "Path to the ingredients JSON file (defaults to INGREDIENTS_FILE)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	path := cfg.IngredientsFile
	if *file != "" {
		path = *file
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	created, err := service.NewIngredientService(db).LoadFromFile(context.Background(), path)
	if err != nil {
		log.Fatalf("Failed to load ingredients: %v", err)
	}

	log.Printf("Loaded %s: %d new ingredients", path, created)
}
