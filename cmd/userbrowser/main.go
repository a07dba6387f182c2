package main

import (
	"log"

	"github.com/MrSnakeDoc/userbrowser/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ userbrowser stopped with error: %v", err)
	}
}
