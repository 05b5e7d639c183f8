package main

import (
	"context"
	"log"

	"github.com/edumartvn/commerce-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("commerce API exited: %v", err)
	}
}
