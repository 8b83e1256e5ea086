package main

import (
	"log"
	"net/http"

	"github.com/ElDuke717/my-rss-reader/config"
	"github.com/ElDuke717/my-rss-reader/internal/app"
)

func main() {
	cfg := config.Load()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	log.Println("Server started on port", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, application.Router))
}
