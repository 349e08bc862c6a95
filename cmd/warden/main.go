package main

import (
	"warden/internal/app"

	"github.com/charmbracelet/log"
)

func main() {
	if err := app.RunInteractive(); err != nil {
		log.Fatal("application terminated", "error", err)
	}
}
