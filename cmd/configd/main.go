package main

import (
	"warden/internal/app"

	"github.com/charmbracelet/log"
)

func main() {
	if err := app.RunConfigAPI(); err != nil {
		log.Fatal("config API terminated", "error", err)
	}
}
