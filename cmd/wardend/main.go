package main

import (
	"warden/internal/app"

	"github.com/charmbracelet/log"
)

func main() {
	if err := app.RunEnforcer(); err != nil {
		log.Fatal("enforcement daemon terminated", "error", err)
	}
}
