package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/keycasey/Neon-Goals-Service-sub000/cmd/cli/commands"
)

func main() {
	// A missing .env file is fine, flags and the environment still apply
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
