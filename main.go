/*
Copyright © 2025 lehoangvu
*/
package main

import (
	"github.com/joho/godotenv"
	"github.com/lehoangvu/docchat-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	// A .env file is optional; real environments set the variables directly.
	_ = godotenv.Load()
}
