package main

import (
	"os"

	"github.com/moviecatalog/moviecatalog/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
