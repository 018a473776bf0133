// Application server is the main server for the application
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/starquake/trivia/cmd/server/app"
	"github.com/starquake/trivia/internal/config"
)

func main() {
	// A .env file is optional and only read outside production.
	if os.Getenv("APP_ENV") != config.AppEnvironmentProduction {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "error loading .env: %v\n", err)
			os.Exit(1)
		}
	}

	if err := app.Run(context.Background(), os.Getenv, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
