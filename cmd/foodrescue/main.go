package main

import (
	"os"

	"github.com/ignatzorin/foodrescue-backend/internal/cli"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		logger.Log.WithError(err).Error("команда завершилась с ошибкой")
		os.Exit(1)
	}
}
