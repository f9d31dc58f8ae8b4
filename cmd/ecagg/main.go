package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Anthya1104/ecagg/internal/cobra"
	"github.com/Anthya1104/ecagg/internal/config"
	"github.com/Anthya1104/ecagg/internal/logging"
)

func main() {
	if err := logging.Init(config.LogLevelInfo); err != nil {
		logrus.Fatalf("Error initializing logger: %v", err)
	}

	if err := cobra.ExecuteCmd(); err != nil {
		logrus.Fatalf("Error executing command: %v", err)
		os.Exit(1)
	}
}
