// main is the entry point of the febb CLI.
package main

import (
	"github.com/Astrarre/FebbGradle/cmd"
	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/internal/iocache"
	"github.com/Astrarre/FebbGradle/internal/logging"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)

	err := cmd.Execute()

	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseStores()
	logging.Sync()

	if err != nil {
		contract.LogFatal("febb failed", err)
	}
}
