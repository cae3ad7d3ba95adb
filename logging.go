package main

import (
	"os"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("locktools")

var leveledLogBackend logging.LeveledBackend

func startLogging() {
	backend := logging.NewLogBackend(os.Stderr, progName+": ", 0)
	formatter := logging.MustStringFormatter("%{level:8s} %{module:-12s} | %{message}")
	formatted := logging.NewBackendFormatter(backend, formatter)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.INFO, "")
	logging.SetBackend(leveled)
	leveledLogBackend = leveled
}

func setDebugLogging(debug bool) {
	if debug && leveledLogBackend != nil {
		leveledLogBackend.SetLevel(logging.DEBUG, "")
	}
}
