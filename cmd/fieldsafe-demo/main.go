// Command fieldsafe-demo runs a minimal server-driven field safety
// backend: it mounts the echo adapter over a registry wired to a
// structured-log audit sink, with timing defaults loaded from a TOML
// deployment file. Saved values are held in memory; it exists to exercise
// the stack end to end, not to persist anything.
package main

import (
	"flag"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	fieldsafe "github.com/itsalfredakku/rxops-uikit-sub005"
	fieldsafeecho "github.com/itsalfredakku/rxops-uikit-sub005/adapters/echo"
	"github.com/itsalfredakku/rxops-uikit-sub005/lib/config"
	"github.com/itsalfredakku/rxops-uikit-sub005/lib/logger"
)

func main() {
	configPath := flag.String("config", "", "path to TOML deployment config")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.New("info").WithError(err).Fatal("load config")
		}
		cfg = loaded
	}

	log := logger.New(cfg.LogLevel)

	reg := fieldsafe.NewRegistry(
		fieldsafe.WithLogger(log),
		fieldsafe.WithSink(fieldsafe.NewLogSink(log)),
	)
	defer reg.Close()

	store := &memoryStore{values: make(map[string]string)}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	fieldsafeecho.Mount(e, reg,
		fieldsafeecho.WithSave(store.save),
		fieldsafeecho.WithDefaults(fieldsafeecho.Defaults{
			MedicalDeviceMode:  cfg.MedicalDeviceMode,
			WorkflowShortcuts:  cfg.WorkflowShortcuts,
			AutoSaveInterval:   cfg.AutoSaveInterval(),
			ConfirmationWindow: cfg.ConfirmationWindow(),
			ShortcutFlash:      cfg.ShortcutFlash(),
		}),
	)

	logger.WithComponent(log, "fieldsafe-demo").
		WithField("listen", cfg.Listen).Info("starting")
	if err := e.Start(cfg.Listen); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// memoryStore is the demo's save destination.
type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (s *memoryStore) save(fieldID, value string, done func(error)) {
	s.mu.Lock()
	s.values[fieldID] = value
	s.mu.Unlock()
	done(nil)
}
