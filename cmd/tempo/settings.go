package main

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/tempo/session"
	"github.com/benjamonnguyen/tempo/settings"
)

type settingsWriter interface {
	Save(p settings.Persisted) error
}

// settingsSaver writes the mode and settings after every committed edit.
type settingsSaver struct {
	store settingsWriter
	l     log.Logger
	wg    sync.WaitGroup
}

func newSettingsSaver(store settingsWriter, l log.Logger) *settingsSaver {
	return &settingsSaver{store: store, l: l}
}

func (s *settingsSaver) Start(sigs <-chan session.Signal) {
	s.wg.Go(func() {
		for sig := range sigs {
			changed, ok := sig.(session.SettingsChanged)
			if !ok {
				continue
			}
			p := settings.Persisted{Mode: changed.Mode, Settings: changed.Settings}
			if err := s.store.Save(p); err != nil {
				s.l.Error("failed to save settings", "err", err)
				continue
			}
			s.l.Debug("saved settings", "mode", changed.Mode)
		}
	})
}

func (s *settingsSaver) Wait() {
	s.wg.Wait()
}
