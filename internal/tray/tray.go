package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"

	"github.com/PixPMusic/gopher-resolume/internal/config"
	"github.com/PixPMusic/gopher-resolume/internal/controller"
	"github.com/PixPMusic/gopher-resolume/internal/startup"
)

var log = logrus.WithField("component", "tray")

// Callbacks for tray menu actions
type Callbacks struct {
	OnMode     func(controller.Mode)
	OnShowGrid func()
	OnQuit     func()
}

// Tray is the system tray menu. Its mode items follow SetMode.
type Tray struct {
	menu       *fyne.Menu
	launchItem *fyne.MenuItem
	mixerItem  *fyne.MenuItem
}

// Setup initializes the system tray using Fyne's built-in support. It
// returns nil when the app has no tray.
func Setup(app fyne.App, cfg *config.Config, startupArgs []string, callbacks Callbacks) *Tray {
	desk, ok := app.(desktop.App)
	if !ok {
		return nil
	}

	t := &Tray{}
	t.launchItem = fyne.NewMenuItem("Launch View", func() {
		if callbacks.OnMode != nil {
			callbacks.OnMode(controller.ModeLaunch)
		}
	})
	t.mixerItem = fyne.NewMenuItem("Mixer View", func() {
		if callbacks.OnMode != nil {
			callbacks.OnMode(controller.ModeMixer)
		}
	})

	showItem := fyne.NewMenuItem("Show Grid", func() {
		if callbacks.OnShowGrid != nil {
			callbacks.OnShowGrid()
		}
	})

	startupItem := fyne.NewMenuItem("Open at Startup", nil)
	startupItem.Checked = cfg.OpenAtStartup

	quitItem := fyne.NewMenuItem("Quit", func() {
		if callbacks.OnQuit != nil {
			callbacks.OnQuit()
		}
	})

	t.menu = fyne.NewMenu("GopherResolume",
		t.launchItem,
		t.mixerItem,
		fyne.NewMenuItemSeparator(),
		showItem,
		fyne.NewMenuItemSeparator(),
		startupItem,
		fyne.NewMenuItemSeparator(),
		quitItem,
	)

	// Set the action after menu is created so we can refresh it
	startupItem.Action = func() {
		enable := !startupItem.Checked
		var err error
		if enable {
			err = startup.Enable(startupArgs...)
		} else {
			err = startup.Disable()
		}
		if err != nil {
			log.WithError(err).Warn("change startup registration")
			return
		}
		startupItem.Checked = enable
		cfg.OpenAtStartup = enable
		if err := cfg.Save(); err != nil {
			log.WithError(err).Warn("save config")
		}
		t.menu.Refresh()
	}

	desk.SetSystemTrayMenu(t.menu)
	desk.SetSystemTrayIcon(theme.GridIcon())

	return t
}

// SetMode checks the menu item of the active mode. Safe to call on a nil Tray.
func (t *Tray) SetMode(m controller.Mode) {
	if t == nil {
		return
	}
	fyne.Do(func() {
		t.launchItem.Checked = m == controller.ModeLaunch
		t.mixerItem.Checked = m == controller.ModeMixer
		t.menu.Refresh()
	})
}
