package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/PixPMusic/gopher-resolume/internal/config"
	"github.com/PixPMusic/gopher-resolume/internal/controller"
	"github.com/PixPMusic/gopher-resolume/internal/midi"
	"github.com/PixPMusic/gopher-resolume/internal/resolume"
	"github.com/PixPMusic/gopher-resolume/internal/tray"
	"github.com/PixPMusic/gopher-resolume/internal/window"
)

// Command-line options. Values only override the config file when the
// flag was given.
var opts struct {
	configPath string
	host       string
	sendPort   int
	listenPort int
	inPort     string
	outPort    string
	deviceType string
	pollMS     int
	headless   bool
	debug      bool
	traceOSC   bool
	logFile    string
}

var rootCmd = &cobra.Command{
	Use:   "gopher-resolume",
	Short: "Drive Resolume from a Launchpad over OSC",
	Long: `GopherResolume turns a Novation Launchpad into a Resolume controller.

Launch view: the 8x8 grid launches clips of layers 1-8, scrolled with the
left/right arrows; the side column clears a layer.
Mixer view: each row sets a layer's opacity; the side column toggles bypass.

Resolume must have OSC input and output enabled on the configured ports.`,
	SilenceUsage: true,
	RunE:         runBridge,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input and output ports",
	Args:  cobra.NoArgs,
	RunE:  listPorts,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Config file (.json, .yaml or .yml); defaults to the user config dir")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false,
		"Log every pad event and OSC message")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "",
		"Append logs to this file instead of stderr")

	flags := rootCmd.Flags()
	flags.StringVar(&opts.host, "host", config.DefaultHost,
		"Host running Resolume")
	flags.IntVar(&opts.sendPort, "send-port", config.DefaultSendPort,
		"Resolume's OSC input port")
	flags.IntVar(&opts.listenPort, "listen-port", config.DefaultListenPort,
		"Local port Resolume sends OSC output to")
	flags.StringVar(&opts.inPort, "in", "",
		"MIDI input port (default: first port named Launchpad)")
	flags.StringVar(&opts.outPort, "out", "",
		"MIDI output port (default: first port named Launchpad)")
	flags.StringVar(&opts.deviceType, "device-type", string(midi.DeviceTypeClassic),
		"Launchpad model: classic (Launchpad S) or colorful (Mini Mk3)")
	flags.IntVar(&opts.pollMS, "poll", config.DefaultPollingDelayMS,
		"Button polling delay in milliseconds")
	flags.BoolVar(&opts.headless, "headless", false,
		"Run without tray icon or grid window")
	flags.BoolVar(&opts.traceOSC, "trace-osc", false,
		"Log every received OSC message at info level")

	rootCmd.AddCommand(portsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging applies --debug and --log-file. The returned func closes
// the log file.
func setupLogging() (func(), error) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if opts.debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if opts.logFile == "" {
		return func() {}, nil
	}

	f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}
	logrus.SetOutput(f)
	return func() { f.Close() }, nil
}

// loadConfig reads the config file, writes it out on first run, then
// applies the flags that were given.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.Path()); os.IsNotExist(err) {
		if err := cfg.Save(); err != nil {
			logrus.WithError(err).Warn("write default config")
		} else {
			logrus.WithField("path", cfg.Path()).Info("wrote default config")
		}
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = opts.host
	}
	if flags.Changed("send-port") {
		cfg.SendPort = opts.sendPort
	}
	if flags.Changed("listen-port") {
		cfg.ListenPort = opts.listenPort
	}
	if flags.Changed("in") {
		cfg.Device.InPort = opts.inPort
	}
	if flags.Changed("out") {
		cfg.Device.OutPort = opts.outPort
	}
	if flags.Changed("device-type") {
		cfg.Device.Type = midi.DeviceType(opts.deviceType)
	}
	if flags.Changed("poll") {
		cfg.PollingDelayMS = opts.pollMS
	}
	if flags.Changed("trace-osc") {
		cfg.TraceOSC = opts.traceOSC
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// openHardware opens the configured Launchpad, auto-detecting missing
// port names. It returns nil, nil when no Launchpad is connected.
func openHardware(manager *midi.Manager, dev config.DeviceConfig) (*midi.Surface, error) {
	in, out := dev.InPort, dev.OutPort
	if in == "" || out == "" {
		foundIn, foundOut := manager.FindLaunchpad()
		if in == "" {
			in = foundIn
		}
		if out == "" {
			out = foundOut
		}
	}
	if in == "" || out == "" {
		return nil, nil
	}
	surface, err := manager.OpenSurface(in, out, dev.Type)
	return surface, errors.Wrapf(err, "open %s", dev.Name)
}

func runBridge(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	manager := midi.NewManager()
	defer manager.Close()

	hardware, err := openHardware(manager, cfg.Device)
	if err != nil {
		return err
	}
	if hardware == nil && opts.headless {
		return errors.New("no Launchpad found; pass --in and --out or run without --headless")
	}

	var surfaces controller.Fanout
	if hardware != nil {
		defer hardware.Close()
		surfaces = append(surfaces, hardware)
	} else {
		logrus.Warn("no Launchpad found, using the on-screen grid only")
	}

	var (
		fyneApp fyne.App
		gridWin *window.GridWindow
	)
	if !opts.headless {
		fyneApp = app.NewWithID("com.pixpmusic.gopherresolume")
		gridWin = window.NewGridWindow(fyneApp, "GopherResolume")
		surfaces = append(surfaces, gridWin)
	}

	link := resolume.NewLink(cfg.Host, cfg.SendPort, cfg.ListenPort)
	ctrl := controller.New(surfaces, link, cfg.PollingDelay())
	dispatcher := resolume.NewDispatcher(ctrl)
	dispatcher.SetTrace(cfg.TraceOSC)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if fyneApp != nil {
		var startupArgs []string
		if opts.configPath != "" {
			startupArgs = []string{"--config", cfg.Path()}
		}
		t := tray.Setup(fyneApp, cfg, startupArgs, tray.Callbacks{
			// menu actions run on the fyne goroutine; the switch repaints through fyne.Do
			OnMode:     func(m controller.Mode) { go ctrl.SwitchMode(m) },
			OnShowGrid: gridWin.Show,
			OnQuit:     fyneApp.Quit,
		})
		ctrl.OnViewChange(func(m controller.Mode, offset int) {
			t.SetMode(m)
			if m == controller.ModeLaunch {
				gridWin.SetStatus(fmt.Sprintf("Launch view, columns %d-%d", offset+1, offset+8))
			} else {
				gridWin.SetStatus("Mixer view")
			}
		})
	}

	logrus.WithFields(logrus.Fields{
		"host":   cfg.Host,
		"send":   cfg.SendPort,
		"listen": cfg.ListenPort,
	}).Info("starting bridge")

	errc := make(chan error, 2)
	start := func() {
		ctrl.Start()
		go func() { errc <- link.Serve(ctx, dispatcher) }()
		go func() { errc <- ctrl.Run(ctx) }()
	}

	if fyneApp == nil {
		start()
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		}
	}

	quitErr := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
		case err := <-errc:
			quitErr <- err
		}
		fyne.Do(fyneApp.Quit)
	}()

	// the grid window paints through fyne.Do, which needs the event loop running
	fyneApp.Lifecycle().SetOnStarted(func() {
		go start()
	})
	if hardware == nil {
		gridWin.Show()
	}
	fyneApp.Run()
	cancel()

	select {
	case err := <-quitErr:
		return err
	default:
		return nil
	}
}

func listPorts(cmd *cobra.Command, args []string) error {
	manager := midi.NewManager()
	defer manager.Close()

	out := cmd.OutOrStdout()
	show := func(title string, names []string) {
		fmt.Fprintf(out, "%s:\n", title)
		if len(names) == 0 {
			fmt.Fprintln(out, "  (none)")
		}
		for _, name := range names {
			mark := ""
			if midi.IsLaunchpad(name) {
				mark = "  [launchpad]"
			}
			fmt.Fprintf(out, "  %s%s\n", name, mark)
		}
	}
	show("MIDI inputs", manager.ListInPorts())
	show("MIDI outputs", manager.ListOutPorts())
	return nil
}
