package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/quill/internal/assist"
	"github.com/marcus/quill/internal/config"
	"github.com/marcus/quill/internal/document"
	"github.com/marcus/quill/internal/state"
	"github.com/marcus/quill/internal/styles"
	"github.com/marcus/quill/internal/tui"
	"github.com/marcus/quill/internal/upload"
)

// Version is set at build time via ldflags
var Version = ""

var (
	configPath  = flag.String("config", "", "path to config file")
	dbPath      = flag.String("db", "", "path to the documents database")
	debugFlag   = flag.Bool("debug", false, "enable debug logging")
	versionFlag = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("quill version %s\n", effectiveVersion(Version))
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *debugFlag {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	styles.ApplyTheme(cfg.UI.Theme.Name)

	// Load persistent state (ignore errors - state is optional)
	_ = state.Init()

	storePath := cfg.Storage.DBPath
	if *dbPath != "" {
		storePath = *dbPath
	}
	store, err := document.Open(storePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open document store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var assistClient *assist.Client
	if cfg.Assist.Enabled {
		assistClient = assist.NewClient(cfg.Assist.Endpoint, cfg.Assist.Model, cfg.Assist.Timeout)
	}
	uploads := upload.NewLocalStore(cfg.Upload.AssetsDir, cfg.Upload.MaxAssetBytes)

	model := tui.NewModel(cfg, store, assistClient, uploads, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())
	model.Send = p.Send

	// Pick up config edits while running.
	stop := make(chan struct{})
	defer close(stop)
	if updates, err := config.Watch(configFile(*configPath), stop); err != nil {
		logger.Debug("config watch unavailable", "error", err)
	} else {
		go func() {
			for fresh := range updates {
				p.Send(tui.ConfigReloadedMsg{Config: fresh})
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}

	// Flush any edit still inside the autosave quiet window.
	if err := model.Controller().Flush(); err != nil {
		logger.Warn("final save failed", "error", err)
	}
	model.Controller().Close()
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func configFile(path string) string {
	if path != "" {
		return path
	}
	return config.ConfigPath()
}

// effectiveVersion returns the version string, with fallback to build info.
func effectiveVersion(v string) string {
	if v != "" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision != "" {
		ver := "devel+" + revision
		if len(ver) > 20 {
			ver = ver[:20]
		}
		if dirty {
			ver += "+dirty"
		}
		return ver
	}
	return "devel"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: quill [options]\n\n")
		fmt.Fprintf(os.Stderr, "A terminal editor for rich-text notes.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
