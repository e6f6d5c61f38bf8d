package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"pdfdesk/internal/api"
	"pdfdesk/internal/config"
	"pdfdesk/internal/filemanager"
	"pdfdesk/internal/infra/logx"
	"pdfdesk/internal/ui"
)

func main() {
	debug := os.Getenv("DEBUG")
	// Enable debug logging when DEBUG environment variable is set
	if len(debug) > 0 {
		f, err := tea.LogToFile("debug.log", "debug")
		if err != nil {
			fmt.Println("fatal:", err)
			os.Exit(1)
		}
		defer f.Close()
		logx.SetOutput(f)
		logx.SetMinLevel(logx.LevelDebug)
		logx.SetVerbose(debug == "verbose")
		// bubbletea and net/http write through the std logger
		log.SetOutput(logx.StdlogWriter(logx.LevelDebug, f))
		fmt.Println("Debug logging enabled. Run 'tail -f debug.log' to view logs.")
	}

	path := config.DefaultPath()
	cfg, err := config.Load(path)
	found := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Println("config:", err)
		os.Exit(1)
	}

	// "pdfdesk init" writes the effective settings to the rc file
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := config.Save(path, cfg); err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", path)
		return
	}

	if len(debug) == 0 {
		logx.SetMinLevel(logx.ParseLevel(cfg.LogLevel))
	}
	logx.RegisterURLSecrets(cfg.APIURL)
	logx.RegisterURLSecrets(cfg.FileManagerURL)
	logx.Infof("starting: backend %s, file manager %s", cfg.APIURL, cfg.FileManagerURL)

	hc := api.NewHTTPClient(api.DefaultTransportOptionsFromEnv())
	model := ui.InitialModel(ui.Options{
		Config:      cfg,
		ConfigFound: found,
		API:         api.New(cfg.APIURL, hc),
		Files:       filemanager.New(filemanager.NewConfig(cfg.FileManagerURL), hc),
	})
	defer model.Shutdown()

	if _, err := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	).Run(); err != nil {
		logx.Errorf("program exited: %v", err)
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
