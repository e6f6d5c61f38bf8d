package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const rcName = ".pdfdeskrc"

// Keys understood in the rc file and as environment variables.
const (
	KeyAPIURL        = "PDFDESK_API_URL"
	KeyFileManager   = "PDFDESK_FM_URL"
	KeyRootAlias     = "PDFDESK_ROOT_ALIAS"
	KeyDownloadDir   = "PDFDESK_DOWNLOAD_DIR"
	KeyStartDir      = "PDFDESK_START_DIR"
	KeyUploadTimeout = "PDFDESK_UPLOAD_TIMEOUT"
	KeyLogLevel      = "PDFDESK_LOG_LEVEL"
)

// Defaults
const (
	DefaultAPIURL         = "http://localhost:8080"
	DefaultFileManagerURL = "https://ej2-aspcore-service.azurewebsites.net/"
	DefaultRootAlias      = "Files"
	DefaultUploadTimeout  = 60 * time.Second
	DefaultLogLevel       = "warn"
)

type Config struct {
	APIURL         string
	FileManagerURL string
	RootAlias      string
	DownloadDir    string
	StartDir       string
	UploadTimeout  time.Duration
	LogLevel       string

	// Path is the rc file this config was loaded from (or will be saved to).
	Path string
}

func defaults() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		FileManagerURL: DefaultFileManagerURL,
		RootAlias:      DefaultRootAlias,
		DownloadDir:    ".",
		UploadTimeout:  DefaultUploadTimeout,
		LogLevel:       DefaultLogLevel,
	}
}

// DefaultPath returns ~/.pdfdeskrc, or ./.pdfdeskrc when no home is known.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./" + rcName
	}
	return filepath.Join(home, rcName)
}

// Load reads the rc file at path and overlays environment variables.
// A missing file is reported as an error, but the returned Config is still
// usable: it carries defaults plus whatever the environment provides.
func Load(path string) (Config, error) {
	cfg := defaults()
	cfg.Path = path

	values, fileErr := readRC(path)
	for k, v := range values {
		if err := cfg.set(k, v); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	for _, k := range []string{KeyAPIURL, KeyFileManager, KeyRootAlias, KeyDownloadDir, KeyStartDir, KeyUploadTimeout, KeyLogLevel} {
		if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
			if err := cfg.set(k, v); err != nil {
				return cfg, fmt.Errorf("env %s: %w", k, err)
			}
		}
	}
	return cfg, fileErr
}

func readRC(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		out[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return out, sc.Err()
}

func (c *Config) set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case KeyAPIURL:
		c.APIURL = strings.TrimRight(value, "/")
	case KeyFileManager:
		c.FileManagerURL = value
	case KeyRootAlias:
		c.RootAlias = value
	case KeyDownloadDir:
		c.DownloadDir = value
	case KeyStartDir:
		c.StartDir = value
	case KeyUploadTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid upload timeout %q: %w", value, err)
		}
		if d <= 0 {
			return fmt.Errorf("upload timeout must be positive, got %s", d)
		}
		c.UploadTimeout = d
	case KeyLogLevel:
		c.LogLevel = strings.ToLower(value)
	}
	return nil
}

// Save writes cfg as KEY=VALUE lines. Empty optional values are skipped.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(cfg.APIURL) == "" {
		return errors.New("api url is empty")
	}
	var b strings.Builder
	write := func(k, v string) {
		if v == "" {
			return
		}
		fmt.Fprintf(&b, "%s=%s\n", k, v)
	}
	write(KeyAPIURL, cfg.APIURL)
	write(KeyFileManager, cfg.FileManagerURL)
	write(KeyRootAlias, cfg.RootAlias)
	write(KeyDownloadDir, cfg.DownloadDir)
	write(KeyStartDir, cfg.StartDir)
	if cfg.UploadTimeout > 0 {
		write(KeyUploadTimeout, cfg.UploadTimeout.String())
	}
	write(KeyLogLevel, cfg.LogLevel)
	return os.WriteFile(path, []byte(b.String()), 0o600)
}
