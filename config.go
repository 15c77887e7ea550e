package sheetredirect

import (
	"context"
	"fmt"
	"github.com/jessevdk/go-flags"
	"strings"
	"time"
)

const (
	SourceSheets = "sheets"
	SourceSqlite = "sqlite"
)

// Config is filled from options or, more commonly, the environment.
type Config struct {
	SpreadsheetId string        `long:"spreadsheet-id" env:"SPREADSHEET_ID" description:"google spreadsheet id"`
	SheetName     string        `long:"sheet-name" env:"SHEET_NAME" description:"name of the tab holding redirect and link columns"`
	ApiKey        string        `long:"api-key" env:"API_KEY" description:"google api key"`
	Port          uint16        `short:"p" long:"port" env:"PORT" description:"listen port" default:"3000"`
	Interval      time.Duration `long:"interval" env:"REFRESH_INTERVAL" description:"refresh interval" default:"30s"`
	Source        string        `long:"source" env:"REDIRECT_SOURCE" description:"where redirects come from" choice:"sheets" choice:"sqlite" default:"sheets"`
	Filename      string        `short:"f" long:"file" env:"REDIRECT_DB" description:"path to sqlite3 db (sqlite source)"`
	NoCache       bool          `long:"no-cache" env:"REDIRECT_NO_CACHE" description:"disable the lookup cache"`
}

// ParseConfig parses args on top of the environment and validates the result.
func ParseConfig(args []string) (Config, []string, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	rest, err := parser.ParseArgs(args)
	if err != nil {
		return Config{}, nil, err
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, rest, nil
}

func (c *Config) Validate() error {
	switch c.Source {
	case SourceSheets, "":
		var missing []string
		if c.SpreadsheetId == "" {
			missing = append(missing, "SPREADSHEET_ID")
		}
		if c.SheetName == "" {
			missing = append(missing, "SHEET_NAME")
		}
		if c.ApiKey == "" {
			missing = append(missing, "API_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
		}
	case SourceSqlite:
		if c.Filename == "" {
			return fmt.Errorf("sqlite source needs a db file (REDIRECT_DB)")
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", c.Interval)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%v", c.Port)
}

// OpenSource opens the configured source. The caller closes it when it
// implements io.Closer.
func (c *Config) OpenSource(ctx context.Context) (Source, error) {
	if c.Source == SourceSqlite {
		bk, err := SqliteOpen(c.Filename, false, 0)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", c.Filename, err)
		}
		return bk, nil
	}
	bk, err := SheetsOpen(ctx, c.SpreadsheetId, c.SheetName, c.ApiKey)
	if err != nil {
		return nil, err
	}
	return bk, nil
}
