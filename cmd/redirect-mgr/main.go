package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"io/fs"
	"log"
	"sheetredirect"
	"time"
)

var opts struct {
	Filename      string `short:"f" long:"file" env:"REDIRECT_DB" description:"path to sqlite3 db"`
	NodeId        int64  `short:"n" long:"node" description:"node id for snowflake" default:"1"`
	SpreadsheetId string `long:"spreadsheet-id" env:"SPREADSHEET_ID" description:"google spreadsheet id (import)"`
	SheetName     string `long:"sheet-name" env:"SHEET_NAME" description:"sheet tab name (import)"`
	ApiKey        string `long:"api-key" env:"API_KEY" description:"google api key (import)"`
}

const usage = "usage: redirect-mgr -f FILE add <link> <redirect> | remove <link> | list | import"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalln("failed on loading .env:", err)
	}
	args, err := flags.Parse(&opts)
	if err != nil {
		log.Fatalln(err)
	}
	if opts.Filename == "" || len(args) == 0 {
		log.Fatalln(usage)
	}
	bk, err := sheetredirect.SqliteOpen(opts.Filename, true, opts.NodeId)
	if err != nil {
		log.Fatalln(err)
	}
	defer func(bk sheetredirect.Backend) {
		_ = bk.Close()
	}(bk)
	mgr, err := sheetredirect.NewManager(bk)
	if err != nil {
		log.Fatalln(err)
	}
	switch args[0] {
	case "add":
		if len(args) != 3 {
			log.Fatalln(usage)
		}
		id, err := mgr.Add(args[1], args[2])
		if err != nil {
			log.Fatalln("failed on adding:", err)
		}
		fmt.Println(id)
	case "remove":
		if len(args) != 2 {
			log.Fatalln(usage)
		}
		n, err := mgr.Remove(args[1])
		if err != nil {
			log.Fatalln("failed on removing:", err)
		}
		fmt.Printf("removed %d rows\n", n)
	case "list":
		list(mgr)
	case "import":
		importSheet(mgr)
	default:
		log.Fatalln(usage)
	}
}

func list(mgr *sheetredirect.Manager) {
	entries, err := mgr.List()
	if err != nil {
		log.Fatalln("failed on listing:", err)
	}
	for _, e := range entries {
		fmt.Printf("%s\t%s\n", e.Link, e.Redirect)
	}
}

func importSheet(mgr *sheetredirect.Manager) {
	cfg := sheetredirect.Config{
		SpreadsheetId: opts.SpreadsheetId,
		SheetName:     opts.SheetName,
		ApiKey:        opts.ApiKey,
		Interval:      sheetredirect.DefaultRefreshInterval,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalln(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	src, err := sheetredirect.SheetsOpen(ctx, opts.SpreadsheetId, opts.SheetName, opts.ApiKey)
	if err != nil {
		log.Fatalln(err)
	}
	n, err := mgr.Import(ctx, src)
	if err != nil {
		log.Fatalln("failed on import:", err)
	}
	fmt.Printf("imported %d rows\n", n)
}
