package main

import (
	"context"
	"errors"
	"github.com/joho/godotenv"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"sheetredirect"
	"syscall"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalln("failed on loading .env:", err)
	}
	cfg, _, err := sheetredirect.ParseConfig(os.Args[1:])
	if err != nil {
		log.Fatalln(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = sheetredirect.Run(ctx, cfg); err != nil {
		log.Fatalln(err)
	}
}
