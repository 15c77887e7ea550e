package sheetredirect

import (
	"context"
	"golang.org/x/sync/errgroup"
	"io"
	"log"
	"net"
)

// Run serves redirects until ctx is done. The server starts listening
// without waiting for the first refresh.
func Run(ctx context.Context, cfg Config) error {
	src, err := cfg.OpenSource(ctx)
	if err != nil {
		return err
	}
	if c, ok := src.(io.Closer); ok {
		defer func() {
			_ = c.Close()
		}()
	}

	lis, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return err
	}
	return serve(ctx, cfg, src, lis)
}

func serve(ctx context.Context, cfg Config, src Source, lis net.Listener) error {
	store := NewStore()
	refresher := NewRefresher(src, store, cfg.Interval)
	redirecter := NewRedirecter(store, !cfg.NoCache, cfg.Interval)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		refresher.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return Serve(ctx, lis, NewRouter(redirecter))
	})

	if err := g.Wait(); err != nil {
		log.Printf("app: stopped with error: %v", err)
		return err
	}
	log.Printf("app: stopped")
	return nil
}
