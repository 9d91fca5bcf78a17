package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/otterboard/internal/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Record clipboard changes and drop-directory files into the library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		if !a.clip.HasPermission() && !a.clip.RequestPermission(ctx) {
			a.log.Warn("clipboard unavailable; only the drop directory will be watched")
		}

		stops, err := a.listen(ctx, func(it core.Item) {
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s %s\n", shortID(it.ID), it.Title)
		})
		if err != nil {
			return err
		}
		defer func() {
			for _, stop := range stops {
				stop()
			}
		}()

		a.log.Info("watching", "items", a.lib.Len())
		<-ctx.Done()
		return nil
	},
}

// listen attaches every configured source and feeds items into the ingest
// pipeline. Sources that cannot start are logged and skipped.
func (a *app) listen(ctx context.Context, onSaved func(core.Item)) ([]func(), error) {
	sources, err := a.sources()
	if err != nil {
		return nil, err
	}
	var stops []func()
	for _, src := range sources {
		stop, err := a.clip.Listen(ctx, src, func(it *core.Item) {
			saved, ok, err := a.ingest.Accept(ctx, it)
			if err != nil {
				a.log.Error("ingest", "error", err)
				return
			}
			if ok && onSaved != nil {
				onSaved(saved)
			}
		})
		if err != nil {
			a.log.Warn("clipboard source unavailable", "source", fmt.Sprintf("%T", src), "error", err)
			continue
		}
		stops = append(stops, stop)
	}
	return stops, nil
}
