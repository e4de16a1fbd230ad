package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/eapi"
	hwsync "github.com/aristahw/tor-hwdriver/pkg/hwdriver/sync"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/store"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/termfmt"
	"github.com/aristahw/tor-hwdriver/pkg/util"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation tick against the switch now",
	Long: `sync fetches remote state from the switch's eAPI, reads desired state
from the Provisioned-Net Store, and issues the minimal set of RPC calls
needed to bring the switch into agreement — the same algorithm the EOS
driver's background reconciler runs on its own schedule, invoked once here
on demand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		client, err := eapi.NewEAPIClient(eapi.Config{
			User: app.cfg.AristaDriver.User,
			Pass: app.cfg.AristaDriver.Pass,
			Host: app.cfg.AristaDriver.Host,
		})
		if err != nil {
			return fmt.Errorf("building eAPI client: %w", err)
		}

		st, err := store.NewRedisStoreFromAddr(app.cfg.EffectiveRedisAddr())
		if err != nil {
			return fmt.Errorf("connecting to store: %w", err)
		}
		if err := st.Initialize(ctx); err != nil {
			return fmt.Errorf("store unavailable: %w", err)
		}

		svc := hwsync.New(client, st, util.WithDriver("arista"))
		if err := svc.Tick(ctx); err != nil {
			fmt.Println(termfmt.Red("sync tick failed: " + err.Error()))
			return err
		}
		fmt.Println(termfmt.Green("sync tick complete"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
