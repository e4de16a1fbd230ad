package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/eapi"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/store"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/termfmt"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the Provisioned-Net Store's current desired state",
	Long: `show prints the switch-compatible view the store would hand the
reconciler on the next tick: one row per provisioned network, with its VLAN
and the sorted list of bound hosts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, err := store.NewRedisStoreFromAddr(app.cfg.EffectiveRedisAddr())
		if err != nil {
			return fmt.Errorf("connecting to store: %w", err)
		}
		if err := st.Initialize(ctx); err != nil {
			return fmt.Errorf("store unavailable: %w", err)
		}

		nets, err := st.GetNetworkList(ctx)
		if err != nil {
			return fmt.Errorf("listing networks: %w", err)
		}
		if len(nets) == 0 {
			fmt.Println(termfmt.Dim("no bound networks provisioned"))
			return nil
		}

		t := termfmt.NewTable("NETWORK", "VLAN", "HOSTS")
		for _, id := range sortedNetIDs(nets) {
			n := nets[id]
			t.Row(id, strconv.Itoa(n.SegmentationID), strings.Join(n.HostID, ", "))
		}
		t.Flush()
		return nil
	},
}

func sortedNetIDs(m map[string]eapi.RemoteNet) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func init() {
	rootCmd.AddCommand(showCmd)
}
