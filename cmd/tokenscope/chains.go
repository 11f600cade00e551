package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tokenScope/internal/config"
)

func runChains(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, name := range config.ChainNames(cfg.Chains) {
		cc := cfg.Chains[name]
		fmt.Fprintf(w, "%s\t%s\tchain_id=%d\tnative=%s\twrapped=%s\n", name, cc.Name, cc.ChainID, cc.NativeSymbol, cc.WrappedNative)
		fmt.Fprintf(w, "\tstablecoins\t%s\n", strings.Join(cc.Stablecoins, ","))
		if len(cc.ExtraQuotes) > 0 {
			fmt.Fprintf(w, "\textra quotes\t%s\n", strings.Join(cc.ExtraQuotes, ","))
		}
		for _, d := range cc.DEXes {
			fmt.Fprintf(w, "\t%s\t%s\t%s\n", d.Name, d.Family, dexTarget(d))
		}
	}
	return w.Flush()
}

func dexTarget(d config.DEXConfig) string {
	switch {
	case d.Factory != "":
		return "factory=" + d.Factory
	case d.Registry != "":
		return "registry=" + d.Registry
	case d.Vault != "":
		return fmt.Sprintf("vault=%s pools=%d", d.Vault, len(d.PoolIDs))
	default:
		return ""
	}
}
