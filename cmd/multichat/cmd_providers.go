package main

import (
	"fmt"
	"text/tabwriter"

	"multichat/internal/provider"

	"github.com/spf13/cobra"
)

// providersCmd lists the selector catalog
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the providers in the model selector",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\tID\tNAME\tSTATUS")
		for _, p := range provider.Catalog() {
			mark := " "
			if string(p.ID) == a.cfg.LLM.Provider {
				mark = "*"
			}
			status := "via gemini"
			if p.Connected {
				status = "connected"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, p.ID, p.Label(), status)
		}
		return w.Flush()
	},
}
