package main

import (
	"fmt"

	"github.com/caelisco/plenoptiform/form"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the encoded payload without sending it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tgt, err := openTarget(cmd, cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), form.Build(tgt.source).Encode())
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&pagePath, "page", "", "HTML page holding the form")
	addFieldFlags(queryCmd)
}
