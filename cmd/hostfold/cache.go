package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hostfold/internal/regcache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached correspondence tables",
}

var cacheDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := regcache.Open("hostfold")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.Dir())
		return nil
	},
}

var cacheDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Remove every cached table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := regcache.Open("hostfold")
		if err != nil {
			return err
		}
		if err := c.DropAll(); err != nil {
			return fmt.Errorf("drop cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", c.Dir())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheDirCmd, cacheDropCmd)
}
