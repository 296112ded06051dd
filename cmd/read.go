package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sherpas/supply/internal/supply"
	"github.com/sherpas/supply/pkg/web"
	"github.com/spf13/cobra"
)

var (
	readChain string
	readJSON  bool
	readCmd   = &cobra.Command{
		Use:   "read",
		Short: "Read the supply contract once and print the result",
		RunE:  runRead,
	}
)

func runRead(cmd *cobra.Command, args []string) error {
	cfg, wallet, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	service, err := supply.NewService(ctx, cfg, wallet, nil)
	if err != nil {
		return err
	}
	defer service.Stop()

	result, err := service.Refresh(ctx, readChain)
	if err != nil {
		return err
	}
	if readJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), web.SupplyText(result))
	}
	if result.IsError() {
		return fmt.Errorf("failed to read supply on %s: %s", result.Chain, result.Reason)
	}
	return nil
}

func init() {
	readCmd.Flags().StringVar(&readChain, "chain", "", "Chain to read from, defaults to the contract chain")
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Print the result as json")
}
