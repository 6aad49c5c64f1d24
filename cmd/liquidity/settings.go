package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liquidityFlow/internal/settings"
)

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("settings-path")
	current := settings.NewStore(path).Get()

	fmt.Printf("provide slippage:       %d bps\n", current.ProvideSlippageBps)
	fmt.Printf("remove slippage:        %d bps\n", current.RemoveSlippageBps)
	fmt.Printf("swap slippage:          %d bps\n", current.SwapSlippageBps)
	fmt.Printf("transaction expiration: %d s\n", current.TransactionExpirationSeconds)
	return nil
}

func runSettingsSet(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("settings-path")
	provide, _ := cmd.Flags().GetUint64("provide-slippage-bps")
	remove, _ := cmd.Flags().GetUint64("remove-slippage-bps")
	swap, _ := cmd.Flags().GetUint64("swap-slippage-bps")
	expiration, _ := cmd.Flags().GetUint64("expiration-seconds")

	next := settings.TransactionSettings{
		ProvideSlippageBps:           provide,
		RemoveSlippageBps:            remove,
		SwapSlippageBps:              swap,
		TransactionExpirationSeconds: expiration,
	}
	if err := settings.NewStore(path).Set(next); err != nil {
		return err
	}
	fmt.Println("settings updated")
	return nil
}
