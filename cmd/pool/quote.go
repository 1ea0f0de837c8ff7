package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"pairpool/internal/config"
	"pairpool/internal/engine"
)

type quoteResult struct {
	Kind       string `json:"kind"`
	AmountIn   string `json:"amount_in"`
	ReserveIn  string `json:"reserve_in"`
	ReserveOut string `json:"reserve_out"`
	AmountOut  string `json:"amount_out"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	amountIn, err := parseBigInt(cfg.AmountIn, "amount-in")
	if err != nil {
		return err
	}
	reserveIn, err := parseBigInt(cfg.ReserveIn, "reserve-in")
	if err != nil {
		return err
	}
	reserveOut, err := parseBigInt(cfg.ReserveOut, "reserve-out")
	if err != nil {
		return err
	}

	var amountOut *big.Int
	switch cfg.Kind {
	case "swap":
		k := new(big.Int).Mul(reserveIn, reserveOut)
		amountOut, err = engine.QuoteSwap(amountIn, reserveIn, reserveOut, k)
	case "co-deposit":
		amountOut, err = engine.QuoteCoDeposit(amountIn, reserveIn, reserveOut)
	default:
		return fmt.Errorf("unknown quote kind: %q", cfg.Kind)
	}
	if err != nil {
		return err
	}

	result := quoteResult{
		Kind:       cfg.Kind,
		AmountIn:   amountIn.String(),
		ReserveIn:  reserveIn.String(),
		ReserveOut: reserveOut.String(),
		AmountOut:  amountOut.String(),
	}
	encoder := json.NewEncoder(os.Stdout)
	return encoder.Encode(result)
}
