package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairpool/internal/config"
	"pairpool/internal/model"
	"pairpool/internal/pool"
	"pairpool/internal/storage"
	"pairpool/internal/storage/postgres"
	"pairpool/internal/token"
)

// opLine is one scripted operation. mint and approve act on the token
// ledger; deposit, swap, and withdraw act on the pool.
type opLine struct {
	Op      string `json:"op"`
	Holder  string `json:"holder"`
	Asset   string `json:"asset,omitempty"`
	Amount  string `json:"amount,omitempty"`
	AmountA string `json:"amount_a,omitempty"`
	AmountB string `json:"amount_b,omitempty"`
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSimulate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Ops == "" {
		return fmt.Errorf("ops path is required")
	}

	poolAddr, err := parseAddress(cfg.PoolAddress, "pool-address")
	if err != nil {
		return err
	}
	assetA, err := parseAddress(cfg.AssetA, "asset-a")
	if err != nil {
		return err
	}
	assetB, err := parseAddress(cfg.AssetB, "asset-b")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := []storage.Sink{storage.NewJsonlSink(cfg.Out)}

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, &postgres.RecordSink{Store: store, Ctx: ctx})
	}

	ledger := token.NewMemoryLedger(poolAddr)
	p, err := pool.New(poolAddr, assetA, assetB, ledger, pool.Options{
		ToleranceDivisor: cfg.Tolerance,
		Sink:             multiSink(sinks),
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("build pool: %w", err)
	}

	stateStore := &storage.FileStateStore{Path: cfg.StateFile}
	if state, ok, err := stateStore.Load(); err != nil {
		return err
	} else if ok {
		if err := p.RestoreState(state); err != nil {
			return fmt.Errorf("restore pool state: %w", err)
		}
		logger.Info("resumed pool state",
			zap.String("reserve_a", state.ReserveA),
			zap.String("reserve_b", state.ReserveB),
			zap.String("total_shares", state.TotalShares),
		)
	}

	input, err := os.Open(cfg.Ops)
	if err != nil {
		return fmt.Errorf("open ops: %w", err)
	}
	defer input.Close()

	logger.Info("simulate start",
		zap.String("pool", poolAddr.Hex()),
		zap.String("asset_a", assetA.Hex()),
		zap.String("asset_b", assetB.Hex()),
		zap.String("ops", cfg.Ops),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	scanner := bufio.NewScanner(input)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, applied, rejected int
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var op opLine
		if err := json.Unmarshal(line, &op); err != nil {
			return fmt.Errorf("parse op %d: %w", total, err)
		}
		if err := applyOp(p, ledger, op); err != nil {
			rejected++
			logger.Warn("operation rejected",
				zap.Int("line", total),
				zap.String("op", op.Op),
				zap.String("holder", op.Holder),
				zap.Error(err),
			)
			continue
		}
		applied++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ops: %w", err)
	}

	if err := p.CheckInvariants(); err != nil {
		return fmt.Errorf("post-run invariants: %w", err)
	}

	state := p.State()
	if err := stateStore.Save(state); err != nil {
		return err
	}
	if store != nil {
		if err := store.SavePoolState(ctx, state); err != nil {
			return fmt.Errorf("save pool state: %w", err)
		}
	}

	logger.Info("simulate complete",
		zap.Int("total", total),
		zap.Int("applied", applied),
		zap.Int("rejected", rejected),
		zap.String("reserve_a", state.ReserveA),
		zap.String("reserve_b", state.ReserveB),
		zap.String("k", state.K),
		zap.String("total_shares", state.TotalShares),
	)

	return nil
}

func applyOp(p *pool.Pool, ledger *token.MemoryLedger, op opLine) error {
	holder, err := parseAddress(op.Holder, "holder")
	if err != nil {
		return err
	}

	switch op.Op {
	case "mint":
		asset, err := parseAddress(op.Asset, "asset")
		if err != nil {
			return err
		}
		amount, err := parseBigInt(op.Amount, "amount")
		if err != nil {
			return err
		}
		ledger.Mint(asset, holder, amount)
		return nil
	case "approve":
		asset, err := parseAddress(op.Asset, "asset")
		if err != nil {
			return err
		}
		amount, err := parseBigInt(op.Amount, "amount")
		if err != nil {
			return err
		}
		ledger.Approve(asset, holder, amount)
		return nil
	case "deposit":
		amountA, err := parseBigInt(op.AmountA, "amount_a")
		if err != nil {
			return err
		}
		amountB, err := parseBigInt(op.AmountB, "amount_b")
		if err != nil {
			return err
		}
		_, err = p.Deposit(holder, amountA, amountB)
		return err
	case "swap":
		asset, err := parseAddress(op.Asset, "asset")
		if err != nil {
			return err
		}
		amount, err := parseBigInt(op.Amount, "amount")
		if err != nil {
			return err
		}
		_, err = p.Swap(holder, asset, amount)
		return err
	case "withdraw":
		amount, err := parseBigInt(op.Amount, "amount")
		if err != nil {
			return err
		}
		_, _, err = p.Withdraw(holder, amount)
		return err
	default:
		return fmt.Errorf("unknown op: %q", op.Op)
	}
}

// multiSink fans one record batch out to every configured sink.
type multiSink []storage.Sink

func (m multiSink) PutRecordBatch(records []model.Record) error {
	for _, sink := range m {
		if err := sink.PutRecordBatch(records); err != nil {
			return err
		}
	}
	return nil
}

func parseAddress(value, name string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s must be a hex address, got %q", name, value)
	}
	return common.HexToAddress(value), nil
}

func parseBigInt(value, name string) (*big.Int, error) {
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("%s must be a decimal integer, got %q", name, value)
	}
	return parsed, nil
}
