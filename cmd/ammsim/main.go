// Command ammsim is a local demonstration harness: it wires a factory, a
// pool, an in-memory asset ledger, and a zap logger, then runs a scripted
// sequence of liquidity and swap operations end to end, printing the
// resulting reserves and emitted events. It deploys nothing to any chain
// or registry.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hiveswap/ammcore/internal/config"
	"github.com/hiveswap/ammcore/internal/ledger"
	"github.com/hiveswap/ammcore/internal/logging"
	"github.com/hiveswap/ammcore/pkg/amm/eventlog"
	"github.com/hiveswap/ammcore/pkg/amm/factory"
)

func main() {
	root := &cobra.Command{
		Use:          "ammsim",
		Short:        "Local constant-product pool demonstration harness",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Seed a pool, add liquidity, and perform a swap",
		RunE:  runScript,
	}
	runCmd.Flags().Uint64("chain-id", 1, "ambient chain identifier for the signed-approval domain separator")
	runCmd.Flags().Uint64("swap-fee-bps", 30, "informational only; the pool always enforces 30bps")
	runCmd.Flags().String("postgres-dsn", "", "optional Postgres DSN for durable event persistence")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	runCmd.Flags().String("fee-to-setter", "", "hex address of the factory fee administrator")
	runCmd.Flags().Bool("enable-protocol-fee", false, "set feeTo to a demo recipient before swapping")
	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScript(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()

	sinks := []eventlog.EventSink{eventlog.NewZapSink(logger)}
	mem := eventlog.NewMemory()
	sinks = append(sinks, mem)
	if cfg.PostgresDSN != "" {
		pg, err := eventlog.NewPostgresSink(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres sink: %w", err)
		}
		defer pg.Close()
		sinks = append(sinks, pg)
	}
	sink := eventlog.NewMulti(sinks...)

	led := ledger.NewMemory()

	admin := common.HexToAddress("0xadmin")
	if cfg.FeeToSetter != "" {
		admin = common.HexToAddress(cfg.FeeToSetter)
	}
	factorySelf := common.HexToAddress("0xfactory")
	f := factory.New(factorySelf, admin, led, sink, uint256.NewInt(cfg.ChainID), nil, logger, time.Now)

	if cfg.EnableProtocol {
		feeRecipient := common.HexToAddress("0xfeecollector")
		if err := f.SetFeeTo(admin, feeRecipient); err != nil {
			return err
		}
		logger.Info("protocol fee enabled", zap.Stringer("feeTo", feeRecipient))
	}

	assetA := common.HexToAddress("0x0a")
	assetB := common.HexToAddress("0x0b")
	wallet := common.HexToAddress("0xdeposit0r")

	p, err := f.CreatePair(assetA, assetB)
	if err != nil {
		return fmt.Errorf("create pair: %w", err)
	}

	const E = 1_000_000_000_000_000_000
	led.Credit(p.Asset0(), p.Address(), new(uint256.Int).Mul(uint256.NewInt(E), uint256.NewInt(5)))
	led.Credit(p.Asset1(), p.Address(), new(uint256.Int).Mul(uint256.NewInt(E), uint256.NewInt(10)))

	liquidity, err := p.Mint(ctx, wallet, wallet)
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	logger.Info("minted initial liquidity", zap.String("liquidity", liquidity.Dec()))

	swapper := common.HexToAddress("0xswapper")
	led.Credit(p.Asset0(), p.Address(), uint256.NewInt(E))
	out := new(uint256.Int)
	if err := out.SetFromDecimal("1662497915624478906"); err != nil {
		return fmt.Errorf("internal: bad literal: %w", err)
	}
	if err := p.Swap(ctx, swapper, uint256.NewInt(0), out, swapper, nil, nil); err != nil {
		return fmt.Errorf("swap: %w", err)
	}

	reserve0, reserve1, ts := p.Reserves()
	fmt.Printf("pool %s reserves: (%s, %s) as of %d\n", p.Address().Hex(), reserve0.Dec(), reserve1.Dec(), ts)
	fmt.Printf("recorded %d events\n", len(mem.Events()))
	for _, evt := range mem.Events() {
		fmt.Printf("  %s emitter=%s\n", evt.Kind, evt.Emitter.Hex())
	}
	return nil
}
