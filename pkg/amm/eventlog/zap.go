package eventlog

import (
	"go.uber.org/zap"

	"github.com/holiman/uint256"

	"github.com/hiveswap/ammcore/pkg/amm/types"
)

// ZapSink logs every event as a structured entry. It is the ambient
// observability sink the teacher pack's indexer carries regardless of
// whether durable persistence is configured.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink wraps logger, defaulting to a no-op logger when nil.
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{log: logger}
}

func str(v *uint256.Int) string {
	if v == nil {
		return "<nil>"
	}
	return v.Dec()
}

func (z *ZapSink) EmitTransfer(pool, from, to types.Address, value *uint256.Int) {
	z.log.Info("Transfer", zap.Stringer("pool", pool), zap.Stringer("from", from), zap.Stringer("to", to), zap.String("value", str(value)))
}

func (z *ZapSink) EmitApproval(pool, owner, spender types.Address, value *uint256.Int) {
	z.log.Info("Approval", zap.Stringer("pool", pool), zap.Stringer("owner", owner), zap.Stringer("spender", spender), zap.String("value", str(value)))
}

func (z *ZapSink) EmitMint(pool, sender types.Address, amount0, amount1 *uint256.Int) {
	z.log.Info("Mint", zap.Stringer("pool", pool), zap.Stringer("sender", sender), zap.String("amount0", str(amount0)), zap.String("amount1", str(amount1)))
}

func (z *ZapSink) EmitBurn(pool, sender types.Address, amount0, amount1 *uint256.Int, to types.Address) {
	z.log.Info("Burn", zap.Stringer("pool", pool), zap.Stringer("sender", sender), zap.String("amount0", str(amount0)), zap.String("amount1", str(amount1)), zap.Stringer("to", to))
}

func (z *ZapSink) EmitSwap(pool, sender types.Address, amount0In, amount1In, amount0Out, amount1Out *uint256.Int, to types.Address) {
	z.log.Info("Swap",
		zap.Stringer("pool", pool), zap.Stringer("sender", sender),
		zap.String("amount0In", str(amount0In)), zap.String("amount1In", str(amount1In)),
		zap.String("amount0Out", str(amount0Out)), zap.String("amount1Out", str(amount1Out)),
		zap.Stringer("to", to),
	)
}

func (z *ZapSink) EmitSync(pool types.Address, reserve0, reserve1 *uint256.Int) {
	z.log.Info("Sync", zap.Stringer("pool", pool), zap.String("reserve0", str(reserve0)), zap.String("reserve1", str(reserve1)))
}

func (z *ZapSink) EmitPairCreated(factory, asset0, asset1, pool types.Address, index uint64) {
	z.log.Info("PairCreated",
		zap.Stringer("factory", factory), zap.Stringer("asset0", asset0), zap.Stringer("asset1", asset1),
		zap.Stringer("pool", pool), zap.Uint64("index", index),
	)
}
