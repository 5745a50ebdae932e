package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/holiman/uint256"

	"github.com/hiveswap/ammcore/pkg/amm/types"
)

// pgInsertTimeout bounds each fire-and-forget insert so a stalled
// connection cannot keep an insert goroutine alive for longer than this.
const pgInsertTimeout = 5 * time.Second

// PostgresSink durably persists the raw event stream, the way the pack's
// indexer persists decoded logs. It deliberately stores the flat event
// record only — no aggregation, no derived metrics — those belong to an
// out-of-scope analytics layer, not the core.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects to dsn and returns a sink backed by it. Callers
// are expected to have already applied the schema (see Schema).
func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("eventlog: postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("eventlog: connect: %w", err)
	}
	return &PostgresSink{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Schema is the DDL for the single events table this sink writes to.
const Schema = `
CREATE TABLE IF NOT EXISTS amm_events (
	id          BIGSERIAL PRIMARY KEY,
	kind        TEXT NOT NULL,
	emitter     TEXT NOT NULL,
	from_addr   TEXT,
	to_addr     TEXT,
	owner       TEXT,
	spender     TEXT,
	sender      TEXT,
	asset0      TEXT,
	asset1      TEXT,
	pool        TEXT,
	value       NUMERIC,
	amount0     NUMERIC,
	amount1     NUMERIC,
	amount0_in  NUMERIC,
	amount1_in  NUMERIC,
	amount0_out NUMERIC,
	amount1_out NUMERIC,
	reserve0    NUMERIC,
	reserve1    NUMERIC,
	pair_index  BIGINT,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func dec(v *uint256.Int) *string {
	if v == nil {
		return nil
	}
	s := v.Dec()
	return &s
}

func (s *PostgresSink) insert(ctx context.Context, e Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO amm_events (
			kind, emitter, from_addr, to_addr, owner, spender, sender, asset0, asset1, pool,
			value, amount0, amount1, amount0_in, amount1_in, amount0_out, amount1_out,
			reserve0, reserve1, pair_index
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`,
		e.Kind.String(), e.Emitter.Hex(), e.From.Hex(), e.To.Hex(), e.Owner.Hex(), e.Spender.Hex(),
		e.Sender.Hex(), e.Asset0.Hex(), e.Asset1.Hex(), e.Pool.Hex(),
		dec(e.Value), dec(e.Amount0), dec(e.Amount1), dec(e.Amount0In), dec(e.Amount1In),
		dec(e.Amount0Out), dec(e.Amount1Out), dec(e.Reserve0), dec(e.Reserve1), e.Index,
	)
	return err
}

// background issues the insert without blocking the caller's mutating
// operation on database latency. A failed insert is dropped and its error
// is not reported anywhere, since EventSink methods are fire-and-forget by
// contract (see package doc).
func (s *PostgresSink) background(e Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pgInsertTimeout)
		defer cancel()
		_ = s.insert(ctx, e)
	}()
}

func (s *PostgresSink) EmitTransfer(pool, from, to types.Address, value *uint256.Int) {
	s.background(Event{Kind: KindTransfer, Emitter: pool, From: from, To: to, Value: value})
}

func (s *PostgresSink) EmitApproval(pool, owner, spender types.Address, value *uint256.Int) {
	s.background(Event{Kind: KindApproval, Emitter: pool, Owner: owner, Spender: spender, Value: value})
}

func (s *PostgresSink) EmitMint(pool, sender types.Address, amount0, amount1 *uint256.Int) {
	s.background(Event{Kind: KindMint, Emitter: pool, Sender: sender, Amount0: amount0, Amount1: amount1})
}

func (s *PostgresSink) EmitBurn(pool, sender types.Address, amount0, amount1 *uint256.Int, to types.Address) {
	s.background(Event{Kind: KindBurn, Emitter: pool, Sender: sender, Amount0: amount0, Amount1: amount1, To: to})
}

func (s *PostgresSink) EmitSwap(pool, sender types.Address, amount0In, amount1In, amount0Out, amount1Out *uint256.Int, to types.Address) {
	s.background(Event{
		Kind: KindSwap, Emitter: pool, Sender: sender,
		Amount0In: amount0In, Amount1In: amount1In, Amount0Out: amount0Out, Amount1Out: amount1Out,
		To: to,
	})
}

func (s *PostgresSink) EmitSync(pool types.Address, reserve0, reserve1 *uint256.Int) {
	s.background(Event{Kind: KindSync, Emitter: pool, Reserve0: reserve0, Reserve1: reserve1})
}

func (s *PostgresSink) EmitPairCreated(factory, asset0, asset1, pool types.Address, index uint64) {
	s.background(Event{Kind: KindPairCreated, Emitter: factory, Asset0: asset0, Asset1: asset1, Pool: pool, Index: index})
}

