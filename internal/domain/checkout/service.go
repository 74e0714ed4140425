package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/gamestore/internal/domain/cart"
	"github.com/xenking/gamestore/internal/domain/ledger"
	"github.com/xenking/gamestore/internal/domain/txn"
	"github.com/xenking/gamestore/internal/domain/wallet"
)

const instrumentationName = "github.com/xenking/gamestore/internal/domain/checkout"

// Option configures a Service.
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTracerProvider sets the tracer provider used for checkout spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the meter provider used for checkout counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// Service implements checkout and refund.
type Service struct {
	tx      txn.Transactor
	carts   Carts
	wallets Wallets
	library Library
	ledger  Ledger

	tracer    trace.Tracer
	checkouts metric.Int64Counter
	refunds   metric.Int64Counter
	failures  metric.Int64Counter
}

// NewService creates a checkout Service.
func NewService(
	tx txn.Transactor,
	carts Carts,
	wallets Wallets,
	library Library,
	ledger Ledger,
	opts ...Option,
) (*Service, error) {
	o := options{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName)
	s := &Service{
		tx:      tx,
		carts:   carts,
		wallets: wallets,
		library: library,
		ledger:  ledger,
		tracer:  o.tracerProvider.Tracer(instrumentationName),
	}

	var err error
	if s.checkouts, err = meter.Int64Counter("store.checkouts",
		metric.WithDescription("Completed checkouts"),
	); err != nil {
		return nil, errors.Wrap(err, "checkouts counter")
	}
	if s.refunds, err = meter.Int64Counter("store.refunds",
		metric.WithDescription("Completed refunds"),
	); err != nil {
		return nil, errors.Wrap(err, "refunds counter")
	}
	if s.failures, err = meter.Int64Counter("store.failures",
		metric.WithDescription("Failed checkouts and refunds"),
	); err != nil {
		return nil, errors.Wrap(err, "failures counter")
	}
	return s, nil
}

// Checkout purchases every item in the user's cart. The cart row is locked
// for the duration, ownership is re-checked, the wallet is debited by the
// live total, and each item is granted and recorded at its current price.
func (s *Service) Checkout(ctx context.Context, userID int64) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Checkout",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	var receipt *Receipt
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.carts.LockForCheckout(ctx, userID)
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return ErrEmptyCart
		}

		total := c.Total()
		for _, item := range c.Items {
			owns, err := s.library.Owns(ctx, userID, item.Product.ID)
			if err != nil {
				return errors.Wrap(err, "check ownership")
			}
			if owns {
				return &cart.AlreadyOwnedError{ProductID: item.Product.ID}
			}
		}

		balance, err := s.wallets.Debit(ctx, userID, total)
		if err != nil {
			return err
		}

		txs := make([]ledger.Transaction, 0, len(c.Items))
		for _, item := range c.Items {
			if err := s.library.Grant(ctx, userID, item.Product.ID); err != nil {
				return errors.Wrapf(err, "grant product %d", item.Product.ID)
			}
			t, err := s.ledger.Record(ctx, userID, item.Product.ID, item.Product.Price)
			if err != nil {
				return errors.Wrapf(err, "record product %d", item.Product.ID)
			}
			t.ProductName = item.Product.Name
			txs = append(txs, *t)
		}

		if err := s.carts.Clear(ctx, c.ID); err != nil {
			return err
		}

		receipt = &Receipt{
			Total:        total,
			Balance:      balance,
			Transactions: txs,
		}
		return nil
	})
	if err != nil {
		s.fail(ctx, span, "checkout", err)
		return nil, err
	}

	s.checkouts.Add(ctx, 1)
	span.SetAttributes(
		attribute.Int("checkout.items", len(receipt.Transactions)),
		attribute.String("checkout.total", receipt.Total.StringFixed(2)),
	)
	return receipt, nil
}

// Refund voids one of the user's transactions, credits its captured price
// back and revokes ownership of the product. Transactions of other users
// are reported as ledger.ErrNotFound.
func (s *Service) Refund(ctx context.Context, userID, transactionID int64) (*RefundResult, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Refund",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("transaction.id", transactionID),
		),
	)
	defer span.End()

	var result *RefundResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.ledger.Void(ctx, userID, transactionID)
		if err != nil {
			return err
		}

		var balance decimal.Decimal
		if t.Price.IsPositive() {
			balance, err = s.wallets.Credit(ctx, userID, t.Price)
			if err != nil {
				return err
			}
		} else {
			// Free products leave the wallet untouched.
			p, err := s.wallets.Profile(ctx, userID)
			if err != nil {
				return err
			}
			balance = p.Balance
		}

		if err := s.library.Revoke(ctx, userID, t.ProductID); err != nil {
			return errors.Wrapf(err, "revoke product %d", t.ProductID)
		}

		result = &RefundResult{Transaction: *t, Balance: balance}
		return nil
	})
	if err != nil {
		s.fail(ctx, span, "refund", err)
		return nil, err
	}

	s.refunds.Add(ctx, 1)
	return result, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("reason", reason(err)),
	))
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, cart.ErrAlreadyOwned):
		return "already_owned"
	case errors.Is(err, ledger.ErrNotFound):
		return "not_found"
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "internal"
	}
}
