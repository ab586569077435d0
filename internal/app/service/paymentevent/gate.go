package paymentevent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ovenline/bakehouse/internal/app/service/eventlog"
	ordersvc "github.com/ovenline/bakehouse/internal/app/service/order"
	"github.com/ovenline/bakehouse/internal/models"
	"github.com/ovenline/bakehouse/internal/platform/payments"
	"github.com/ovenline/bakehouse/pkg/logctx"
	"github.com/ovenline/bakehouse/pkg/metrics"
	"github.com/ovenline/bakehouse/pkg/types"
)

// ErrBadPayload rejects deliveries whose payload is unparseable or missing
// required metadata. No side effects are produced for these.
var ErrBadPayload = errors.New("invalid event payload")

// Gate admits externally delivered payment confirmations exactly once. The
// existing-order check here is an advisory fast path; correctness against
// concurrent redelivery is guaranteed by the idempotency key inside the
// commit transaction itself.
type Gate struct {
	events   *eventlog.Service
	orders   *ordersvc.Service
	payments payments.Client
	Logger   *zap.SugaredLogger
}

func NewGate(events *eventlog.Service, orders *ordersvc.Service, pay payments.Client, log *zap.SugaredLogger) *Gate {
	return &Gate{events: events, orders: orders, payments: pay, Logger: log}
}

// Result reports what admitting one event did.
type Result struct {
	OrderID string `json:"order_id,omitempty"`
	// Duplicate marks an idempotent replay: acknowledged, nothing reprocessed.
	Duplicate bool `json:"duplicate,omitempty"`
	// Ignored marks events that are valid but produce no order (unpaid
	// session, event type the engine does not consume).
	Ignored bool `json:"ignored,omitempty"`
}

// HandleEvent verifies, records, and applies one webhook delivery.
func (g *Gate) HandleEvent(ctx context.Context, provider types.PaymentProvider, payload []byte, sigHeader string) (res *Result, resErr error) {
	ev, err := g.payments.VerifyEventSignature(payload, sigHeader)
	if err != nil {
		// Deliberately opaque: the HTTP layer must not explain why.
		return nil, err
	}

	var traceID string
	if v, ok := ctx.Value("traceID").(string); ok {
		traceID = v
	}

	g.events.Save(ctx, &models.PaymentEventLog{
		ProviderID: string(provider),
		EventID:    ev.ID,
		TraceID:    traceID,
		Data:       datatypes.JSON(payload),
		Status:     models.PaymentEventLogStatusReceived,
	})

	defer func() {
		resMap := map[string]any{"result": res}
		status := models.PaymentEventLogStatusHandled
		if resErr != nil {
			resMap["error"] = resErr.Error()
			status = models.PaymentEventLogStatusHandleFailed
		}
		resBytes, _ := json.Marshal(resMap)
		g.events.Save(ctx, &models.PaymentEventLog{
			ProviderID: string(provider),
			EventID:    ev.ID,
			TraceID:    traceID,
			Data:       datatypes.JSON(payload),
			Result:     lo.ToPtr(datatypes.JSON(resBytes)),
			Status:     status,
		})
	}()

	switch ev.Type {
	case payments.EventCheckoutSessionCompleted:
		res, resErr = g.applyCheckoutCompleted(ctx, ev)
	default:
		logctx.FromCtx(ctx, g.Logger).Infow("payment_event_ignored", "event_id", ev.ID, "type", ev.Type)
		res = &Result{Ignored: true}
	}
	return res, resErr
}

func (g *Gate) applyCheckoutCompleted(ctx context.Context, ev *payments.Event) (*Result, error) {
	var session payments.Session
	if err := json.Unmarshal(ev.Data, &session); err != nil || session.ID == "" {
		return nil, fmt.Errorf("%w: malformed checkout session", ErrBadPayload)
	}

	// A session can complete without payment (e.g. expired async methods);
	// acknowledge so the provider stops retrying, but create nothing.
	if session.PaymentStatus != payments.PaymentStatusPaid {
		logctx.FromCtx(ctx, g.Logger).Infow("payment_event_unpaid_session", "session_id", session.ID, "payment_status", session.PaymentStatus)
		return &Result{Ignored: true}, nil
	}

	if existing, err := g.orders.FindByPaymentRef(ctx, session.ID); err != nil {
		return nil, err
	} else if existing != nil {
		metrics.DuplicateEvents.Inc()
		logctx.FromCtx(ctx, g.Logger).Infow("payment_event_duplicate", "session_id", session.ID, "order_id", existing.ID)
		return &Result{OrderID: existing.ID, Duplicate: true}, nil
	}

	commit, err := commitRequestFromSession(&session)
	if err != nil {
		return nil, err
	}

	o, err := g.orders.CommitPaidOrder(ctx, commit)
	if err != nil {
		return nil, fmt.Errorf("failed to commit order for session %s: %w", session.ID, err)
	}

	logctx.FromCtx(ctx, g.Logger).Infow("payment_event_committed", "session_id", session.ID, "order_id", o.ID)
	return &Result{OrderID: o.ID}, nil
}

// commitRequestFromSession translates a paid checkout session into a commit
// request. Pure; split out for testing.
func commitRequestFromSession(session *payments.Session) (*ordersvc.CommitRequest, error) {
	userID := session.Metadata["user_id"]
	itemsRaw := session.Metadata["items"]
	if userID == "" || itemsRaw == "" {
		return nil, fmt.Errorf("%w: missing user or items metadata", ErrBadPayload)
	}

	var items []payments.CheckoutItem
	if err := json.Unmarshal([]byte(itemsRaw), &items); err != nil || len(items) == 0 {
		return nil, fmt.Errorf("%w: malformed items metadata", ErrBadPayload)
	}

	dateStr := session.Metadata["delivery_date"]
	if dateStr == "" {
		dateStr = items[0].Date
	}
	deliveryDate, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: bad delivery date %q", ErrBadPayload, dateStr)
	}

	total := lo.SumBy(items, func(it payments.CheckoutItem) int64 {
		return it.PriceCents * int64(it.Quantity)
	})

	req := &ordersvc.CommitRequest{
		UserID: userID,
		Items: lo.Map(items, func(it payments.CheckoutItem, _ int) ordersvc.LineItem {
			return ordersvc.LineItem{
				BatchID:              it.BatchID,
				ProductID:            it.ProductID,
				Quantity:             it.Quantity,
				PriceAtPurchaseCents: it.PriceCents,
			}
		}),
		TotalCents:   total,
		DeliveryDate: deliveryDate,
		PaymentRef:   session.ID,
	}
	if session.PaymentIntentID != "" {
		req.PaymentIntentRef = lo.ToPtr(session.PaymentIntentID)
	}
	return req, nil
}
