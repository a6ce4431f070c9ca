// internal/intake/conversation/engine.go

// Package conversation orchestrates one chat turn: context assembly, gate
// admission, the provider chain, parsing, business rules, and persistence.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	cerrors "logistics-intake/internal/common/errors"
	"logistics-intake/internal/common/logger"
	"logistics-intake/internal/common/metrics"
	"logistics-intake/internal/common/observability"
	"logistics-intake/internal/intake/extraction"
	"logistics-intake/internal/intake/gate"
	"logistics-intake/internal/intake/memory"
	"logistics-intake/internal/intake/rules"
	"logistics-intake/internal/models"
)

// Completer is the provider chain contract.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userContext string) (string, error)
}

// OrderSaver persists a finalized order. A single call, assumed atomic by the
// collaborator; no read-modify-write.
type OrderSaver interface {
	Save(ctx context.Context, order *models.ServiceOrder) (int64, error)
}

// Notifier is told about finalized orders. Failures are the notifier's
// problem; the turn outcome never depends on it.
type Notifier interface {
	OrderFinalized(ctx context.Context, order *models.ServiceOrder)
}

// Engine is the conversation state machine.
type Engine struct {
	gate     *gate.Gate
	chain    Completer
	rules    *rules.Engine
	memory   memory.Store
	orders   OrderSaver
	notifier Notifier
	obs      *observability.Observability
	logger   logger.Logger

	enabled atomic.Bool
	now     func() time.Time

	total     atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	ignored   atomic.Int64
}

type Deps struct {
	Gate     *gate.Gate
	Chain    Completer
	Rules    *rules.Engine
	Memory   memory.Store
	Orders   OrderSaver
	Notifier Notifier                     // optional
	Obs      *observability.Observability // optional
	Logger   logger.Logger

	BotEnabled bool
}

func NewEngine(deps Deps) *Engine {
	e := &Engine{
		gate:     deps.Gate,
		chain:    deps.Chain,
		rules:    deps.Rules,
		memory:   deps.Memory,
		orders:   deps.Orders,
		notifier: deps.Notifier,
		obs:      deps.Obs,
		logger: deps.Logger.With(map[string]interface{}{
			"component": "conversation-engine",
		}),
		now: time.Now,
	}
	e.enabled.Store(deps.BotEnabled)
	return e
}

// Enabled reports the global bot switch.
func (e *Engine) Enabled() bool {
	return e.enabled.Load()
}

func (e *Engine) SetEnabled(on bool) {
	e.enabled.Store(on)
}

// Toggle flips the bot switch and returns the new value.
func (e *Engine) Toggle() bool {
	for {
		old := e.enabled.Load()
		if e.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// ProcessMessage handles one conversational turn.
//
// The returned pointer encodes the outbound contract: a pointer to the empty
// string means "say nothing" (bot disabled, or IGNORE without a reply); a nil
// pointer means "drop the request" (queue timeout, provider or parse
// failure), with err carrying the cause for the operator log. Validation
// rejections are normal replies, not errors.
func (e *Engine) ProcessMessage(ctx context.Context, userID, displayName, message, history string) (*string, error) {
	if !e.enabled.Load() {
		return strPtr(""), nil
	}

	start := e.now()
	log := e.logger.With(map[string]interface{}{
		"requestId": uuid.NewString(),
		"userId":    userID,
	})

	convContext := e.assembleContext(ctx, log, userID, message, history)

	userRef := displayName
	if strings.TrimSpace(userRef) == "" {
		userRef = userID
	}
	systemPrompt := buildSystemPrompt(e.now().In(rules.ReferenceZone()), userRef)

	if waiting := e.gate.Waiting(); waiting > 0 {
		log.Info("queued behind other AI requests", map[string]interface{}{
			"waitingAhead": waiting,
		})
	}

	if err := e.gate.Acquire(ctx); err != nil {
		if errors.Is(err, gate.ErrAdmissionTimeout) {
			log.Error("request dropped, queue wait exceeded", map[string]interface{}{
				"waited": time.Since(start).String(),
			})
			e.record(ctx, start, "admission_timeout")
			return nil, cerrors.NewAdmissionTimeoutError(userID, time.Since(start))
		}
		return nil, err
	}

	log.Info("processing turn", map[string]interface{}{
		"slotsFree": e.gate.Available(),
		"capacity":  e.gate.Capacity(),
	})

	// The release pairs with the successful acquire exactly once, on every
	// path out of the provider call.
	raw, err := func() (string, error) {
		defer e.gate.Release()
		return e.chain.Complete(ctx, systemPrompt, convContext)
	}()
	if err != nil {
		log.WithError(err).Error("provider chain exhausted", nil)
		e.record(ctx, start, "provider_failure")
		return nil, cerrors.NewProviderFailureError(err)
	}

	result, err := extraction.Parse(raw)
	if err != nil {
		log.WithError(err).Error("model output unparseable", map[string]interface{}{
			"raw": truncate(raw, 300),
		})
		e.record(ctx, start, "parse_failure")
		return nil, cerrors.NewParseFailureError(err)
	}

	e.total.Add(1)
	metrics.ChatRequestsTotal.Inc()

	switch result.Status {
	case extraction.StatusIgnore:
		e.ignored.Add(1)
		metrics.ChatRequestsIgnored.Inc()
		log.Info("interaction ignored", map[string]interface{}{
			"reasoning": result.Reasoning,
		})
		e.record(ctx, start, "ignored")
		return strPtr(result.UserReply), nil

	case extraction.StatusIncomplete:
		e.appendMemory(ctx, log, userID, "Bot: "+result.UserReply)
		e.record(ctx, start, "incomplete")
		return strPtr(result.UserReply), nil

	case extraction.StatusCompleted:
		return e.finalize(ctx, log, start, userID, result)

	default:
		// Unreachable: the parser only admits the three states.
		return nil, cerrors.NewParseFailureError(fmt.Errorf("unknown status %q", result.Status))
	}
}

// finalize runs the rule engine over a COMPLETED candidate and persists the
// order when everything holds.
func (e *Engine) finalize(ctx context.Context, log logger.Logger, start time.Time, userID string, result *extraction.Result) (*string, error) {
	if result.Data == nil {
		e.failed.Add(1)
		metrics.ChatRequestsFailed.Inc()
		log.Warn("status COMPLETED but candidate data is null", nil)
		e.record(ctx, start, "failed")
		if result.UserReply != "" {
			return strPtr(result.UserReply), nil
		}
		return nil, cerrors.NewParseFailureError(errors.New("COMPLETED status without trip data"))
	}

	eval := e.rules.Evaluate(result.Data)
	if !eval.OK() {
		// Memory is intentionally kept: the user corrects on the next turn.
		log.Info("candidate rejected by business rules", map[string]interface{}{
			"rejection": eval.Rejection,
		})
		e.record(ctx, start, "rejected")
		return strPtr(eval.Rejection), nil
	}

	order := e.buildOrder(log, userID, result.Data, eval)

	id, err := e.orders.Save(ctx, order)
	if err != nil {
		e.failed.Add(1)
		metrics.ChatRequestsFailed.Inc()
		log.WithError(err).Error("order persistence failed", nil)
		e.record(ctx, start, "save_failed")
		return nil, cerrors.NewOrderSaveFailedError(err)
	}
	order.ID = id

	if err := e.memory.Clear(ctx, userID); err != nil {
		log.WithError(err).Warn("fallback memory clear failed", nil)
	}

	e.succeeded.Add(1)
	metrics.ChatRequestsSucceeded.Inc()
	log.Info("service order finalized", map[string]interface{}{
		"orderId":     order.ID,
		"destination": order.Destination,
		"vehicleType": order.VehicleType,
	})

	if e.notifier != nil {
		e.notifier.OrderFinalized(ctx, order)
	}

	e.record(ctx, start, "completed")
	return strPtr(result.UserReply), nil
}

func (e *Engine) buildOrder(log logger.Logger, userID string, data *extraction.TripData, eval rules.Evaluation) *models.ServiceOrder {
	var departure *time.Time
	if data.DepartureISO != "" {
		if parsed, err := time.Parse(time.RFC3339, data.DepartureISO); err == nil {
			local := parsed.In(rules.ReferenceZone())
			departure = &local
		} else {
			log.WithError(err).Warn("departure timestamp unparseable, stored as null", map[string]interface{}{
				"value": data.DepartureISO,
			})
		}
	}

	return &models.ServiceOrder{
		RequesterName: data.RequesterName,
		Destination:   rules.NormalizeDestination(eval.Destination),
		DepartureAt:   departure,
		Passengers:    strings.Join(data.Passengers, ", "),
		AwaitReturn:   *data.AwaitReturn,
		WhatsappID:    userID,
		Proad:         data.Proad,
		VehicleType:   eval.VehicleType,
		CreatedAt:     e.now(),
	}
}

// assembleContext prefers caller-supplied history verbatim; otherwise the
// current message is appended to the fallback memory and the accumulated
// backlog becomes the context.
func (e *Engine) assembleContext(ctx context.Context, log logger.Logger, userID, message, history string) string {
	if trimmed := strings.TrimSpace(history); trimmed != "" {
		return trimmed
	}

	e.appendMemory(ctx, log, userID, "User: "+message)

	lines, err := e.memory.Get(ctx, userID)
	if err != nil || len(lines) == 0 {
		if err != nil {
			log.WithError(err).Warn("fallback memory read failed", nil)
		}
		return "User: " + message
	}
	return strings.Join(lines, "\n")
}

func (e *Engine) appendMemory(ctx context.Context, log logger.Logger, userID, line string) {
	if err := e.memory.Append(ctx, userID, line); err != nil {
		log.WithError(err).Warn("fallback memory append failed", nil)
	}
}

func (e *Engine) record(ctx context.Context, start time.Time, outcome string) {
	if e.obs == nil {
		return
	}
	e.obs.RecordTurn(ctx, outcome)
	e.obs.RecordTurnDuration(ctx, e.now().Sub(start), outcome)
}

// Snapshot is the JSON metrics view served to the reporting endpoint.
type Snapshot struct {
	TotalRequests      int64  `json:"totalRequests"`
	SuccessfulRequests int64  `json:"successfulRequests"`
	FailedRequests     int64  `json:"failedRequests"`
	IgnoredRequests    int64  `json:"ignoredRequests"`
	ErrorRate          string `json:"errorRate"`
	ConcurrentSlots    string `json:"concurrentSlots"`
}

// Metrics returns a point-in-time snapshot of the engine counters.
func (e *Engine) Metrics() Snapshot {
	total := e.total.Load()
	failed := e.failed.Load()

	errorRate := 0.0
	if total > 0 {
		errorRate = float64(failed) / float64(total) * 100
	}

	return Snapshot{
		TotalRequests:      total,
		SuccessfulRequests: e.succeeded.Load(),
		FailedRequests:     failed,
		IgnoredRequests:    e.ignored.Load(),
		ErrorRate:          fmt.Sprintf("%.2f%%", errorRate),
		ConcurrentSlots:    fmt.Sprintf("%d/%d", e.gate.Available(), e.gate.Capacity()),
	}
}

func strPtr(s string) *string {
	return &s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
