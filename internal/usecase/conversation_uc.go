package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"freight-ai-assistant/internal/domain"
	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/domain/ports/adapter"
	"freight-ai-assistant/internal/domain/ports/repository"
	"freight-ai-assistant/internal/infra/metrics"
	red "freight-ai-assistant/internal/infra/redis"
)

const greetingMessage = "Hello! I'm your freight assistant. I can put together carrier " +
	"rate quotes for your shipment. To get started, where are you shipping from, and where to?"

const apologyMessage = "Sorry, I ran into a problem handling that. Could you try again?"

// historyWindow caps the transcript slice handed to the generator; older
// turns stay in the checkpoint but are not replayed into the model context.
const historyWindow = 15

// Quoter is the pure rate computation the engine invokes once enough fields
// are present.
type Quoter interface {
	Quote(d model.ShipmentData) model.Quote
}

// Compile-time check
var _ ConversationUseCase = (*conversationUC)(nil)

type ConversationUseCase interface {
	// Invoke runs one conversation turn for a thread and returns the updated
	// session and the user-visible reply. An empty text after an assistant
	// reply is an idempotent replay.
	Invoke(ctx context.Context, threadID, userID, text string) (*model.Session, string, error)
	// Book converts a completed session's recommended quote into a shipment.
	Book(ctx context.Context, threadID string) (*model.Shipment, error)
	History(ctx context.Context, threadID string) (*model.Session, error)
}

type conversationUC struct {
	sessions  repository.SessionStore
	extractor adapter.FieldExtractor
	generator adapter.Generator
	quoter    Quoter
	shipments repository.ShipmentRepository
	locker    red.Locker
	log       *zerolog.Logger
}

func NewConversationUseCase(
	sessions repository.SessionStore,
	extractor adapter.FieldExtractor,
	generator adapter.Generator,
	quoter Quoter,
	shipments repository.ShipmentRepository,
	locker red.Locker,
	log *zerolog.Logger,
) *conversationUC {
	return &conversationUC{
		sessions:  sessions,
		extractor: extractor,
		generator: generator,
		quoter:    quoter,
		shipments: shipments,
		locker:    locker,
		log:       log,
	}
}

func (c *conversationUC) Invoke(ctx context.Context, threadID, userID, text string) (*model.Session, string, error) {
	if threadID == "" {
		return nil, "", domain.ErrInvalidArgument
	}
	start := time.Now()
	defer func() { metrics.ObserveTurnDuration(time.Since(start).Seconds()) }()

	// One writer per thread: turns and background invoice updates serialize
	// on the same lock so neither side loses the other's checkpoint write.
	key := red.ThreadLockKey(threadID)
	token, err := c.locker.TryLock(ctx, key, 30*time.Second)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = c.locker.Unlock(ctx, key, token) }()

	sess, err := c.sessions.Get(ctx, threadID)
	if err != nil {
		return nil, "", err
	}

	text = strings.TrimSpace(text)

	// Idempotent entry: a brand-new thread gets the fixed greeting and the
	// turn content is ignored.
	if sess == nil || len(sess.Messages) == 0 {
		if sess == nil {
			sess = model.NewSession(threadID, userID)
		}
		sess.AddMessage(model.RoleAssistant, greetingMessage)
		sess.Phase = model.PhaseRouteCollection
		sess.Completed = false
		if err := c.sessions.Put(ctx, sess); err != nil {
			return nil, "", err
		}
		metrics.IncTurn("reply")
		return sess, greetingMessage, nil
	}

	// Re-invocation without a new user turn: replay the last reply, no new
	// extraction cycle.
	if last := sess.LastMessage(); text == "" && last.Role == model.RoleAssistant {
		metrics.IncTurn("replay")
		return sess, last.Content, nil
	}
	if text == "" {
		return nil, "", domain.ErrInvalidArgument
	}

	sess.AddMessage(model.RoleUser, text)

	// A completed cycle still accepts messages (booking questions and the
	// like) but the phase machine does not transition further.
	if sess.Completed {
		reply := c.converse(ctx, sess)
		sess.AddMessage(model.RoleAssistant, reply)
		if err := c.sessions.Put(ctx, sess); err != nil {
			return nil, "", err
		}
		return sess, reply, nil
	}

	// Extraction failures degrade to an empty delta; previously collected
	// fields are never touched.
	delta, err := c.extractor.Extract(ctx, sess.Shipment, text)
	if err != nil {
		c.log.Warn().Str("thread_id", threadID).Err(err).Msg("field extraction failed; using empty delta")
		delta = model.ShipmentDelta{}
	}
	sess.Shipment.Merge(delta)

	gen, err := c.generator.Generate(ctx, sess.RecentMessages(historyWindow), sess.Shipment)
	if err != nil {
		c.log.Warn().Str("thread_id", threadID).Err(err).Msg("generation failed; degrading turn")
		sess.AddMessage(model.RoleAssistant, apologyMessage)
		sess.Completed = false
		sess.Phase = model.DerivePhase(sess.Shipment, sess.Quote != nil)
		if err := c.sessions.Put(ctx, sess); err != nil {
			return nil, "", err
		}
		metrics.IncTurn("degraded")
		return sess, apologyMessage, nil
	}

	d := sess.Shipment
	if gen.ReadyToQuote && d.Origin != "" && d.Destination != "" && d.Cargo != "" {
		q := c.quoter.Quote(d)
		sess.Quote = &q
		sess.Completed = true
		sess.Phase = model.PhaseQuoteGenerated
		reply := formatQuote(&q)
		sess.AddMessage(model.RoleAssistant, reply)
		if err := c.sessions.Put(ctx, sess); err != nil {
			return nil, "", err
		}
		metrics.IncTurn("quote")
		metrics.IncQuote()
		c.log.Info().Str("thread_id", threadID).Str("route", string(q.RouteType)).
			Float64("recommended_rate", q.Recommended.Rate).Msg("quote generated")
		return sess, reply, nil
	}

	sess.AddMessage(model.RoleAssistant, gen.Reply)
	sess.Completed = false
	sess.Phase = model.DerivePhase(sess.Shipment, sess.Quote != nil)
	if err := c.sessions.Put(ctx, sess); err != nil {
		return nil, "", err
	}
	metrics.IncTurn("reply")
	return sess, gen.Reply, nil
}

// converse asks for a plain reply on an already-completed thread; the ready
// flag is ignored because the cycle is done.
func (c *conversationUC) converse(ctx context.Context, sess *model.Session) string {
	gen, err := c.generator.Generate(ctx, sess.RecentMessages(historyWindow), sess.Shipment)
	if err != nil {
		c.log.Warn().Str("thread_id", sess.ThreadID).Err(err).Msg("generation failed on completed thread")
		return apologyMessage
	}
	return gen.Reply
}

func (c *conversationUC) Book(ctx context.Context, threadID string) (*model.Shipment, error) {
	key := red.ThreadLockKey(threadID)
	token, err := c.locker.TryLock(ctx, key, 30*time.Second)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.locker.Unlock(ctx, key, token) }()

	sess, err := c.sessions.Get(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrNotFound
	}
	if sess.BookingID != "" {
		return nil, domain.ErrSessionCompleted
	}
	if !sess.Completed || sess.Quote == nil {
		return nil, domain.ErrQuoteNotReady
	}
	if sess.Quote.Expired(time.Now()) {
		return nil, domain.ErrQuoteNotReady
	}

	offer := sess.Quote.Recommended
	now := time.Now()
	shipment := &model.Shipment{
		ID:           ulid.Make().String(),
		TrackingCode: fmt.Sprintf("FRT-%s", ulid.Make().String()[:10]),
		UserID:       sess.UserID,
		ThreadID:     sess.ThreadID,
		CarrierID:    offer.CarrierID,
		CarrierName:  offer.CarrierName,
		Rate:         offer.Rate,
		Origin:       sess.Shipment.Origin,
		Destination:  sess.Shipment.Destination,
		Cargo:        sess.Shipment.Cargo,
		Status:       model.ShipmentBooked,
		EstimatedAt:  offer.EstimatedDelivery,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := c.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}

	sess.BookingID = shipment.ID
	sess.AddMessage(model.RoleAssistant, fmt.Sprintf(
		"Your shipment is booked with %s at %.2f. Tracking code: %s.",
		offer.CarrierName, offer.Rate, shipment.TrackingCode))
	if err := c.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	c.log.Info().Str("thread_id", threadID).Str("tracking", shipment.TrackingCode).Msg("shipment booked")
	return shipment, nil
}

func (c *conversationUC) History(ctx context.Context, threadID string) (*model.Session, error) {
	sess, err := c.sessions.Get(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

func formatQuote(q *model.Quote) string {
	var b strings.Builder
	b.WriteString("Here are your shipping quotes:\n")
	for i, o := range q.Offers {
		fmt.Fprintf(&b, "%d. %s — %.2f, %d-%d days transit, %.0f%% on-time\n",
			i+1, o.CarrierName, o.Rate, o.TransitDaysMin, o.TransitDaysMax, o.Reliability*100)
	}
	fmt.Fprintf(&b, "Recommended: %s at %.2f. Quotes are valid until %s.",
		q.Recommended.CarrierName, q.Recommended.Rate, q.ValidUntil.Format("Jan 2, 15:04 MST"))
	return b.String()
}
