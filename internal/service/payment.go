package service

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/gateway"
    "github.com/iliyamo/eventmate-api/internal/metrics"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/queue"
    "github.com/iliyamo/eventmate-api/internal/store"
)

// Gateway is the hosted checkout provider.
type Gateway interface {
    CreateSession(ctx context.Context, req gateway.CheckoutRequest) (gateway.Session, error)
    RetrieveSession(ctx context.Context, id string) (gateway.Session, error)
}

// Reconcile triggers.
const (
    SourceWebhook = "webhook"
    SourceVerify  = "verify"
)

// PaymentConfig carries the checkout settings.
type PaymentConfig struct {
    Currency  string
    ClientURL string
}

// CheckoutResult is returned when a checkout session was opened.
type CheckoutResult struct {
    PaymentID string `json:"paymentId"`
    SessionID string `json:"sessionId"`
    URL       string `json:"url"`
}

// ReconcileResult is the terminal view of a reconciled payment.
// Duplicate marks a paid session whose (event, user) already had another
// PAID payment; the session is left PENDING for a manual refund.
type ReconcileResult struct {
    Status    model.PaymentStatus `json:"status"`
    EventID   string              `json:"eventId"`
    Duplicate bool                `json:"duplicate,omitempty"`
}

// PaymentService is the payment reconciler.  A checkout session is opened
// outside any transaction; confirmation from either the webhook or the
// client runs through one reconcile path, which is idempotent per session.
type PaymentService struct {
    store store.Store
    gw    Gateway
    pub   queue.Publisher
    log   *zap.Logger
    cfg   PaymentConfig
}

func NewPaymentService(st store.Store, gw Gateway, pub queue.Publisher, log *zap.Logger, cfg PaymentConfig) *PaymentService {
    cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")
    if cfg.Currency == "" {
        cfg.Currency = "usd"
    }
    return &PaymentService{store: st, gw: gw, pub: pub, log: log, cfg: cfg}
}

// MinorUnits converts a major-unit amount to the gateway's integer minor
// units, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
    return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CreateSession opens a checkout for a paid event and records a PENDING
// payment keyed by the session id.  A still-open PENDING checkout of the
// same user is handed back instead of opening a second one.  The final
// checks and the insert run in one transaction with the event row locked,
// so one (event, user) never holds two PENDING payments.  If the gateway
// succeeds but the insert fails, the orphan session is never reconciled
// because no local row points at it.
func (s *PaymentService) CreateSession(ctx context.Context, eventID, userID string) (CheckoutResult, error) {
    ev, err := checkoutable(ctx, s.store.Repos(), eventID, userID, false)
    if err != nil {
        return CheckoutResult{}, err
    }
    pending, err := s.store.Repos().Payments.Find(ctx, eventID, userID, model.PaymentPending)
    switch {
    case err == nil:
        if res, resumed, err := s.resume(ctx, pending); err != nil || resumed {
            return res, err
        }
    case !isNotFound(err):
        return CheckoutResult{}, storeErr(err, "")
    }

    back := fmt.Sprintf("%s/events/%s?payment=", s.cfg.ClientURL, eventID)
    sess, err := s.gw.CreateSession(ctx, gateway.CheckoutRequest{
        AmountMinor: MinorUnits(ev.JoiningFee),
        Currency:    s.cfg.Currency,
        ProductName: ev.Name,
        SuccessURL:  back + "success",
        CancelURL:   back + "cancelled",
        Metadata:    map[string]string{"eventId": eventID, "userId": userID},
    })
    if err != nil {
        s.log.Error("checkout session not created", zap.String("event_id", eventID), zap.Error(err))
        return CheckoutResult{}, apperr.Upstream("payment gateway unavailable", err)
    }

    pay := &model.Payment{
        ID:          uuid.NewString(),
        Amount:      ev.JoiningFee,
        EventID:     eventID,
        UserID:      userID,
        SessionID:   sess.ID,
        Status:      model.PaymentPending,
        GatewayData: sess.Raw,
    }
    err = s.store.WithTx(ctx, func(r store.Repos) error {
        if _, err := checkoutable(ctx, r, eventID, userID, true); err != nil {
            return err
        }
        if _, err := r.Payments.Find(ctx, eventID, userID, model.PaymentPending); err == nil {
            return apperr.AlreadyExists("a checkout for this event is already in progress")
        } else if !isNotFound(err) {
            return storeErr(err, "")
        }
        return storeErr(r.Payments.Create(ctx, pay), "", "checkout session already recorded")
    })
    if err != nil {
        s.log.Warn("checkout session left unrecorded", zap.String("session_id", sess.ID), zap.Error(err))
        return CheckoutResult{}, err
    }
    return CheckoutResult{PaymentID: pay.ID, SessionID: sess.ID, URL: sess.URL}, nil
}

// checkoutable loads the event and checks that userID may pay for it.
// lock takes the event row lock when r is bound to a transaction.
func checkoutable(ctx context.Context, r store.Repos, eventID, userID string, lock bool) (model.Event, error) {
    get := r.Events.GetByID
    if lock {
        get = r.Events.GetForUpdate
    }
    ev, err := get(ctx, eventID)
    if err != nil {
        return model.Event{}, storeErr(err, "event not found")
    }
    if ev.IsFree() {
        return model.Event{}, apperr.InvalidState("this is a free event, join it directly")
    }
    if _, err := r.Payments.Find(ctx, eventID, userID, model.PaymentPaid); err == nil {
        return model.Event{}, apperr.AlreadyExists("you have already paid for this event")
    } else if !isNotFound(err) {
        return model.Event{}, storeErr(err, "")
    }
    if ev.Status != model.EventOpen && ev.Status != model.EventFull {
        return model.Event{}, apperr.InvalidState("event is not open for joining")
    }
    if ev.Status == model.EventFull || (ev.MaxParticipants != nil && ev.ParticipantCount >= *ev.MaxParticipants) {
        return model.Event{}, apperr.CapacityExceeded("event has reached its maximum participants")
    }
    if _, err := r.Participants.Get(ctx, eventID, userID); err == nil {
        return model.Event{}, apperr.AlreadyExists("you have already joined this event")
    } else if !isNotFound(err) {
        return model.Event{}, storeErr(err, "")
    }
    return ev, nil
}

// resume looks at the gateway state of an existing PENDING checkout.  An
// open session is handed back, a paid one is reconciled and reported as
// already paid, and a closed unpaid one is marked FAILED so a new checkout
// can take its place.
func (s *PaymentService) resume(ctx context.Context, pending model.Payment) (CheckoutResult, bool, error) {
    sess, err := s.gw.RetrieveSession(ctx, pending.SessionID)
    if err != nil {
        s.log.Error("checkout session not retrieved", zap.String("session_id", pending.SessionID), zap.Error(err))
        return CheckoutResult{}, false, apperr.Upstream("payment gateway unavailable", err)
    }
    switch {
    case sess.Paid():
        if _, err := s.Reconcile(ctx, pending.SessionID, &sess, pending.UserID, SourceVerify); err != nil {
            return CheckoutResult{}, false, err
        }
        return CheckoutResult{}, false, apperr.AlreadyExists("you have already paid for this event")
    case sess.URL != "":
        return CheckoutResult{PaymentID: pending.ID, SessionID: pending.SessionID, URL: sess.URL}, true, nil
    }
    if _, err := s.fail(ctx, pending.SessionID, sess, SourceVerify); err != nil {
        return CheckoutResult{}, false, err
    }
    return CheckoutResult{}, false, nil
}

// Verify reconciles a session on behalf of the paying user.  An unpaid
// session leaves the payment untouched so the client can poll again.
func (s *PaymentService) Verify(ctx context.Context, sessionID string, caller model.Identity) (ReconcileResult, error) {
    if sessionID == "" {
        return ReconcileResult{}, apperr.Validation("session_id is required")
    }
    return s.Reconcile(ctx, sessionID, nil, caller.ID, SourceVerify)
}

// HandleNotification reconciles a verified webhook delivery.  Types the
// reconciler does not act on are acknowledged without effect.
func (s *PaymentService) HandleNotification(ctx context.Context, n gateway.Notification) (ReconcileResult, error) {
    if !n.Handles() {
        s.log.Debug("webhook ignored", zap.String("type", n.Type))
        return ReconcileResult{}, nil
    }
    return s.Reconcile(ctx, n.Session.ID, &n.Session, "", SourceWebhook)
}

// Reconcile syncs the local payment for sessionID with the gateway.
//
// embedded, when non-nil, is trusted as the gateway state; otherwise the
// session is fetched.  callerID, when set, must own the payment.  A paid
// session marks the payment PAID and ensures the participant row exists,
// both at most once however often it is called.  An unpaid session marks
// the payment FAILED only for webhook deliveries.
func (s *PaymentService) Reconcile(ctx context.Context, sessionID string, embedded *gateway.Session, callerID, source string) (ReconcileResult, error) {
    res, err := s.reconcile(ctx, sessionID, embedded, callerID, source)
    label := outcome(err)
    switch {
    case err == nil && res.Duplicate:
        label = "duplicate"
    case err == nil:
        label = strings.ToLower(string(res.Status))
    }
    metrics.Reconciliation(source, label)
    return res, err
}

func (s *PaymentService) reconcile(ctx context.Context, sessionID string, embedded *gateway.Session, callerID, source string) (ReconcileResult, error) {
    pay, err := s.store.Repos().Payments.GetBySessionID(ctx, sessionID)
    if err != nil {
        return ReconcileResult{}, storeErr(err, "payment not found")
    }
    if callerID != "" && pay.UserID != callerID {
        return ReconcileResult{}, apperr.Forbidden("this payment belongs to another user")
    }

    var sess gateway.Session
    if embedded != nil {
        sess = *embedded
    } else {
        sess, err = s.gw.RetrieveSession(ctx, sessionID)
        if err != nil {
            s.log.Error("checkout session not retrieved", zap.String("session_id", sessionID), zap.Error(err))
            return ReconcileResult{}, apperr.Upstream("payment gateway unavailable", err)
        }
    }

    if sess.Paid() {
        return s.settle(ctx, sessionID, sess, source)
    }
    if source != SourceWebhook {
        return ReconcileResult{Status: pay.Status, EventID: pay.EventID}, nil
    }
    return s.fail(ctx, sessionID, sess, source)
}

// settle applies a paid session.  The payment row is locked first and then
// the event row, the same order every reconcile uses.
func (s *PaymentService) settle(ctx context.Context, sessionID string, sess gateway.Session, source string) (ReconcileResult, error) {
    var (
        pay       model.Payment
        paid      bool
        joined    bool
        duplicate bool
        status    model.EventStatus
        occupancy int
    )
    err := s.store.WithTx(ctx, func(r store.Repos) error {
        var err error
        pay, err = r.Payments.GetBySessionIDForUpdate(ctx, sessionID)
        if err != nil {
            return storeErr(err, "payment not found")
        }
        ev, err := r.Events.GetForUpdate(ctx, pay.EventID)
        if err != nil {
            return storeErr(err, "event not found")
        }
        if pay.Status != model.PaymentPaid {
            sibling, err := r.Payments.Find(ctx, pay.EventID, pay.UserID, model.PaymentPaid)
            switch {
            case err == nil:
                duplicate = true
                s.log.Error("second paid session for one participation, refund required",
                    zap.String("session_id", sessionID), zap.String("paid_session_id", sibling.SessionID),
                    zap.String("event_id", pay.EventID), zap.String("user_id", pay.UserID))
                return nil
            case !isNotFound(err):
                return storeErr(err, "")
            }
            if err := r.Payments.UpdateStatus(ctx, pay.ID, model.PaymentPaid, sess.Raw); err != nil {
                return storeErr(err, "payment not found")
            }
            pay.Status = model.PaymentPaid
            paid = true
        }

        if _, err := r.Participants.Get(ctx, pay.EventID, pay.UserID); isNotFound(err) {
            p := model.Participant{EventID: pay.EventID, UserID: pay.UserID, JoinedAt: time.Now().UTC()}
            switch err := r.Participants.Create(ctx, p); {
            case errors.Is(err, store.ErrDuplicate):
                s.log.Info("participant already recorded by a concurrent reconcile",
                    zap.String("event_id", pay.EventID), zap.String("user_id", pay.UserID))
            case err != nil:
                return storeErr(err, "")
            default:
                joined = true
            }
        } else if err != nil {
            return storeErr(err, "")
        }

        occupancy, err = r.Participants.Count(ctx, pay.EventID)
        if err != nil {
            return storeErr(err, "")
        }
        status = DeriveStatus(ev.Status, occupancy, ev.MaxParticipants)
        if status != ev.Status {
            return storeErr(r.Events.UpdateStatus(ctx, pay.EventID, status), "event not found")
        }
        return nil
    })
    if err != nil {
        return ReconcileResult{}, err
    }
    if duplicate {
        return ReconcileResult{Status: model.PaymentPaid, EventID: pay.EventID, Duplicate: true}, nil
    }
    if paid {
        s.announcePayment(ctx, pay, source)
    }
    if joined {
        publish(ctx, s.pub, s.log, queue.ParticipationQueue, queue.ParticipationChanged{
            EventID:    pay.EventID,
            UserID:     pay.UserID,
            Action:     "payment",
            Status:     string(status),
            Occupancy:  occupancy,
            OccurredAt: time.Now().UTC().Format(time.RFC3339),
        })
    }
    return ReconcileResult{Status: model.PaymentPaid, EventID: pay.EventID}, nil
}

// fail marks a non-paid webhook session FAILED unless it was already paid.
func (s *PaymentService) fail(ctx context.Context, sessionID string, sess gateway.Session, source string) (ReconcileResult, error) {
    var (
        pay     model.Payment
        changed bool
    )
    err := s.store.WithTx(ctx, func(r store.Repos) error {
        var err error
        pay, err = r.Payments.GetBySessionIDForUpdate(ctx, sessionID)
        if err != nil {
            return storeErr(err, "payment not found")
        }
        if pay.Status != model.PaymentPending {
            return nil
        }
        if err := r.Payments.UpdateStatus(ctx, pay.ID, model.PaymentFailed, sess.Raw); err != nil {
            return storeErr(err, "payment not found")
        }
        pay.Status = model.PaymentFailed
        changed = true
        return nil
    })
    if err != nil {
        return ReconcileResult{}, err
    }
    if changed {
        s.announcePayment(ctx, pay, source)
    }
    return ReconcileResult{Status: pay.Status, EventID: pay.EventID}, nil
}

func (s *PaymentService) announcePayment(ctx context.Context, pay model.Payment, source string) {
    publish(ctx, s.pub, s.log, queue.PaymentQueue, queue.PaymentReconciled{
        PaymentID:  pay.ID,
        SessionID:  pay.SessionID,
        EventID:    pay.EventID,
        UserID:     pay.UserID,
        Status:     string(pay.Status),
        Source:     source,
        Amount:     pay.Amount.StringFixed(2),
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    })
}

// MyPayments lists the user's payments, newest first.
func (s *PaymentService) MyPayments(ctx context.Context, userID string) ([]model.PaymentDetail, error) {
    list, err := s.store.Repos().Payments.ListByUser(ctx, userID)
    return list, storeErr(err, "")
}
