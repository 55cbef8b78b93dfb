package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"edpharma/logger"
	"edpharma/models"
)

type Step int

const (
	StepContact Step = iota + 1
	StepShipping
	StepPayment
	StepReview
	StepConfirmed
)

var stepNames = map[Step]string{
	StepContact:   "contact",
	StepShipping:  "shipping",
	StepPayment:   "payment",
	StepReview:    "review",
	StepConfirmed: "confirmed",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Draft is the in-progress checkout of one principal. It never leaves this
// package with raw payment details; callers only see a DraftView.
type Draft struct {
	Step      Step
	Contact   Contact
	Shipping  models.Address
	Payment   models.PaymentDetails
	Lines     []models.CartLine
	Errors    map[string]string
	StartedAt time.Time
}

type DraftView struct {
	Step          int                    `json:"step"`
	StepName      string                 `json:"stepName"`
	Contact       Contact                `json:"contact"`
	Shipping      models.Address         `json:"shippingAddress"`
	PaymentMethod models.PaymentMethod   `json:"paymentMethod,omitempty"`
	Payment       *models.PaymentSummary `json:"payment,omitempty"`
	Items         []models.CartLine      `json:"items"`
	ItemCount     int                    `json:"itemCount"`
	Totals        Totals                 `json:"totals"`
	Errors        map[string]string      `json:"errors,omitempty"`
}

type draftEntry struct {
	mu    sync.Mutex
	draft *Draft
}

// Checkout drives the Contact -> Shipping -> Payment -> Review flow. Drafts are
// transient and live in memory; a restart drops them and leaves carts intact.
type Checkout struct {
	mu      sync.Mutex
	drafts  map[string]*draftEntry
	cart    *Cart
	orders  *Orders
	pricing Pricing
	logger  *logger.Logger
	now     func() time.Time
	newID   func() string
}

func NewCheckout(cart *Cart, orders *Orders, pricing Pricing, log *logger.Logger) *Checkout {
	return &Checkout{
		drafts:  make(map[string]*draftEntry),
		cart:    cart,
		orders:  orders,
		pricing: pricing,
		logger:  log,
		now:     time.Now,
		newID:   func() string { return "ORD-" + uuid.NewString() },
	}
}

func (c *Checkout) entry(principalID string, create bool) *draftEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.drafts[principalID]
	if !ok && create {
		e = &draftEntry{}
		c.drafts[principalID] = e
	}
	return e
}

func (c *Checkout) drop(principalID string, e *draftEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drafts[principalID] == e {
		delete(c.drafts, principalID)
	}
}

// withDraft runs fn with the principal's draft locked.
func (c *Checkout) withDraft(p models.Principal, fn func(e *draftEntry, d *Draft) error) error {
	if p.ID == "" {
		return ErrUnauthenticated
	}
	e := c.entry(p.ID, false)
	if e == nil {
		return ErrNoDraft
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return ErrNoDraft
	}
	return fn(e, e.draft)
}

// Begin snapshots the cart into a new draft at Contact, replacing any earlier draft.
func (c *Checkout) Begin(ctx context.Context, p models.Principal) (DraftView, error) {
	if p.ID == "" {
		return DraftView{}, ErrUnauthenticated
	}
	lines, err := c.cart.Lines(ctx, p.ID)
	if err != nil {
		return DraftView{}, err
	}
	if err := checkSnapshot(lines); err != nil {
		return DraftView{}, err
	}

	d := &Draft{
		Step: StepContact,
		Contact: Contact{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
			Phone:     p.Phone,
		},
		Lines:     lines,
		StartedAt: c.now().UTC(),
	}

	e := c.entry(p.ID, true)
	e.mu.Lock()
	e.draft = d
	view := c.view(d)
	e.mu.Unlock()

	c.logger.Debug("Checkout started", "user_id", p.ID, "items", models.ItemCount(lines))
	return view, nil
}

func (c *Checkout) Draft(p models.Principal) (DraftView, error) {
	var view DraftView
	err := c.withDraft(p, func(_ *draftEntry, d *Draft) error {
		view = c.view(d)
		return nil
	})
	return view, err
}

// Discard abandons the draft. The cart is left as it was.
func (c *Checkout) Discard(p models.Principal) {
	_ = c.withDraft(p, func(e *draftEntry, _ *Draft) error {
		e.draft = nil
		c.drop(p.ID, e)
		return nil
	})
}

func (c *Checkout) UpdateContact(p models.Principal, contact Contact) (DraftView, error) {
	return c.update(p, func(d *Draft) {
		d.Contact = Contact{
			FirstName: strings.TrimSpace(contact.FirstName),
			LastName:  strings.TrimSpace(contact.LastName),
			Email:     strings.TrimSpace(contact.Email),
			Phone:     strings.TrimSpace(contact.Phone),
		}
	})
}

func (c *Checkout) UpdateShipping(p models.Principal, addr models.Address) (DraftView, error) {
	return c.update(p, func(d *Draft) {
		d.Shipping = models.Address{
			Address: strings.TrimSpace(addr.Address),
			City:    strings.TrimSpace(addr.City),
			State:   strings.TrimSpace(addr.State),
			ZipCode: strings.TrimSpace(addr.ZipCode),
		}
	})
}

func (c *Checkout) UpdatePayment(p models.Principal, details models.PaymentDetails) (DraftView, error) {
	if details == nil {
		return DraftView{}, newValidationError("paymentMethod", "Select a payment method")
	}
	return c.update(p, func(d *Draft) {
		d.Payment = details
	})
}

// update stores input without validating it; Advance and Confirm do that.
func (c *Checkout) update(p models.Principal, apply func(d *Draft)) (DraftView, error) {
	var view DraftView
	err := c.withDraft(p, func(_ *draftEntry, d *Draft) error {
		apply(d)
		view = c.view(d)
		return nil
	})
	return view, err
}

// ValidateField returns the message a single field would get, or "" when it passes.
func (c *Checkout) ValidateField(field, value string) (string, error) {
	rule, ok := ruleByField(field)
	if !ok {
		return "", ErrUnknownField
	}
	return rule.check(value), nil
}

// Advance moves to the next step only if every rule of the current step passes.
// On failure the messages are kept on the draft and returned as a ValidationError.
func (c *Checkout) Advance(p models.Principal) (DraftView, error) {
	var view DraftView
	err := c.withDraft(p, func(_ *draftEntry, d *Draft) error {
		if d.Step < StepContact || d.Step >= StepReview {
			return ErrWrongStep
		}
		errs := validateStep(d)
		d.Errors = nil
		if len(errs) > 0 {
			d.Errors = errs
			view = c.view(d)
			return &ValidationError{Fields: errs}
		}
		d.Step++
		view = c.view(d)
		return nil
	})
	return view, err
}

// Back never validates. From Contact it leaves the flow and reports exited.
func (c *Checkout) Back(p models.Principal) (DraftView, bool, error) {
	var (
		view   DraftView
		exited bool
	)
	err := c.withDraft(p, func(e *draftEntry, d *Draft) error {
		d.Errors = nil
		if d.Step <= StepContact {
			e.draft = nil
			c.drop(p.ID, e)
			exited = true
			return nil
		}
		d.Step--
		view = c.view(d)
		return nil
	})
	return view, exited, err
}

// Confirm turns a reviewed draft into an order. The order is persisted before
// the cart is touched: if persisting fails the draft stays in Review and the
// cart keeps its lines. On success only the ordered quantities leave the cart.
func (c *Checkout) Confirm(ctx context.Context, p models.Principal) (*models.Order, error) {
	var placed *models.Order
	err := c.withDraft(p, func(e *draftEntry, d *Draft) error {
		if d.Step != StepReview {
			return ErrWrongStep
		}
		if err := checkSnapshot(d.Lines); err != nil {
			return err
		}

		errs := map[string]string{}
		for _, step := range []Step{StepContact, StepShipping, StepPayment} {
			probe := *d
			probe.Step = step
			for f, msg := range validateStep(&probe) {
				errs[f] = msg
			}
		}
		if len(errs) > 0 {
			d.Errors = errs
			return &ValidationError{Fields: errs}
		}

		order := c.buildOrder(p, d)
		if err := c.orders.Place(ctx, order); err != nil {
			return err
		}

		if _, err := c.cart.RemoveOrdered(ctx, p.ID, d.Lines); err != nil {
			c.logger.Warn("Order placed but cart not cleared", "order_id", order.ID, "user_id", p.ID, "error", err)
		}

		d.Step = StepConfirmed
		e.draft = nil
		c.drop(p.ID, e)
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// checkSnapshot refuses an empty cart and any line outside the allowed quantity range.
func checkSnapshot(lines []models.CartLine) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	for _, l := range lines {
		if !l.ValidLine() {
			return newValidationError("items", fmt.Sprintf("Quantity of %s must be between 1 and %d", l.Name, models.MaxLineQuantity))
		}
	}
	return nil
}

func (c *Checkout) buildOrder(p models.Principal, d *Draft) *models.Order {
	totals := c.pricing.Quote(d.Lines)
	now := c.now().UTC()
	fullName := strings.TrimSpace(d.Contact.FirstName + " " + d.Contact.LastName)

	return &models.Order{
		ID:           c.newID(),
		UserID:       p.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Status:       models.StatusProcessing,
		Items:        models.SnapshotLines(d.Lines),
		Subtotal:     totals.Subtotal,
		ShippingCost: totals.ShippingCost,
		Tax:          totals.Tax,
		Total:        totals.Total,
		ShippingAddress: models.ShippingAddress{
			FullName: fullName,
			Address:  d.Shipping,
			Phone:    d.Contact.Phone,
			Email:    d.Contact.Email,
		},
		Payment: d.Payment.Summary(),
	}
}

func (c *Checkout) view(d *Draft) DraftView {
	v := DraftView{
		Step:      int(d.Step),
		StepName:  d.Step.String(),
		Contact:   d.Contact,
		Shipping:  d.Shipping,
		Items:     models.CloneLines(d.Lines),
		ItemCount: models.ItemCount(d.Lines),
		Totals:    c.pricing.Quote(d.Lines),
	}
	if d.Payment != nil {
		summary := d.Payment.Summary()
		v.PaymentMethod = d.Payment.Method()
		v.Payment = &summary
	}
	if len(d.Errors) > 0 {
		v.Errors = make(map[string]string, len(d.Errors))
		for k, msg := range d.Errors {
			v.Errors[k] = msg
		}
	}
	return v
}
