package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"edpharma/models"
	"edpharma/store/memstore"
)

// unavailableOrderRepository fails every write and serves reads from memory.
type unavailableOrderRepository struct {
	*memstore.OrderRepository
}

func (unavailableOrderRepository) Create(context.Context, *models.Order) error {
	return errors.New("write concern timeout")
}

type checkoutFeatureContext struct {
	env       *testEnv
	principal models.Principal
	order     *models.Order
	err       error
}

func (c *checkoutFeatureContext) reset() {
	c.env = newTestEnv(nil)
	c.principal = models.Principal{}
	c.order = nil
	c.err = nil
}

func (c *checkoutFeatureContext) aSignedInShopper(id string) error {
	c.principal = models.Principal{ID: id, Role: models.RoleUser}
	return nil
}

func (c *checkoutFeatureContext) theCartHolds(qty int, productID string) error {
	_, err := c.env.cart.AddItem(context.Background(), c.principal.ID, productID, qty)
	return err
}

func (c *checkoutFeatureContext) theOrderStoreRejectsWrites() error {
	lines, err := c.env.cart.Lines(context.Background(), c.principal.ID)
	if err != nil {
		return err
	}
	c.env = newTestEnv(unavailableOrderRepository{memstore.NewOrderRepository()})
	return c.env.carts.Save(context.Background(), c.principal.ID, lines)
}

func (c *checkoutFeatureContext) begin() error {
	if _, err := c.env.checkout.Draft(c.principal); err == nil {
		return nil
	}
	_, err := c.env.checkout.Begin(context.Background(), c.principal)
	return err
}

func (c *checkoutFeatureContext) entersContact(firstName string) error {
	if err := c.begin(); err != nil {
		return err
	}
	_, err := c.env.checkout.UpdateContact(c.principal, Contact{FirstName: firstName, LastName: "Doe", Email: "john@x.com"})
	if err != nil {
		return err
	}
	_, c.err = c.env.checkout.Advance(c.principal)
	return nil
}

func (c *checkoutFeatureContext) entersValidContact() error {
	if err := c.entersContact("John"); err != nil {
		return err
	}
	return c.err
}

func (c *checkoutFeatureContext) entersValidShipping() error {
	addr := models.Address{Address: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701"}
	if _, err := c.env.checkout.UpdateShipping(c.principal, addr); err != nil {
		return err
	}
	_, err := c.env.checkout.Advance(c.principal)
	return err
}

func (c *checkoutFeatureContext) paysByCard() error {
	if _, err := c.env.checkout.UpdatePayment(c.principal, validCard); err != nil {
		return err
	}
	_, err := c.env.checkout.Advance(c.principal)
	return err
}

func (c *checkoutFeatureContext) confirms() error {
	c.order, c.err = c.env.checkout.Confirm(context.Background(), c.principal)
	return nil
}

func (c *checkoutFeatureContext) theOrderTotalsAre(subtotal, tax, shipping, total float64) error {
	if c.err != nil {
		return fmt.Errorf("confirm failed: %w", c.err)
	}
	got := Totals{Subtotal: c.order.Subtotal, Tax: c.order.Tax, ShippingCost: c.order.ShippingCost, Total: c.order.Total}
	want := Totals{Subtotal: subtotal, Tax: tax, ShippingCost: shipping, Total: total}
	if got != want {
		return fmt.Errorf("expected totals %+v, got %+v", want, got)
	}
	return nil
}

func (c *checkoutFeatureContext) theOrderStatusIs(status string) error {
	if c.order == nil || string(c.order.Status) != status {
		return fmt.Errorf("expected status %q, got %+v", status, c.order)
	}
	return nil
}

func (c *checkoutFeatureContext) theOrderIsListed() error {
	orders, err := c.env.orders.List(context.Background(), c.principal, ListQuery{})
	if err != nil {
		return err
	}
	for _, o := range orders {
		if o.ID == c.order.ID {
			return nil
		}
	}
	return fmt.Errorf("order %s not listed", c.order.ID)
}

func (c *checkoutFeatureContext) theCartIsEmpty() error {
	summary, err := c.env.cart.Summary(context.Background(), c.principal.ID)
	if err != nil {
		return err
	}
	if summary.ItemCount != 0 {
		return fmt.Errorf("expected empty cart, got %d items", summary.ItemCount)
	}
	return nil
}

func (c *checkoutFeatureContext) theCartStillHolds(qty int, productID string) error {
	lines, err := c.env.cart.Lines(context.Background(), c.principal.ID)
	if err != nil {
		return err
	}
	if len(lines) != 1 || lines[0].ProductID != productID || lines[0].Quantity != qty {
		return fmt.Errorf("unexpected cart %+v", lines)
	}
	return nil
}

func (c *checkoutFeatureContext) theStepIsRejected(field, message string) error {
	var verr *ValidationError
	if !errors.As(c.err, &verr) {
		return fmt.Errorf("expected validation error, got %v", c.err)
	}
	if verr.Fields[field] != message {
		return fmt.Errorf("expected %s=%q, got %q", field, message, verr.Fields[field])
	}
	return nil
}

func (c *checkoutFeatureContext) theCheckoutIsAtStep(name string) error {
	view, err := c.env.checkout.Draft(c.principal)
	if err != nil {
		return err
	}
	if view.StepName != name {
		return fmt.Errorf("expected step %q, got %q", name, view.StepName)
	}
	return nil
}

func (c *checkoutFeatureContext) confirmingFailsWithStorageError() error {
	var serr *StorageError
	if !errors.As(c.err, &serr) {
		return fmt.Errorf("expected storage error, got %v", c.err)
	}
	return nil
}

func (c *checkoutFeatureContext) theShopperHasNoOrders() error {
	orders, err := c.env.orders.List(context.Background(), c.principal, ListQuery{})
	if err != nil {
		return err
	}
	if len(orders) != 0 {
		return fmt.Errorf("expected no orders, got %d", len(orders))
	}
	return nil
}

func InitializeCheckoutScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutFeatureContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a signed-in shopper "([^"]*)"$`, tc.aSignedInShopper)
	ctx.Step(`^the cart holds (\d+) of product "([^"]*)"$`, tc.theCartHolds)
	ctx.Step(`^the order store rejects writes$`, tc.theOrderStoreRejectsWrites)
	ctx.Step(`^the shopper enters valid contact details and advances$`, tc.entersValidContact)
	ctx.Step(`^the shopper enters contact details with first name "([^"]*)" and advances$`, tc.entersContact)
	ctx.Step(`^the shopper enters a valid shipping address and advances$`, tc.entersValidShipping)
	ctx.Step(`^the shopper pays by card and advances$`, tc.paysByCard)
	ctx.Step(`^the shopper confirms the order$`, tc.confirms)
	ctx.Step(`^the order totals are subtotal (\d+\.\d+), tax (\d+\.\d+), shipping (\d+\.\d+), total (\d+\.\d+)$`, tc.theOrderTotalsAre)
	ctx.Step(`^the order status is "([^"]*)"$`, tc.theOrderStatusIs)
	ctx.Step(`^the order appears in the shopper's order list$`, tc.theOrderIsListed)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart still holds (\d+) of product "([^"]*)"$`, tc.theCartStillHolds)
	ctx.Step(`^the step is rejected with "([^"]*)" "([^"]*)"$`, tc.theStepIsRejected)
	ctx.Step(`^the checkout is at step "([^"]*)"$`, tc.theCheckoutIsAtStep)
	ctx.Step(`^confirming fails with a storage error$`, tc.confirmingFailsWithStorageError)
	ctx.Step(`^the shopper has no orders$`, tc.theShopperHasNoOrders)
}

func TestCheckoutFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeCheckoutScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
