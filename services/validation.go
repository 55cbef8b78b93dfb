package services

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"edpharma/models"
)

var (
	validate    = validator.New()
	expiryRegex = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cvvRegex    = regexp.MustCompile(`^[0-9]{3,4}$`)
)

// fieldRule checks one field of a draft. check returns "" when the value is acceptable.
type fieldRule struct {
	field string
	value func(d *Draft) string
	check func(v string) string
}

// stepRules is the complete contract for leaving a step: every listed field must pass.
// Payment is keyed by method in paymentRules instead.
var stepRules = map[Step][]fieldRule{
	StepContact: {
		{"firstName", func(d *Draft) string { return d.Contact.FirstName }, nameRule("First name")},
		{"lastName", func(d *Draft) string { return d.Contact.LastName }, nameRule("Last name")},
		{"email", func(d *Draft) string { return d.Contact.Email }, emailRule},
		{"phone", func(d *Draft) string { return d.Contact.Phone }, phoneRule},
	},
	StepShipping: {
		{"address", func(d *Draft) string { return d.Shipping.Address }, requiredRule("Address")},
		{"city", func(d *Draft) string { return d.Shipping.City }, requiredRule("City")},
		{"state", func(d *Draft) string { return d.Shipping.State }, requiredRule("State")},
		{"zipCode", func(d *Draft) string { return d.Shipping.ZipCode }, zipRule},
	},
	StepReview: {},
}

var paymentRules = map[models.PaymentMethod][]fieldRule{
	models.PaymentCard: {
		{"cardNumber", func(d *Draft) string { return card(d).Number }, cardNumberRule},
		{"cardName", func(d *Draft) string { return card(d).Holder }, requiredRule("Name on card")},
		{"expiry", func(d *Draft) string { return card(d).Expiry }, expiryRule},
		{"cvv", func(d *Draft) string { return card(d).CVV }, cvvRule},
	},
	models.PaymentUPI: {
		{"upiId", func(d *Draft) string { return upi(d).Handle }, requiredRule("UPI ID")},
	},
	models.PaymentNetBanking: {},
}

func card(d *Draft) models.CardDetails {
	c, _ := d.Payment.(models.CardDetails)
	return c
}

func upi(d *Draft) models.UPIDetails {
	u, _ := d.Payment.(models.UPIDetails)
	return u
}

// rulesFor returns the rules gating the draft's current step.
func rulesFor(d *Draft) ([]fieldRule, *ValidationError) {
	if d.Step != StepPayment {
		return stepRules[d.Step], nil
	}
	if d.Payment == nil {
		return nil, newValidationError("paymentMethod", "Select a payment method")
	}
	rules, ok := paymentRules[d.Payment.Method()]
	if !ok {
		return nil, newValidationError("paymentMethod", "Unsupported payment method")
	}
	return rules, nil
}

func validateRules(d *Draft, rules []fieldRule) map[string]string {
	errs := map[string]string{}
	for _, r := range rules {
		if msg := r.check(r.value(d)); msg != "" {
			errs[r.field] = msg
		}
	}
	return errs
}

func validateStep(d *Draft) map[string]string {
	rules, verr := rulesFor(d)
	if verr != nil {
		return verr.Fields
	}
	return validateRules(d, rules)
}

// ruleByField finds the rule for a single field across every step, for blur-time checks.
func ruleByField(field string) (fieldRule, bool) {
	for _, rules := range stepRules {
		for _, r := range rules {
			if r.field == field {
				return r, true
			}
		}
	}
	for _, rules := range paymentRules {
		for _, r := range rules {
			if r.field == field {
				return r, true
			}
		}
	}
	return fieldRule{}, false
}

func requiredRule(label string) func(string) string {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return label + " is required"
		}
		return ""
	}
}

func nameRule(label string) func(string) string {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return label + " is required"
		}
		for _, r := range v {
			if !unicode.IsLetter(r) && r != ' ' {
				return label + " can only contain letters"
			}
		}
		if len([]rune(v)) < 2 {
			return label + " must be at least 2 characters"
		}
		return ""
	}
}

func emailRule(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "Email is required"
	}
	if err := validate.Var(v, "email"); err != nil {
		return "Enter a valid email"
	}
	return ""
}

// phoneRule accepts an empty phone; the field is optional.
func phoneRule(v string) string {
	if strings.TrimSpace(v) == "" {
		return ""
	}
	if len(models.Digits(v)) < 7 {
		return "Phone must be at least 7 digits"
	}
	return ""
}

func zipRule(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Zip code is required"
	}
	if len(models.Digits(v)) < 5 {
		return "Enter a valid zip code"
	}
	return ""
}

func cardNumberRule(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Card number is required"
	}
	if len(models.Digits(v)) < 15 {
		return "Invalid card number"
	}
	return ""
}

func expiryRule(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "Expiry date is required"
	}
	if !expiryRegex.MatchString(v) {
		return "Use MM/YY format"
	}
	return ""
}

func cvvRule(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "CVV is required"
	}
	if !cvvRegex.MatchString(v) {
		return "CVV must be 3-4 digits"
	}
	return ""
}
