// Package categorize assigns each trip a business/personal/commute category
// through an ordered rule list. First match wins; the precedence is a
// contract, and WhichRule reproduces the decision independently for audit
// trails.
package categorize

import (
	"context"
	"strings"

	"github.com/dewart-reps/mileage-cli/internal/address"
	"github.com/dewart-reps/mileage-cli/internal/model"
)

// Rule identifies which decision-list rule fired for a trip.
type Rule string

const (
	RuleSavedCategory   Rule = "saved_category"
	RuleBusinessKeyword Rule = "business_keyword"
	RuleCommute         Rule = "commute"
	RuleRemoteLeisure   Rule = "remote_leisure"
	RuleLongWeekday     Rule = "long_weekday"
	RuleWeekendWindow   Rule = "weekend_window"
	RuleLocalMetro      Rule = "local_metro"
	RuleDefault         Rule = "default"
)

// reasons are the category_reason texts carried on categorized trips.
var reasons = map[Rule]string{
	RuleSavedCategory:   "saved category override",
	RuleBusinessKeyword: "business keyword match",
	RuleCommute:         "home/work commute",
	RuleRemoteLeisure:   "remote leisure area",
	RuleLongWeekday:     "weekday trip over distance threshold",
	RuleWeekendWindow:   "weekend window",
	RuleLocalMetro:      "local metro area",
	RuleDefault:         "no rule matched",
}

// CategorySource exposes saved per-destination category overrides.
type CategorySource interface {
	Category(addr string) string
}

// NameResolver labels a destination with its business name.
type NameResolver interface {
	BusinessName(ctx context.Context, addr string) string
}

// Config tunes the decision list.
type Config struct {
	Matcher                   *address.Matcher
	BusinessDistanceThreshold float64
	RemoteLeisureName         string
	RemoteLeisureKeywords     []string
	LocalMetroKeywords        []string
}

// Categorizer applies the ordered rule list to merged trips.
type Categorizer struct {
	cfg        Config
	categories CategorySource
	names      NameResolver
}

// New creates a Categorizer.
func New(cfg Config, categories CategorySource, names NameResolver) *Categorizer {
	if cfg.BusinessDistanceThreshold == 0 {
		cfg.BusinessDistanceThreshold = 8.0
	}
	return &Categorizer{cfg: cfg, categories: categories, names: names}
}

// Categorize assigns a category, business name, and reason to one trip.
// Categorizing the same trip twice against unchanged mapping state yields
// identical results.
func (c *Categorizer) Categorize(ctx context.Context, trip model.MergedTrip) model.CategorizedTrip {
	out := model.CategorizedTrip{MergedTrip: trip}
	out.AutoCategory, out.BusinessName, out.CategoryReason = c.decide(ctx, trip)
	return out
}

func (c *Categorizer) decide(ctx context.Context, trip model.MergedTrip) (model.Category, string, string) {
	start := trip.StartAddress
	end := trip.EndAddress
	m := c.cfg.Matcher

	// 1. Saved per-destination override beats everything.
	if saved := c.categories.Category(end); saved != "" {
		return model.Category(strings.ToLower(saved)), c.names.BusinessName(ctx, end), reasons[RuleSavedCategory]
	}

	// 2. Known business location at either endpoint (gas stations and the
	// like are always business trips).
	if address.IsBusinessLocation(start) || address.IsBusinessLocation(end) {
		target := start
		if target == "" {
			target = end
		}
		return model.CategoryBusiness, c.names.BusinessName(ctx, target), reasons[RuleBusinessKeyword]
	}

	// 3. Directional home/work commute.
	if m.IsHome(start) && m.IsWork(end) {
		return model.CategoryCommute, "Office", reasons[RuleCommute]
	}
	if m.IsWork(start) && m.IsHome(end) {
		return model.CategoryCommute, "Home", reasons[RuleCommute]
	}

	// 4. Remote leisure area is always personal, per business policy.
	if address.InArea(start, c.cfg.RemoteLeisureKeywords) || address.InArea(end, c.cfg.RemoteLeisureKeywords) {
		return model.CategoryPersonal, c.remoteLeisureLabel(), reasons[RuleRemoteLeisure]
	}

	// 5. Long weekday trips are business.
	if trip.Distance >= c.cfg.BusinessDistanceThreshold && IsWeekday(trip.Started) {
		return model.CategoryBusiness, c.destinationLabel(ctx, end), reasons[RuleLongWeekday]
	}

	// 6. Weekend travel window.
	if InWeekendWindow(trip.Started) {
		return model.CategoryPersonal, "Weekend Travel", reasons[RuleWeekendWindow]
	}

	// 7. Short trips inside the local metro area.
	if address.InArea(start, c.cfg.LocalMetroKeywords) && address.InArea(end, c.cfg.LocalMetroKeywords) &&
		trip.Distance < c.cfg.BusinessDistanceThreshold {
		if IsWeekday(trip.Started) {
			return model.CategoryBusiness, c.destinationLabel(ctx, end), reasons[RuleLocalMetro]
		}
		return model.CategoryPersonal, "Local Personal", reasons[RuleLocalMetro]
	}

	// 8. Default.
	return model.CategoryPersonal, "Other Personal", reasons[RuleDefault]
}

// destinationLabel labels a business-trip destination: Home and Office are
// checked before the resolver so known endpoints keep their fixed labels.
func (c *Categorizer) destinationLabel(ctx context.Context, end string) string {
	if c.cfg.Matcher.IsHome(end) {
		return "Home"
	}
	if c.cfg.Matcher.IsWork(end) {
		return "Office"
	}
	return c.names.BusinessName(ctx, end)
}

func (c *Categorizer) remoteLeisureLabel() string {
	name := c.cfg.RemoteLeisureName
	if name == "" {
		name = "Remote Area"
	}
	return name + " Personal Trip"
}

// WhichRule independently re-derives which rule fires for a trip, without
// any resolver calls, for audit diagnostics.
func (c *Categorizer) WhichRule(trip model.MergedTrip) Rule {
	start := trip.StartAddress
	end := trip.EndAddress
	m := c.cfg.Matcher

	switch {
	case c.categories.Category(end) != "":
		return RuleSavedCategory
	case address.IsBusinessLocation(start) || address.IsBusinessLocation(end):
		return RuleBusinessKeyword
	case m.IsHome(start) && m.IsWork(end), m.IsWork(start) && m.IsHome(end):
		return RuleCommute
	case address.InArea(start, c.cfg.RemoteLeisureKeywords) || address.InArea(end, c.cfg.RemoteLeisureKeywords):
		return RuleRemoteLeisure
	case trip.Distance >= c.cfg.BusinessDistanceThreshold && IsWeekday(trip.Started):
		return RuleLongWeekday
	case InWeekendWindow(trip.Started):
		return RuleWeekendWindow
	case address.InArea(start, c.cfg.LocalMetroKeywords) && address.InArea(end, c.cfg.LocalMetroKeywords) &&
		trip.Distance < c.cfg.BusinessDistanceThreshold:
		return RuleLocalMetro
	}
	return RuleDefault
}

// Reason returns the category_reason text for a rule.
func Reason(r Rule) string { return reasons[r] }
