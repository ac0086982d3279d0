package categorize

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dewart-reps/mileage-cli/internal/address"
	"github.com/dewart-reps/mileage-cli/internal/model"
)

// fakeCategories is a CategorySource backed by a map.
type fakeCategories map[string]string

func (f fakeCategories) Category(addr string) string { return f[addr] }

// fakeNames is a NameResolver that records lookups.
type fakeNames struct {
	names map[string]string
	calls int
}

func (f *fakeNames) BusinessName(ctx context.Context, addr string) string {
	f.calls++
	if name, ok := f.names[addr]; ok {
		return name
	}
	return "Unknown"
}

const (
	homeAddr = "15815 61st Ln NE, Kenmore"
	workAddr = "9227 NE 180th St, Bothell"
)

func newTestCategorizer(categories fakeCategories, names *fakeNames) *Categorizer {
	if categories == nil {
		categories = fakeCategories{}
	}
	if names == nil {
		names = &fakeNames{}
	}
	return New(Config{
		Matcher:                   address.NewMatcher(homeAddr, workAddr),
		BusinessDistanceThreshold: 8.0,
		RemoteLeisureName:         "Whidbey",
		RemoteLeisureKeywords:     []string{"Coupeville", "Oak Harbor", "Clinton", "Whidbey"},
		LocalMetroKeywords:        []string{"bothell", "kenmore"},
	}, categories, names)
}

func tripAt(t time.Time, from, to string, distance float64) model.MergedTrip {
	return model.MergedTrip{TripSegment: model.TripSegment{
		Started:      t,
		StartAddress: from,
		EndAddress:   to,
		Distance:     distance,
	}}
}

var (
	tuesdayMorning = time.Date(2025, 3, 4, 9, 0, 0, 0, time.Local)
	saturdayNoon   = time.Date(2025, 3, 8, 12, 0, 0, 0, time.Local)
)

func TestSavedCategoryBeatsEverything(t *testing.T) {
	c := newTestCategorizer(
		fakeCategories{"Shell Station, Bothell": "personal"},
		&fakeNames{names: map[string]string{"Shell Station, Bothell": "Shell"}},
	)

	// The address matches the business keyword rule too, but the saved
	// override wins.
	got := c.Categorize(context.Background(), tripAt(tuesdayMorning, homeAddr, "Shell Station, Bothell", 3.0))
	assert.Equal(t, model.CategoryPersonal, got.AutoCategory)
	assert.Equal(t, "Shell", got.BusinessName)
	assert.Equal(t, Reason(RuleSavedCategory), got.CategoryReason)
}

func TestBusinessKeyword(t *testing.T) {
	names := &fakeNames{names: map[string]string{"Shell Station, Lynnwood": "Shell"}}
	c := newTestCategorizer(nil, names)

	got := c.Categorize(context.Background(), tripAt(tuesdayMorning, "", "Shell Station, Lynnwood", 2.0))
	assert.Equal(t, model.CategoryBusiness, got.AutoCategory)
	assert.Equal(t, "Shell", got.BusinessName)
	assert.Equal(t, Reason(RuleBusinessKeyword), got.CategoryReason)
}

func TestBusinessKeywordPrefersStart(t *testing.T) {
	names := &fakeNames{names: map[string]string{
		"Chevron, Kirkland": "Chevron",
		"456 Plain Rd":      "Plain",
	}}
	c := newTestCategorizer(nil, names)

	got := c.Categorize(context.Background(), tripAt(tuesdayMorning, "Chevron, Kirkland", "456 Plain Rd", 2.0))
	assert.Equal(t, model.CategoryBusiness, got.AutoCategory)
	assert.Equal(t, "Chevron", got.BusinessName)
}

func TestCommuteSymmetry(t *testing.T) {
	c := newTestCategorizer(nil, nil)

	toWork := c.Categorize(context.Background(), tripAt(tuesdayMorning, homeAddr, workAddr, 6.5))
	assert.Equal(t, model.CategoryCommute, toWork.AutoCategory)
	assert.Equal(t, "Office", toWork.BusinessName)

	toHome := c.Categorize(context.Background(), tripAt(tuesdayMorning.Add(9*time.Hour), workAddr, homeAddr, 6.5))
	assert.Equal(t, model.CategoryCommute, toHome.AutoCategory)
	assert.Equal(t, "Home", toHome.BusinessName)
}

func TestRemoteLeisure(t *testing.T) {
	c := newTestCategorizer(nil, nil)

	// Long and on a weekday, but the remote leisure area wins first.
	got := c.Categorize(context.Background(), tripAt(tuesdayMorning, homeAddr, "123 Front St, Coupeville", 45.0))
	assert.Equal(t, model.CategoryPersonal, got.AutoCategory)
	assert.Equal(t, "Whidbey Personal Trip", got.BusinessName)
	assert.Equal(t, Reason(RuleRemoteLeisure), got.CategoryReason)
}

func TestLongWeekdayIsBusiness(t *testing.T) {
	names := &fakeNames{names: map[string]string{"900 Far Rd, Tacoma": "Far Corp"}}
	c := newTestCategorizer(nil, names)

	got := c.Categorize(context.Background(), tripAt(tuesdayMorning, "100 Near St, Seattle", "900 Far Rd, Tacoma", 12.0))
	assert.Equal(t, model.CategoryBusiness, got.AutoCategory)
	assert.Equal(t, "Far Corp", got.BusinessName)
	assert.Equal(t, Reason(RuleLongWeekday), got.CategoryReason)
}

func TestLongWeekdayThresholdBoundary(t *testing.T) {
	c := newTestCategorizer(nil, &fakeNames{})

	// Exactly at the threshold counts as long.
	got := c.Categorize(context.Background(), tripAt(tuesdayMorning, "100 Near St, Seattle", "900 Far Rd, Tacoma", 8.0))
	assert.Equal(t, model.CategoryBusiness, got.AutoCategory)

	// Just under falls through; Seattle/Tacoma is outside the local metro,
	// so the default rule fires.
	got = c.Categorize(context.Background(), tripAt(tuesdayMorning, "100 Near St, Seattle", "900 Far Rd, Tacoma", 7.99))
	assert.Equal(t, model.CategoryPersonal, got.AutoCategory)
	assert.Equal(t, "Other Personal", got.BusinessName)
}

func TestLongTripDestinationLabelHomeOffice(t *testing.T) {
	names := &fakeNames{}
	c := newTestCategorizer(nil, names)

	// A long weekday trip ending at home keeps the fixed label and never
	// hits the resolver.
	got := c.Categorize(context.Background(), tripAt(tuesdayMorning, "900 Far Rd, Tacoma", homeAddr, 20.0))
	assert.Equal(t, model.CategoryBusiness, got.AutoCategory)
	assert.Equal(t, "Home", got.BusinessName)
	assert.Equal(t, 0, names.calls)
}

func TestWeekendWindow(t *testing.T) {
	c := newTestCategorizer(nil, nil)

	got := c.Categorize(context.Background(), tripAt(saturdayNoon, "100 Near St, Seattle", "900 Far Rd, Tacoma", 3.0))
	assert.Equal(t, model.CategoryPersonal, got.AutoCategory)
	assert.Equal(t, "Weekend Travel", got.BusinessName)
	assert.Equal(t, Reason(RuleWeekendWindow), got.CategoryReason)
}

func TestLocalMetroWeekdayIsBusiness(t *testing.T) {
	names := &fakeNames{names: map[string]string{"18007 Bothell Way, Bothell": "Bothell Deli"}}
	c := newTestCategorizer(nil, names)

	got := c.Categorize(context.Background(), tripAt(tuesdayMorning, "123 Side St, Kenmore", "18007 Bothell Way, Bothell", 2.5))
	assert.Equal(t, model.CategoryBusiness, got.AutoCategory)
	assert.Equal(t, "Bothell Deli", got.BusinessName)
	assert.Equal(t, Reason(RuleLocalMetro), got.CategoryReason)
}

func TestDefaultIsPersonal(t *testing.T) {
	c := newTestCategorizer(nil, nil)

	// Tuesday, short, outside the metro keywords.
	got := c.Categorize(context.Background(), tripAt(tuesdayMorning, "100 A St, Lynnwood", "200 B St, Edmonds", 1.0))
	assert.Equal(t, model.CategoryPersonal, got.AutoCategory)
	assert.Equal(t, "Other Personal", got.BusinessName)
	assert.Equal(t, Reason(RuleDefault), got.CategoryReason)
}

func TestCategorizeDeterministic(t *testing.T) {
	c := newTestCategorizer(nil, &fakeNames{})
	trip := tripAt(tuesdayMorning, homeAddr, workAddr, 6.5)

	first := c.Categorize(context.Background(), trip)
	second := c.Categorize(context.Background(), trip)
	assert.Equal(t, first, second)
}

func TestWhichRuleMatchesDecision(t *testing.T) {
	c := newTestCategorizer(
		fakeCategories{"Saved Addr": "business"},
		&fakeNames{},
	)

	tests := []struct {
		trip model.MergedTrip
		want Rule
	}{
		{tripAt(tuesdayMorning, homeAddr, "Saved Addr", 1.0), RuleSavedCategory},
		{tripAt(tuesdayMorning, homeAddr, "Shell Station", 1.0), RuleBusinessKeyword},
		{tripAt(tuesdayMorning, homeAddr, workAddr, 6.5), RuleCommute},
		{tripAt(tuesdayMorning, homeAddr, "1 Pier Rd, Coupeville", 40.0), RuleRemoteLeisure},
		{tripAt(tuesdayMorning, "100 A St, Seattle", "1 B St, Tacoma", 9.0), RuleLongWeekday},
		{tripAt(saturdayNoon, "100 A St, Seattle", "1 B St, Tacoma", 1.0), RuleWeekendWindow},
		{tripAt(tuesdayMorning, "1 C St, Kenmore", "2 D St, Bothell", 2.0), RuleLocalMetro},
		{tripAt(tuesdayMorning, "100 A St, Lynnwood", "1 B St, Edmonds", 1.0), RuleDefault},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.WhichRule(tt.trip))
	}
}

func TestInWeekendWindow(t *testing.T) {
	tests := []struct {
		t    time.Time
		want bool
	}{
		{time.Date(2025, 3, 7, 16, 59, 0, 0, time.Local), false}, // Friday before 17:00
		{time.Date(2025, 3, 7, 17, 0, 0, 0, time.Local), true},   // Friday 17:00
		{time.Date(2025, 3, 8, 3, 0, 0, 0, time.Local), true},    // Saturday
		{time.Date(2025, 3, 9, 23, 0, 0, 0, time.Local), true},   // Sunday
		{time.Date(2025, 3, 10, 6, 59, 0, 0, time.Local), true},  // Monday before 07:00
		{time.Date(2025, 3, 10, 7, 0, 0, 0, time.Local), false},  // Monday 07:00
		{time.Date(2025, 3, 11, 12, 0, 0, 0, time.Local), false}, // Tuesday
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InWeekendWindow(tt.t), tt.t.String())
	}
}

func TestIsWeekday(t *testing.T) {
	assert.True(t, IsWeekday(tuesdayMorning))
	assert.False(t, IsWeekday(saturdayNoon))
}
