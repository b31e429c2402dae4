package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassengerCounts_Adjust(t *testing.T) {
	tests := []struct {
		name  string
		start PassengerCounts
		kind  PassengerKind
		delta int
		want  PassengerCounts
	}{
		{"add adult", PassengerCounts{Adults: 1}, PassengerAdults, 1, PassengerCounts{Adults: 2}},
		{"last adult stays", PassengerCounts{Adults: 1}, PassengerAdults, -1, PassengerCounts{Adults: 1}},
		{"no negative children", PassengerCounts{Adults: 1}, PassengerChildren, -1, PassengerCounts{Adults: 1}},
		{"infant per adult", PassengerCounts{Adults: 1}, PassengerInfants, 1, PassengerCounts{Adults: 1, Infants: 1}},
		{"no second infant on one adult", PassengerCounts{Adults: 1, Infants: 1}, PassengerInfants, 1, PassengerCounts{Adults: 1, Infants: 1}},
		{"infants follow adults down", PassengerCounts{Adults: 2, Infants: 2}, PassengerAdults, -1, PassengerCounts{Adults: 1, Infants: 1}},
		{"seat limit", PassengerCounts{Adults: 5, Children: 4}, PassengerChildren, 1, PassengerCounts{Adults: 5, Children: 4}},
		{"infants don't take seats", PassengerCounts{Adults: 5, Children: 4, Infants: 1}, PassengerInfants, 1, PassengerCounts{Adults: 5, Children: 4, Infants: 2}},
		{"unknown kind", PassengerCounts{Adults: 1}, PassengerKind("pets"), 1, PassengerCounts{Adults: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.Adjust(tt.kind, tt.delta))
		})
	}
}

func TestPassengerCounts_Summary(t *testing.T) {
	assert.Equal(t, "1 adult", PassengerCounts{Adults: 1}.Summary())
	assert.Equal(t, "2 adults, 1 child", PassengerCounts{Adults: 2, Children: 1}.Summary())
	assert.Equal(t, "1 adult, 3 children, 1 infant", PassengerCounts{Adults: 1, Children: 3, Infants: 1}.Summary())
}

func TestFlightOffer_TotalCents(t *testing.T) {
	offer := FlightOffer{PriceCents: CentsFromAmount(199.99)}

	total := offer.TotalCents(PassengerCounts{Adults: 2, Children: 1, Infants: 1})

	assert.Equal(t, int64(59997), total)
	assert.Equal(t, "599.97", FormatPrice(total))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0.00", FormatPrice(0))
	assert.Equal(t, "0.05", FormatPrice(5))
	assert.Equal(t, "249.50", FormatPrice(24950))
	assert.Equal(t, "-1.10", FormatPrice(-110))
	assert.InDelta(t, 199.99, AmountFromCents(19999), 1e-9)
}

func TestSearchResults_FindOutbound(t *testing.T) {
	results := &SearchResults{Outbound: []FlightOffer{{ID: 1}, {ID: 2}}}

	offer, ok := results.FindOutbound(2)
	assert.True(t, ok)
	assert.Equal(t, int64(2), offer.ID)

	_, ok = results.FindOutbound(3)
	assert.False(t, ok)

	var none *SearchResults
	_, ok = none.FindOutbound(1)
	assert.False(t, ok)
}
