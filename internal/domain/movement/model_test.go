package movement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kardex/internal/core/id"
)

func TestIsLedgerBearing(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusClosed, true},
		{StatusLedgerGenerated, true},
		{StatusVoided, false},
	}

	for _, tt := range tests {
		doc := Document{Status: tt.status}
		assert.Equal(t, tt.want, doc.IsLedgerBearing(), "status %s", tt.status)
	}
}

func TestEffectiveCounterparty(t *testing.T) {
	headerParty := id.New()
	lineParty := id.New()

	doc := &Document{CounterpartyID: headerParty}

	line := &DetailLine{}
	assert.Equal(t, headerParty, line.EffectiveCounterparty(doc), "empty line inherits header")

	line = &DetailLine{CounterpartyID: lineParty}
	assert.Equal(t, lineParty, line.EffectiveCounterparty(doc), "line override wins")
}
