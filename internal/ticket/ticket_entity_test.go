package ticket_test

import (
	"fmt"
	"reflect"
	"testing"

	"cerven-ot/internal/sla"
	"cerven-ot/internal/ticket"

	"github.com/stretchr/testify/assert"
)

func TestTicket_PauseColumnsHoldAnyAcceptedTimestamp(t *testing.T) {
	want := fmt.Sprintf("type:varchar(%d)", sla.MaxTimestampLen)
	typ := reflect.TypeOf(ticket.Ticket{})

	for _, name := range []string{"Pause1Start", "Pause1End", "Pause2Start", "Pause2End"} {
		field, ok := typ.FieldByName(name)
		if assert.True(t, ok, name) {
			assert.Contains(t, field.Tag.Get("gorm"), want, name)
		}
	}
}
