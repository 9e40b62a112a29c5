package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	shutdown := Setup("cerven-ot-api", "", false)
	assert.NoError(t, shutdown(context.Background()))
}
