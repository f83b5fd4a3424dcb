package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(slotEvents.WithLabelValues("created"))
	AddSlotEvent("created", 3)
	AddSlotEvent("created", 0)
	assert.Equal(t, before+3, testutil.ToFloat64(slotEvents.WithLabelValues("created")))

	assert.NotPanics(t, func() {
		IncHTTP("/v1/slots/availability", "GET", "200")
		IncContactEvent("submitted")
	})
}
