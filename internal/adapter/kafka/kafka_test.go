package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunwolf-labs/supt-monitor/internal/domain"
)

func sampleBundle() domain.MetricBundle {
	return domain.MetricBundle{
		Metrics: domain.Metrics{
			EII:          0.91,
			MdMax:        1.3,
			MdMean:       0.95,
			ShallowRatio: 0.8,
		},
		CCI:            0.42,
		Kp:             4.67,
		PsiS:           0.72,
		Phase:          domain.PhaseActive,
		CoherenceLabel: domain.CoherenceModerate,
		GeomagLabel:    domain.GeomagModerate,
		CatalogSource:  domain.SourceLive,
		KpSource:       domain.SourceLive,
		EventCount:     17,
		EvaluatedAt:    time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(sampleBundle())
	require.NoError(t, err)

	assert.Equal(t, "2024-04-26T09:00:00Z", string(msg.Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, 0.91, decoded["eii"])
	assert.Equal(t, "ACTIVE", decoded["rpam_phase"])
	assert.Equal(t, "live", decoded["catalog_source"])
	assert.Equal(t, float64(17), decoded["event_count"])
	assert.NotContains(t, decoded, "notices")
}

func TestSerializeToMessage_Headers(t *testing.T) {
	msg, err := serializeToMessage(sampleBundle())
	require.NoError(t, err)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "rpam_phase", msg.Headers[0].Key)
	assert.Equal(t, "ACTIVE", string(msg.Headers[0].Value))
	assert.Equal(t, "catalog_source", msg.Headers[1].Key)
	assert.Equal(t, "live", string(msg.Headers[1].Value))
}
