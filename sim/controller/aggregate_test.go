package controller

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladder-sim/ladder-sim/sim"
	"github.com/ladder-sim/ladder-sim/sim/internal/testutil"
)

func TestAggregateResult_MarshalJSON_OrderedList(t *testing.T) {
	agg := AggregateResult{
		MenPercentByLevel:   []float64{50, 62.5},
		WomenPercentByLevel: []float64{50, 37.5},
		MenStdDevByLevel:    []float64{1, 2},
		PromotionBias:       5,
		Favors:              sim.Men,
		Simulations:         30,
	}

	data, err := json.Marshal(agg)
	require.NoError(t, err)

	assert.JSONEq(t, `[[50, 62.5], [50, 37.5], 5, "men"]`, string(data))
}

func TestAggregateResult_MarshalJSON_EmptySeries(t *testing.T) {
	data, err := json.Marshal(AggregateResult{Favors: sim.Women})
	require.NoError(t, err)
	assert.JSONEq(t, `[[], [], 0, "women"]`, string(data))
}

func TestAggregateResult_UnmarshalJSON(t *testing.T) {
	var agg AggregateResult
	require.NoError(t, json.Unmarshal([]byte(`[[55.5, 70], [44.5, 30], 10, "women"]`), &agg))

	testutil.AssertSliceFloat64Equal(t, "men", []float64{55.5, 70}, agg.MenPercentByLevel, 1e-12)
	testutil.AssertSliceFloat64Equal(t, "women", []float64{44.5, 30}, agg.WomenPercentByLevel, 1e-12)
	assert.Equal(t, 10, agg.PromotionBias)
	assert.Equal(t, sim.Women, agg.Favors)
}

func TestAggregateResult_UnmarshalJSON_WrongShape(t *testing.T) {
	var agg AggregateResult
	assert.Error(t, json.Unmarshal([]byte(`[[1], [2], 3]`), &agg))
	assert.Error(t, json.Unmarshal([]byte(`{"men": [1]}`), &agg))
	assert.Error(t, json.Unmarshal([]byte(`[[1], [2], "x", "men"]`), &agg))
}

func TestAggregateResult_PercentByLevel(t *testing.T) {
	agg := AggregateResult{MenPercentByLevel: []float64{60}, WomenPercentByLevel: []float64{40}}
	assert.Equal(t, []float64{60}, agg.PercentByLevel(sim.Men))
	assert.Equal(t, []float64{40}, agg.PercentByLevel(sim.Women))
}

func TestWriteTable_OneRowPerLevel(t *testing.T) {
	agg := AggregateResult{
		MenPercentByLevel:   []float64{50, 75.125},
		WomenPercentByLevel: []float64{50, 24.875},
		MenStdDevByLevel:    []float64{0, 3.5},
	}
	var buf bytes.Buffer
	agg.WriteTable(&buf)

	out := buf.String()
	assert.Contains(t, out, "1\t50.00\t50.00\t0.00\n")
	assert.Contains(t, out, "2\t75.12\t24.88\t3.50\n")
}

func TestWriteHeader_DescribesRun(t *testing.T) {
	var buf bytes.Buffer
	WriteHeader(&buf, sim.DefaultSimConfig(sim.Men, 1), 30)

	out := buf.String()
	for _, want := range []string{"Running 30 simulations.", " 1% bias for men", "20 promotion cycles", "15% attrition rate"} {
		assert.True(t, strings.Contains(out, want), "header missing %q:\n%s", want, out)
	}
}
