package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cogpy/probreacog/internal/domain"
)

// toolOutput mirrors the JSON document the analysis executables print on
// standard output. Fields irrelevant to a given role stay empty.
type toolOutput struct {
	Probability  *float64           `json:"probability,omitempty"`
	Bounds       []float64          `json:"bounds,omitempty"`
	Trajectories int                `json:"trajectories,omitempty"`
	Sensitivity  map[string]float64 `json:"sensitivity,omitempty"`
	Suggested    map[string]float64 `json:"suggested_values,omitempty"`
	Extra        map[string]string  `json:"extra,omitempty"`
}

func parseOutput(raw []byte) (*toolOutput, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty tool output", domain.ErrExternalTool)
	}
	var out toolOutput
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: unparsable tool output: %v", domain.ErrExternalTool, err)
	}
	return &out, nil
}

func (o *toolOutput) result() *domain.TaskResult {
	res := &domain.TaskResult{
		Trajectories: o.Trajectories,
		Output:       o.Extra,
	}
	if o.Probability != nil {
		res.Probability = *o.Probability
	}
	if len(o.Bounds) == 2 {
		res.Bounds = domain.Interval{Lower: o.Bounds[0], Upper: o.Bounds[1]}
	}
	return res
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
