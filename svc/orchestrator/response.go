package orchestrator

// Result is one item's individual outcome within a batch.
type Result struct {
	IDs          []string `json:"id"`
	Names        []string `json:"name"`
	Success      bool     `json:"success"`
	NotFound     bool     `json:"notFound,omitempty"`
	LimitReached bool     `json:"limitReached,omitempty"`
}

// FeatureResponse is the aggregate outcome of one orchestrated batch. It is
// always returned, never thrown past the action boundary, so the UI can
// render partial success deterministically.
type FeatureResponse struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message,omitempty"`
	Errors        []string `json:"errors,omitempty"`
	LimitReached  bool     `json:"limitReached"`
	NotFoundError bool     `json:"notFoundError"`
	Results       []Result `json:"results"`
}

// OutcomeKind tags one item's classified outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNotFound
	OutcomeLimitReached
	OutcomeError
)

// Outcome is one item's tagged outcome, produced by the fan-out worker for
// its own index only. Aggregation happens afterwards in Reduce, so workers
// never share mutable state.
type Outcome struct {
	Kind OutcomeKind
	ID   string
	Name string
	Err  error
}

// Reduce folds per-item outcomes into a FeatureResponse. Pure function: the
// flag priority is notFoundError over limitReached over generic failure, and
// Results always has one entry per outcome, in item order.
func Reduce(outcomes []Outcome) FeatureResponse {
	resp := FeatureResponse{
		Results: make([]Result, 0, len(outcomes)),
	}

	succeeded := 0
	for _, o := range outcomes {
		result := Result{}
		if o.ID != "" {
			result.IDs = []string{o.ID}
		}
		if o.Name != "" {
			result.Names = []string{o.Name}
		}

		switch o.Kind {
		case OutcomeSuccess:
			result.Success = true
			succeeded++
		case OutcomeNotFound:
			result.NotFound = true
			resp.NotFoundError = true
		case OutcomeLimitReached:
			result.LimitReached = true
			resp.LimitReached = true
		case OutcomeError:
			if o.Err != nil {
				resp.Errors = append(resp.Errors, o.Err.Error())
			}
		}
		resp.Results = append(resp.Results, result)
	}

	switch {
	case resp.NotFoundError:
		resp.LimitReached = false
		resp.Message = "some resources no longer exist upstream"
	case resp.LimitReached:
		resp.Message = "feature limit reached"
	case len(resp.Errors) > 0:
		resp.Message = "some items failed"
	default:
		resp.Success = succeeded == len(outcomes)
		if resp.Success {
			resp.Message = "all items applied"
		}
	}
	return resp
}

// failure builds the batch-fatal response used before any per-item dispatch.
func failure(message string, err error) FeatureResponse {
	resp := FeatureResponse{
		Message: message,
		Results: []Result{},
	}
	if err != nil {
		resp.Errors = []string{err.Error()}
	}
	return resp
}
