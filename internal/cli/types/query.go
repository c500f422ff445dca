package types

// Result is one row of a query evaluation, keyed by computed column names
// such as "<variable>_<statistic>" or "<column>_binned".
type Result map[string]any

// EvaluateResponse wraps the row array returned by the evaluation endpoint.
type EvaluateResponse struct {
	Rows []Result `json:"rows"`
}

// AccuracyRequest asks the server for the accuracy of a query at a given
// budget and confidence level.
type AccuracyRequest struct {
	Epsilon    float64 `json:"epsilon"`
	Delta      float64 `json:"delta"`
	Confidence float64 `json:"confidence"`
}

// AccuracyResponse carries the accuracy estimates.
type AccuracyResponse struct {
	Accuracy []float64 `json:"accuracy"`
}
