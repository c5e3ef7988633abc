package contracts

// EvaluationNote documents the evaluation methodology in API responses
const EvaluationNote = "ground truth is the row sum of the model's own two input features, not an independent label"

// Evaluation holds MAE and R² of the model against the pivoted features
type Evaluation struct {
	Available bool    `json:"available"` // false when there are no feature rows
	Samples   int     `json:"samples"`
	MAE       float64 `json:"mae"`
	R2        float64 `json:"r2"`
	R2Defined bool    `json:"r2_defined"` // false when ground truth has zero variance
	Note      string  `json:"note"`
}

// Prediction is one ad-hoc what-if prediction
type Prediction struct {
	Male   int     `json:"male"`
	Female int     `json:"female"`
	Total  float64 `json:"total"`
}
