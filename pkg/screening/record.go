package screening

import "fmt"

// YesNo is a categorical survey answer. The training data encoded these as
// 1 for Yes and 2 for No; the model expects exactly that coding, so it is
// kept even though it inverts the usual boolean convention.
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

func (v YesNo) Code() (float64, error) {
	switch v {
	case Yes:
		return 1, nil
	case No:
		return 2, nil
	default:
		return 0, fmt.Errorf("answer %q is not Yes or No", string(v))
	}
}

// Columns is the canonical feature order the preprocessor was fitted on.
// The transform is positional, not semantic: reordering silently corrupts
// predictions, so every row must be assembled through Vector.
var Columns = []string{"p1", "p13", "age", "bmi", "HR", "DBP", "b8", "m14", "SBP", "d1", "d3"}

// InputRecord is one completed screening form: the 11 clinical and lifestyle
// fields the model was trained on.
type InputRecord struct {
	VigorousWork       YesNo   `json:"p1"`  // vigorous-intensity work activity
	ModerateRecreation YesNo   `json:"p13"` // moderate-intensity recreational activity
	Age                int     `json:"age"`
	BMI                float64 `json:"bmi"`
	HeartRate          int     `json:"HR"`
	DiastolicBP        int     `json:"DBP"`
	TotalCholesterol   float64 `json:"b8"`  // mmol/l
	WaistCircumference float64 `json:"m14"` // cm
	SystolicBP         int     `json:"SBP"`
	FruitDays          int     `json:"d1"` // days per week eating fruit
	VegetableDays      int     `json:"d3"` // days per week eating vegetables
}

func (r InputRecord) Validate() error {
	if _, err := r.VigorousWork.Code(); err != nil {
		return fmt.Errorf("p1: %w", err)
	}
	if _, err := r.ModerateRecreation.Code(); err != nil {
		return fmt.Errorf("p13: %w", err)
	}
	checks := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"age", float64(r.Age), 18, 100},
		{"bmi", r.BMI, 10.0, 60.0},
		{"HR", float64(r.HeartRate), 40, 180},
		{"DBP", float64(r.DiastolicBP), 40, 150},
		{"b8", r.TotalCholesterol, 1.0, 15.0},
		{"m14", r.WaistCircumference, 50.0, 200.0},
		{"SBP", float64(r.SystolicBP), 70, 250},
		{"d1", float64(r.FruitDays), 0, 7},
		{"d3", float64(r.VegetableDays), 0, 7},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return fmt.Errorf("%s: value %v outside [%v, %v]", c.name, c.value, c.min, c.max)
		}
	}
	return nil
}

// Vector returns the record's values in canonical column order, validated
// and with categorical answers encoded to their training codes.
func (r InputRecord) Vector() ([]float64, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	p1, _ := r.VigorousWork.Code()
	p13, _ := r.ModerateRecreation.Code()
	return []float64{
		p1,
		p13,
		float64(r.Age),
		r.BMI,
		float64(r.HeartRate),
		float64(r.DiastolicBP),
		r.TotalCholesterol,
		r.WaistCircumference,
		float64(r.SystolicBP),
		float64(r.FruitDays),
		float64(r.VegetableDays),
	}, nil
}
