package scoring

// DependencyScorer computes the ADL and IADL axes from option penalties.
type DependencyScorer struct{}

// NewDependencyScorer creates a new DependencyScorer
func NewDependencyScorer() *DependencyScorer {
	return &DependencyScorer{}
}

// Score evaluates a dependency questionnaire. Penalties are read from the
// effective answers; a locked instance keeps both axes at their maximum.
func (s *DependencyScorer) Score(in Input) Summary {
	locked := Locked(in.Questions, in.Answers)
	applicable := Applicable(in.Questions, locked)

	var adlPenalty, iadlPenalty float64
	var details []Metric
	for _, q := range applicable {
		var axis string
		switch {
		case IsADL(q):
			axis = "adl"
		case IsIADL(q):
			axis = "iadl"
		default:
			continue
		}
		values := EffectiveAnswer(q, in.Answers)
		if len(values) == 0 {
			continue
		}
		points := OptionPoints(q, values)
		if axis == "adl" {
			adlPenalty += points
		} else {
			iadlPenalty += points
		}
		details = append(details, Metric{
			QuestionID: q.ID,
			Label:      q.Label,
			Answer:     joinValues(values),
			Points:     points,
			Axis:       axis,
		})
	}

	adl := Clamp(ADLMax-adlPenalty, 0, ADLMax)
	iadl := Clamp(IADLMax-iadlPenalty, 0, IADLMax)

	return &DependencySummary{
		ADLScore:          adl,
		ADLMax:            ADLMax,
		IADLScore:         iadl,
		IADLMax:           IADLMax,
		DependencyPercent: DependencyPercent(adl, iadl),
		Severity:          Classify(applicable, in.Answers, in.Options),
		Report:            BuildReport(applicable, in.Answers),
		Locked:            locked,
		Details:           details,
	}
}

// DependencyPercent derives the composite percentage from the two axes:
// 100 when adl <= 5 and iadl <= 6, 50 when adl <= 5.5, else 0.
func DependencyPercent(adl, iadl float64) int {
	percent := 0
	if adl <= 5.5 {
		percent = 50
		if adl <= 5 && iadl <= 6 {
			percent = 100
		}
	}
	return percent
}
