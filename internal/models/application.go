package models

// Application is the single record that flows through the pipeline. It is
// created at intake and only ever appended to; stages never rewrite earlier
// results.
type Application struct {
	ID              string             `json:"id"`
	CustomerName    string             `json:"customerName"`
	LoanAmount      float64            `json:"loanAmount"`
	Purpose         string             `json:"purpose"`
	ProductType     string             `json:"productType"`
	TenureYears     int                `json:"tenureYears"`
	Contact         string             `json:"contact,omitempty"`
	Email           string             `json:"email,omitempty"`
	Customer        CustomerProfile    `json:"customer"`
	Collateral      *CollateralProfile `json:"collateral,omitempty"`
	SubmittedAt     string             `json:"submittedAt"`
	CurrentStage    string             `json:"currentStage"`
	StageResults    []StageResult      `json:"stageResults"`
	ConversationLog []ConversationTurn `json:"conversationLog,omitempty"`
}

// CustomerProfile is an immutable snapshot supplied at intake and read by
// multiple stages.
type CustomerProfile struct {
	Age                int     `json:"age" form:"age"`
	MonthlyIncome      float64 `json:"monthlyIncome" form:"monthlyIncome"`
	EmploymentYears    float64 `json:"employmentYears" form:"employmentYears"`
	EmployerType       string  `json:"employerType" form:"employerType"`
	ExistingEMIs       float64 `json:"existingEmis" form:"existingEmis"`
	OtherObligations   float64 `json:"otherObligations" form:"otherObligations"`
	CreditScore        int     `json:"creditScore" form:"creditScore"`
	CreditHistoryYears float64 `json:"creditHistoryYears" form:"creditHistoryYears"`
	RecentInquiries    int     `json:"recentInquiries" form:"recentInquiries"`
}

// CollateralProfile describes the property backing a secured loan. Used only
// by the asset-valuation branch.
type CollateralProfile struct {
	PropertyType  string  `json:"propertyType" form:"propertyType"`
	LocationTier  string  `json:"locationTier" form:"locationTier"`
	AreaSqft      float64 `json:"areaSqft" form:"areaSqft"`
	AgeYears      int     `json:"ageYears" form:"ageYears"`
	QualityGrade  string  `json:"qualityGrade" form:"qualityGrade"`
	LegalStatus   string  `json:"legalStatus" form:"legalStatus"`
	DeclaredValue float64 `json:"declaredValue,omitempty" form:"declaredValue"`
}

// StageResult is produced once per stage and immutable after that. Later
// stages may read any earlier result by stage key.
type StageResult struct {
	Stage     string                 `json:"stage"`
	StageNum  int                    `json:"stageNum"`
	Verdict   string                 `json:"verdict"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
	Remarks   string                 `json:"remarks,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ConversationTurn records one exchange with the text-completion collaborator.
type ConversationTurn struct {
	Stage     string `json:"stage"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	ToolName  string `json:"toolName,omitempty"`
	Timestamp string `json:"timestamp"`
}

// FindStageResult returns the result for the given stage key, if present.
func (a *Application) FindStageResult(stage string) (StageResult, bool) {
	for _, sr := range a.StageResults {
		if sr.Stage == stage {
			return sr, true
		}
	}
	return StageResult{}, false
}

// AppendStageResult records a completed stage and advances the current stage
// marker.
func (a *Application) AppendStageResult(sr StageResult) {
	a.StageResults = append(a.StageResults, sr)
	a.CurrentStage = sr.Stage
}
