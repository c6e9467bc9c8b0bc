package completion

import (
	"context"
	"strings"

	apperrors "loan-workers/internal/common/errors"
	"loan-workers/internal/common/validation"
)

// ToolID is a typed identifier for a calculator tool. Using a dedicated type
// instead of raw strings means an unknown tool is caught at the dispatch
// boundary with a structured error, and registration typos surface in tests.
type ToolID string

const (
	ToolCalculateEMI         ToolID = "loan.calc.emi"
	ToolAmortizationSchedule ToolID = "loan.calc.amortize"
	ToolCalculateFOIR        ToolID = "loan.calc.foir"
	ToolCalculateLTV         ToolID = "loan.calc.ltv"
	ToolPropertyValuation    ToolID = "loan.calc.valuation"
	ToolBorrowingCapacity    ToolID = "loan.calc.capacity"
	ToolCreditRiskScore      ToolID = "loan.risk.credit"
	ToolCollateralRiskScore  ToolID = "loan.risk.collateral"
	ToolCombinedRiskScore    ToolID = "loan.risk.combined"
	ToolListDocuments        ToolID = "loan.docs.list"
	ToolCategorizeDocument   ToolID = "loan.docs.categorize"
)

// ToolSchema is the serialized declaration sent to the collaborator.
type ToolSchema struct {
	Name        ToolID                `json:"name"`
	Description string                `json:"description"`
	Parameters  validation.JSONSchema `json:"parameters"`
}

// ToolFunc executes a tool against validated arguments and returns a
// JSON-serializable result.
type ToolFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

type registeredTool struct {
	schema ToolSchema
	fn     ToolFunc
}

// ToolRegistry maps tool IDs to their schema and implementation.
type ToolRegistry struct {
	tools map[ToolID]registeredTool
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[ToolID]registeredTool)}
}

// Register adds a tool. Re-registering an ID replaces the previous entry.
func (r *ToolRegistry) Register(schema ToolSchema, fn ToolFunc) {
	r.tools[schema.Name] = registeredTool{schema: schema, fn: fn}
}

// Schemas returns the declarations for every registered tool, for inclusion
// in completion requests.
func (r *ToolRegistry) Schemas() []ToolSchema {
	schemas := make([]ToolSchema, 0, len(r.tools))
	for _, t := range r.tools {
		schemas = append(schemas, t.schema)
	}
	return schemas
}

// Dispatch validates the arguments against the tool's declared schema and
// invokes it. Unknown tools and schema violations return structured errors.
func (r *ToolRegistry) Dispatch(ctx context.Context, id ToolID, args map[string]interface{}) (interface{}, error) {
	tool, ok := r.tools[id]
	if !ok {
		return nil, apperrors.NewUnknownToolError(string(id))
	}

	if args == nil {
		args = map[string]interface{}{}
	}

	if result := validation.ValidateInput(args, tool.schema.Parameters); !result.Valid {
		return nil, apperrors.NewSchemaViolationError(string(id), strings.Join(result.GetErrorMessages(), "; "))
	}

	return tool.fn(ctx, args)
}
