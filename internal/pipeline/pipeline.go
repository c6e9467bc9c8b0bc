// Package pipeline drives a loan application through every processing stage
// in order, forking the credit and asset branches in parallel and always
// finishing with the audit trail.
package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"loan-workers/internal/common/errors"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/metrics"
	"loan-workers/internal/common/observability"
	"loan-workers/internal/completion"
	"loan-workers/internal/docstore"
	"loan-workers/internal/models"
	"loan-workers/internal/workers/loan/assetvaluation"
	"loan-workers/internal/workers/loan/audit"
	"loan-workers/internal/workers/loan/communication"
	"loan-workers/internal/workers/loan/creditassessment"
	"loan-workers/internal/workers/loan/intake"
	"loan-workers/internal/workers/loan/offer"
	"loan-workers/internal/workers/loan/qualification"
	"loan-workers/internal/workers/loan/underwriting"
	"loan-workers/internal/workers/loan/verifydocs"
)

const defaultStageTimeout = 30 * time.Second

// Options wires the pipeline's collaborators. Optional fields may be nil;
// the corresponding capability is disabled.
type Options struct {
	Logger        logger.Logger
	Store         docstore.Store
	DB            *sql.DB
	Completion    completion.Client
	Tools         *completion.ToolRegistry
	Email         communication.EmailSender
	SMS           communication.SMSSender
	Indexer       audit.Indexer
	Observability *observability.Observability
	StageTimeout  time.Duration
}

// Request is one loan application to process end to end.
type Request struct {
	intake.Input
	CustomerID string `json:"customerId" form:"customerId"`
}

// Result is the terminal state of a processed application.
type Result struct {
	Application   models.Application                 `json:"application"`
	Decision      models.Decision                    `json:"decision"`
	Terms         *models.LoanTerms                  `json:"terms,omitempty"`
	Offer         *offer.LoanOffer                   `json:"offer,omitempty"`
	Notifications []communication.NotificationRecord `json:"notifications,omitempty"`
	AuditReport   *audit.Report                      `json:"auditReport,omitempty"`
	Indexed       bool                               `json:"indexed"`
	CompletedAt   time.Time                          `json:"completedAt"`
}

type Pipeline struct {
	logger       logger.Logger
	completion   completion.Client
	tools        *completion.ToolRegistry
	obs          *observability.Observability
	stageTimeout time.Duration

	intake     *intake.Handler
	docs       *verifydocs.Handler
	qualify    *qualification.Handler
	credit     *creditassessment.Handler
	asset      *assetvaluation.Handler
	underwrite *underwriting.Handler
	offer      *offer.Handler
	comms      *communication.Handler
	audit      *audit.Handler
}

func New(opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	timeout := opts.StageTimeout
	if timeout <= 0 {
		timeout = defaultStageTimeout
	}

	commsCfg := communication.LoadConfig()

	return &Pipeline{
		logger:       log.WithFields(map[string]interface{}{"component": "pipeline"}),
		completion:   opts.Completion,
		tools:        opts.Tools,
		obs:          opts.Observability,
		stageTimeout: timeout,

		intake:     intake.NewHandler(intake.LoadConfig(), opts.DB, log),
		docs:       verifydocs.NewHandler(verifydocs.LoadConfig(), opts.Store, log),
		qualify:    qualification.NewHandler(qualification.LoadConfig(), log),
		credit:     creditassessment.NewHandler(creditassessment.LoadConfig(), creditassessment.NewStaticProvider(), log),
		asset:      assetvaluation.NewHandler(assetvaluation.LoadConfig(), assetvaluation.NewStaticProvider(), log),
		underwrite: underwriting.NewHandler(underwriting.LoadConfig(), log),
		offer:      offer.NewHandler(offer.LoadConfig(), log),
		comms:      communication.NewHandler(commsCfg, opts.Email, opts.SMS, log),
		audit:      audit.NewHandler(audit.LoadConfig(), opts.Indexer, log),
	}
}

// Process runs every stage for one application. Stage-local failures degrade
// to an ERROR verdict on that stage and the pipeline keeps going; only a
// rejected intake aborts before an application record exists.
func (p *Pipeline) Process(ctx context.Context, req *Request) (*Result, error) {
	ctx, end := p.startSpan(ctx, "pipeline.process")
	defer end()

	intakeOut, err := p.runIntake(ctx, req)
	if err != nil {
		return nil, err
	}
	app := intakeOut.Application

	var decision models.Decision
	var terms *models.LoanTerms

	if intakeOut.Verdict == models.VerdictFail {
		decision = models.Decision{
			Outcome:   models.DecisionDeclined,
			Rationale: intakeOut.Remarks,
		}
	} else {
		docScore := p.runDocVerification(ctx, &app, req.CustomerID)
		qualOut := p.runQualification(ctx, &app)
		creditOut, assetOut := p.runParallelAssessment(ctx, &app)
		decision, terms = p.runUnderwriting(ctx, &app, docScore, qualOut, creditOut, assetOut)
	}

	loanOffer := p.runOffer(ctx, &app, decision, terms)
	notifications := p.runCommunication(ctx, &app, decision, loanOffer)
	report, indexed := p.runAudit(ctx, &app, decision, terms)

	metrics.ApplicationsProcessed.WithLabelValues(string(decision.Outcome)).Inc()
	p.logger.Info("application processed", map[string]interface{}{
		"applicationId": app.ID,
		"outcome":       string(decision.Outcome),
		"stages":        len(app.StageResults),
	})

	return &Result{
		Application:   app,
		Decision:      decision,
		Terms:         terms,
		Offer:         loanOffer,
		Notifications: notifications,
		AuditReport:   report,
		Indexed:       indexed,
		CompletedAt:   time.Now().UTC(),
	}, nil
}

func (p *Pipeline) runIntake(ctx context.Context, req *Request) (*intake.Output, error) {
	ctx, end := p.startSpan(ctx, "stage.intake")
	defer end()

	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.intake.Execute(sctx, &req.Input)
	if err != nil {
		p.observeStage(ctx, intake.StageName, models.VerdictError, time.Since(start))
		return nil, fmt.Errorf("intake rejected application: %w", err)
	}
	p.observeStage(ctx, intake.StageName, out.Verdict, time.Since(start))

	out.Application.AppendStageResult(models.StageResult{
		Stage:     intake.StageName,
		StageNum:  intake.StageNum,
		Verdict:   out.Verdict,
		Metrics:   map[string]interface{}{"checks": len(out.Checks)},
		Remarks:   out.Remarks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	p.narrate(ctx, &out.Application, intake.StageName, out.Remarks)
	return out, nil
}

func (p *Pipeline) runDocVerification(ctx context.Context, app *models.Application, customerID string) float64 {
	ctx, end := p.startSpan(ctx, "stage.doc_verification")
	defer end()

	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.docs.Execute(sctx, &verifydocs.Input{
		ApplicationID: app.ID,
		CustomerID:    customerID,
	})
	if err != nil {
		p.recordStageError(ctx, app, verifydocs.StageName, verifydocs.StageNum, sctx, err, time.Since(start))
		return 0
	}
	p.observeStage(ctx, verifydocs.StageName, out.Verdict, time.Since(start))

	app.AppendStageResult(models.StageResult{
		Stage:    verifydocs.StageName,
		StageNum: verifydocs.StageNum,
		Verdict:  out.Verdict,
		Metrics: map[string]interface{}{
			"documents":          len(out.Documents),
			"documentationScore": out.DocumentationScore,
		},
		Remarks:   out.Remarks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	p.narrate(ctx, app, verifydocs.StageName, out.Remarks)
	return out.DocumentationScore
}

func (p *Pipeline) runQualification(ctx context.Context, app *models.Application) *qualification.Output {
	ctx, end := p.startSpan(ctx, "stage.qualification")
	defer end()

	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.qualify.Execute(sctx, &qualification.Input{
		ApplicationID: app.ID,
		LoanAmount:    app.LoanAmount,
		ProductType:   app.ProductType,
		TenureYears:   app.TenureYears,
		Customer:      app.Customer,
	})
	if err != nil {
		p.recordStageError(ctx, app, qualification.StageName, qualification.StageNum, sctx, err, time.Since(start))
		return nil
	}

	verdict := models.VerdictPass
	switch out.Outcome {
	case models.QualificationConditional:
		verdict = models.VerdictConditional
	case models.QualificationNotQualified:
		verdict = models.VerdictFail
	}
	p.observeStage(ctx, qualification.StageName, verdict, time.Since(start))

	app.AppendStageResult(models.StageResult{
		Stage:    qualification.StageName,
		StageNum: qualification.StageNum,
		Verdict:  verdict,
		Metrics: map[string]interface{}{
			"outcome":      out.Outcome,
			"passedChecks": out.PassedChecks,
			"proposedEmi":  out.ProposedEMI,
		},
		Remarks:   out.Remarks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	p.narrate(ctx, app, qualification.StageName, out.Remarks)
	return out
}

// runParallelAssessment forks the credit and asset branches, waits for both,
// and appends their stage results in a fixed order so the trail stays
// deterministic.
func (p *Pipeline) runParallelAssessment(ctx context.Context, app *models.Application) (*creditassessment.Output, *assetvaluation.Output) {
	ctx, end := p.startSpan(ctx, "stage.parallel_assessment")
	defer end()

	var (
		wg        sync.WaitGroup
		creditOut *creditassessment.Output
		creditErr error
		creditDur time.Duration
		assetOut  *assetvaluation.Output
		assetErr  error
		assetDur  time.Duration
	)

	creditCtx, cancelCredit := context.WithTimeout(ctx, p.stageTimeout)
	assetCtx, cancelAsset := context.WithTimeout(ctx, p.stageTimeout)
	defer cancelCredit()
	defer cancelAsset()

	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		creditOut, creditErr = p.credit.Execute(creditCtx, &creditassessment.Input{
			ApplicationID: app.ID,
			LoanAmount:    app.LoanAmount,
			Customer:      app.Customer,
		})
		creditDur = time.Since(start)
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		assetOut, assetErr = p.asset.Execute(assetCtx, &assetvaluation.Input{
			ApplicationID: app.ID,
			LoanAmount:    app.LoanAmount,
			Collateral:    app.Collateral,
		})
		assetDur = time.Since(start)
	}()
	wg.Wait()

	if creditErr != nil {
		p.recordStageError(ctx, app, creditassessment.StageName, creditassessment.StageNum, creditCtx, creditErr, creditDur)
	} else {
		p.observeStage(ctx, creditassessment.StageName, creditOut.Verdict, creditDur)
		app.AppendStageResult(models.StageResult{
			Stage:    creditassessment.StageName,
			StageNum: creditassessment.StageNum,
			Verdict:  creditOut.Verdict,
			Metrics: map[string]interface{}{
				"riskScore":    creditOut.CreditRisk.RiskScore,
				"riskCategory": creditOut.CreditRisk.Category,
			},
			Remarks:   creditOut.Remarks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		p.narrate(ctx, app, creditassessment.StageName, creditOut.Remarks)
	}

	if assetErr != nil {
		p.recordStageError(ctx, app, assetvaluation.StageName, assetvaluation.StageNum, assetCtx, assetErr, assetDur)
	} else {
		p.observeStage(ctx, assetvaluation.StageName, assetOut.Verdict, assetDur)
		app.AppendStageResult(models.StageResult{
			Stage:    assetvaluation.StageName,
			StageNum: assetvaluation.StageNum,
			Verdict:  assetOut.Verdict,
			Metrics: map[string]interface{}{
				"assessedValue": assetOut.AssessedValue,
				"ltv":           assetOut.LTV.ActualLTV,
			},
			Remarks:   assetOut.Remarks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		p.narrate(ctx, app, assetvaluation.StageName, assetOut.Remarks)
	}

	return creditOut, assetOut
}

func (p *Pipeline) runUnderwriting(ctx context.Context, app *models.Application, docScore float64, qualOut *qualification.Output, creditOut *creditassessment.Output, assetOut *assetvaluation.Output) (models.Decision, *models.LoanTerms) {
	ctx, end := p.startSpan(ctx, "stage.underwriting")
	defer end()

	in := &underwriting.Input{
		ApplicationID:      app.ID,
		LoanAmount:         app.LoanAmount,
		ProductType:        app.ProductType,
		TenureYears:        app.TenureYears,
		Customer:           app.Customer,
		DocumentationScore: docScore,
	}
	if qualOut != nil {
		in.Qualification = underwriting.QualificationSummary{
			Outcome:  qualOut.Outcome,
			FOIR:     qualOut.FOIR,
			Capacity: qualOut.Capacity,
		}
	}
	if creditOut != nil {
		in.Credit = underwriting.CreditSummary{
			Verdict:         creditOut.Verdict,
			CreditRisk:      creditOut.CreditRisk,
			IncomeStability: creditOut.IncomeStability,
		}
	}
	if assetOut != nil {
		in.Asset = underwriting.AssetSummary{
			Verdict:        assetOut.Verdict,
			AssessedValue:  assetOut.AssessedValue,
			LTV:            assetOut.LTV,
			CollateralRisk: assetOut.CollateralRisk,
		}
	}

	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.underwrite.Execute(sctx, in)
	if err != nil {
		p.recordStageError(ctx, app, underwriting.StageName, underwriting.StageNum, sctx, err, time.Since(start))
		return models.Decision{
			Outcome:   models.DecisionReferred,
			Rationale: "Underwriting could not complete; referred for manual review.",
			Authority: "Credit Committee",
		}, nil
	}

	verdict := models.VerdictPass
	if !out.Decision.IsPositive() {
		verdict = models.VerdictFail
	}
	p.observeStage(ctx, underwriting.StageName, verdict, time.Since(start))

	app.AppendStageResult(models.StageResult{
		Stage:    underwriting.StageName,
		StageNum: underwriting.StageNum,
		Verdict:  verdict,
		Metrics: map[string]interface{}{
			"outcome":       string(out.Decision.Outcome),
			"combinedScore": out.CombinedRisk.CombinedScore,
			"violations":    out.Violations,
		},
		Remarks:   out.Remarks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	p.narrate(ctx, app, underwriting.StageName, out.Remarks)
	return out.Decision, out.Terms
}

func (p *Pipeline) runOffer(ctx context.Context, app *models.Application, decision models.Decision, terms *models.LoanTerms) *offer.LoanOffer {
	ctx, end := p.startSpan(ctx, "stage.offer_generation")
	defer end()

	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.offer.Execute(sctx, &offer.Input{
		ApplicationID: app.ID,
		CustomerName:  app.CustomerName,
		ProductType:   app.ProductType,
		Decision:      decision,
		Terms:         terms,
	})
	if err != nil {
		p.recordStageError(ctx, app, offer.StageName, offer.StageNum, sctx, err, time.Since(start))
		return nil
	}

	verdict := models.VerdictPass
	if !out.Generated {
		verdict = models.VerdictPending
	}
	p.observeStage(ctx, offer.StageName, verdict, time.Since(start))

	app.AppendStageResult(models.StageResult{
		Stage:     offer.StageName,
		StageNum:  offer.StageNum,
		Verdict:   verdict,
		Metrics:   map[string]interface{}{"generated": out.Generated},
		Remarks:   out.Remarks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	p.narrate(ctx, app, offer.StageName, out.Remarks)
	return out.Offer
}

func (p *Pipeline) runCommunication(ctx context.Context, app *models.Application, decision models.Decision, loanOffer *offer.LoanOffer) []communication.NotificationRecord {
	ctx, end := p.startSpan(ctx, "stage.communication")
	defer end()

	in := &communication.Input{
		ApplicationID: app.ID,
		CustomerName:  app.CustomerName,
		Email:         app.Email,
		Contact:       app.Contact,
		Decision:      decision,
	}
	if loanOffer != nil {
		in.OfferSummary = &communication.OfferSummary{
			ApprovedAmount: loanOffer.Terms.ApprovedAmount,
			InterestRate:   loanOffer.Terms.InterestRate,
			TenureMonths:   loanOffer.Terms.TenureMonths,
			EMI:            loanOffer.Terms.EMI,
			ValidUntil:     loanOffer.ValidUntil.Format("2006-01-02"),
		}
	}

	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.comms.Execute(sctx, in)
	if err != nil {
		p.recordStageError(ctx, app, communication.StageName, communication.StageNum, sctx, err, time.Since(start))
		return nil
	}
	p.observeStage(ctx, communication.StageName, models.VerdictPass, time.Since(start))

	app.AppendStageResult(models.StageResult{
		Stage:     communication.StageName,
		StageNum:  communication.StageNum,
		Verdict:   models.VerdictPass,
		Metrics:   map[string]interface{}{"delivered": out.Delivered},
		Remarks:   out.Remarks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	p.narrate(ctx, app, communication.StageName, out.Remarks)
	return out.Notifications
}

func (p *Pipeline) runAudit(ctx context.Context, app *models.Application, decision models.Decision, terms *models.LoanTerms) (*audit.Report, bool) {
	ctx, end := p.startSpan(ctx, "stage.audit")
	defer end()

	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.audit.Execute(sctx, &audit.Input{
		Application: *app,
		Decision:    decision,
		Terms:       terms,
	})
	if err != nil {
		p.recordStageError(ctx, app, audit.StageName, audit.StageNum, sctx, err, time.Since(start))
		return nil, false
	}
	p.observeStage(ctx, audit.StageName, models.VerdictPass, time.Since(start))

	app.AppendStageResult(models.StageResult{
		Stage:     audit.StageName,
		StageNum:  audit.StageNum,
		Verdict:   models.VerdictPass,
		Metrics:   map[string]interface{}{"indexed": out.Indexed},
		Remarks:   out.Remarks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return out.Report, out.Indexed
}

// recordStageError appends an ERROR verdict for a stage that could not
// produce a result. Timeouts get the dedicated error code so the trail shows
// why the stage never answered.
func (p *Pipeline) recordStageError(ctx context.Context, app *models.Application, stage string, stageNum int, sctx context.Context, err error, dur time.Duration) {
	remarks := err.Error()
	if sctx.Err() == context.DeadlineExceeded {
		remarks = errors.NewStageTimeoutError(stage).Error()
	}

	p.logger.WithError(err).Error("stage failed", map[string]interface{}{
		"applicationId": app.ID,
		"stage":         stage,
	})
	p.observeStage(ctx, stage, models.VerdictError, dur)

	app.AppendStageResult(models.StageResult{
		Stage:     stage,
		StageNum:  stageNum,
		Verdict:   models.VerdictError,
		Remarks:   remarks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *Pipeline) observeStage(ctx context.Context, stage, verdict string, dur time.Duration) {
	metrics.StageCompleted.WithLabelValues(stage, verdict).Inc()
	metrics.StageDuration.WithLabelValues(stage).Observe(dur.Seconds())
	if p.obs != nil {
		p.obs.RecordStageProcessed(ctx, stage, verdict)
		p.obs.RecordStageDuration(ctx, stage, dur)
	}
}

func (p *Pipeline) startSpan(ctx context.Context, name string) (context.Context, func()) {
	if p.obs == nil {
		return ctx, func() {}
	}
	return p.obs.StartSpan(ctx, name)
}

// narrate asks the completion collaborator for a one-line narration of the
// stage outcome and records the exchange, dispatching any tool calls the
// collaborator requests.
func (p *Pipeline) narrate(ctx context.Context, app *models.Application, stage, remarks string) {
	if p.completion == nil {
		return
	}

	req := &completion.Request{
		Instructions: fmt.Sprintf("Summarize the %s stage outcome for the applicant file in one sentence.", stage),
		Messages: []completion.Message{
			{Role: "user", Content: remarks},
		},
	}
	if p.tools != nil {
		req.Tools = p.tools.Schemas()
	}

	resp, err := p.completion.Complete(ctx, req)
	if err != nil {
		p.logger.WithError(err).Warn("stage narration unavailable", map[string]interface{}{
			"applicationId": app.ID,
			"stage":         stage,
		})
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	app.ConversationLog = append(app.ConversationLog, models.ConversationTurn{
		Stage:     stage,
		Role:      "agent",
		Content:   resp.Text,
		Timestamp: now,
	})

	for _, call := range resp.ToolCalls {
		if p.tools == nil {
			break
		}
		turn := models.ConversationTurn{
			Stage:     stage,
			Role:      "tool",
			ToolName:  string(call.Tool),
			Timestamp: now,
		}
		result, err := p.tools.Dispatch(ctx, call.Tool, call.Arguments)
		if err != nil {
			turn.Content = err.Error()
		} else if body, merr := json.Marshal(result); merr == nil {
			turn.Content = string(body)
		}
		app.ConversationLog = append(app.ConversationLog, turn)
	}
}
