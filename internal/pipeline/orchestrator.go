// internal/pipeline/orchestrator.go
// Package pipeline sequences one loan application through KYC, underwriting
// and sanction-letter rendering. Runs are synchronous and strictly ordered;
// each step's output gates the next. No step is retried automatically.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	stderrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/metrics"
	"loan-orchestrator/internal/common/observability"
	"loan-orchestrator/internal/crm"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/sink"
	kyccheck "loan-orchestrator/internal/steps/kyc-check"
	notifydecision "loan-orchestrator/internal/steps/notify-decision"
	renderletter "loan-orchestrator/internal/steps/render-letter"
	"loan-orchestrator/internal/steps/underwrite"
)

// kycShortCircuitReason is the single reason attached when identity checks
// block underwriting. KYC failure lands on REFER, never REJECT.
const kycShortCircuitReason = "KYC checks failed or missing information"

// Step interfaces are narrow so tests can substitute fakes per step.
type KycChecker interface {
	Execute(ctx context.Context, input *kyccheck.Input) (*kyccheck.Output, error)
}

type Underwriter interface {
	Execute(ctx context.Context, input *underwrite.Input) (*underwrite.Output, error)
}

type Renderer interface {
	Execute(ctx context.Context, input *renderletter.Input) (*renderletter.Output, error)
}

type Notifier interface {
	Execute(ctx context.Context, input *notifydecision.Input) (*notifydecision.Output, error)
}

type Orchestrator struct {
	store    crm.Store
	kyc      KycChecker
	uw       Underwriter
	renderer Renderer
	notifier Notifier // optional
	audit    sink.AuditSink
	metrics  sink.MetricsSink
	obs      *observability.Observability // optional
	logger   logger.Logger
}

func NewOrchestrator(
	store crm.Store,
	kyc KycChecker,
	uw Underwriter,
	renderer Renderer,
	notifier Notifier,
	auditSink sink.AuditSink,
	metricsSink sink.MetricsSink,
	obs *observability.Observability,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:    store,
		kyc:      kyc,
		uw:       uw,
		renderer: renderer,
		notifier: notifier,
		audit:    auditSink,
		metrics:  metricsSink,
		obs:      obs,
		logger:   log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
}

// Run executes the full pipeline for one request. The returned result may be
// accompanied by a RenderFault error: an APPROVE whose letter failed still
// carries the decision, callers must not lose it.
func (o *Orchestrator) Run(ctx context.Context, req *models.LoanRequest) (*models.OrchestrationResult, error) {
	start := time.Now()

	// Validation happens before any side effect. An invalid request leaves
	// no audit trace because nothing ran.
	if req == nil || req.CustomerID == "" {
		o.recordRun(ctx, "invalid_request", start)
		return nil, stderrors.NewInvalidRequestError("missing customer_id in payload")
	}
	if err := req.Validate(); err != nil {
		o.recordRun(ctx, "invalid_request", start)
		return nil, stderrors.NewInvalidRequestError(err.Error())
	}

	result := &models.OrchestrationResult{
		RunID:      uuid.New().String(),
		CustomerID: req.CustomerID,
		State:      models.StateStarted,
	}

	log := o.logger.WithFields(map[string]interface{}{
		"runId":      result.RunID,
		"customerId": req.CustomerID,
	})

	profile, err := o.store.GetProfile(ctx, req.CustomerID)
	if err != nil {
		o.recordRun(ctx, "profile_error", start)
		if errors.Is(err, crm.ErrProfileNotFound) {
			return nil, stderrors.NewProfileNotFoundError(req.CustomerID)
		}
		return nil, stderrors.NewProfileStoreUnavailableError(err)
	}

	// KYC is recomputed on every run from the freshly fetched profile, never
	// reused from an earlier call.
	result.State = models.StateKycRunning
	kycStart := time.Now()
	kycOut, err := o.kyc.Execute(ctx, &kyccheck.Input{Profile: profile})
	metrics.PipelineStepDuration.WithLabelValues(kyccheck.StepName).Observe(time.Since(kycStart).Seconds())
	if err != nil {
		o.auditAppend(ctx, req.CustomerID, "orchestrate_kyc_error", err.Error())
		o.recordRun(ctx, "kyc_error", start)
		result.State = models.StateError
		return nil, stderrors.NewKycCheckFailedError(err)
	}
	result.Kyc = &kycOut.Result

	if kycOut.Result.Failed() {
		result.State = models.StateKycFailed
		result.ShortCircuit = &models.ShortCircuitDecision{
			Decision: models.DecisionRefer,
			Reasons:  []string{kycShortCircuitReason},
		}

		kycJSON, _ := json.Marshal(kycOut.Result)
		o.auditAppend(ctx, req.CustomerID, "orchestrate_kyc_fail", string(kycJSON))
		metrics.Decisions.WithLabelValues(string(models.DecisionRefer)).Inc()
		o.metricsAppend(ctx, req.CustomerID, models.MetricsRecord{
			Timestamp:    time.Now().UTC(),
			CustomerID:   req.CustomerID,
			Decision:     models.DecisionRefer,
			LoanAmount:   req.LoanAmount,
			TenureMonths: req.TenureMonths,
		})
		o.recordRun(ctx, "kyc_short_circuit", start)

		log.Info("kyc failed, short-circuiting to refer", map[string]interface{}{
			"missing": kycOut.Result.MissingFields,
			"issues":  kycOut.Result.Issues,
		})

		result.State = models.StateComplete
		return result, nil
	}
	result.State = models.StateKycPassed

	result.State = models.StateUnderwritingRunning
	uwStart := time.Now()
	uwOut, err := o.uw.Execute(ctx, &underwrite.Input{Request: req, Profile: profile})
	metrics.PipelineStepDuration.WithLabelValues(underwrite.StepName).Observe(time.Since(uwStart).Seconds())
	if err != nil {
		o.auditAppend(ctx, req.CustomerID, "orchestrate_underwriting_error", err.Error())
		o.recordRun(ctx, "underwriting_error", start)
		result.State = models.StateError
		return nil, stderrors.NewUnderwritingFailedError(err)
	}
	decision := uwOut.Decision
	result.Decision = decision
	result.State = models.StateUnderwritingDone

	o.auditAppend(ctx, req.CustomerID, "apply_"+lowerDecision(decision.Decision), decisionDetail(decision))
	metrics.Decisions.WithLabelValues(string(decision.Decision)).Inc()

	var renderErr *stderrors.StandardError
	if decision.Decision == models.DecisionApprove {
		result.State = models.StateRenderingRunning
		renderStart := time.Now()
		renderOut, err := o.renderer.Execute(ctx, &renderletter.Input{Decision: decision, Profile: profile})
		metrics.PipelineStepDuration.WithLabelValues(renderletter.StepName).Observe(time.Since(renderStart).Seconds())
		if err != nil {
			o.auditAppend(ctx, req.CustomerID, "sanction_pdf_failed", err.Error())
			metrics.DocumentsRendered.WithLabelValues("failed").Inc()
			result.State = models.StateRenderFailed
			renderErr = stderrors.NewPdfGenerationFailedError(err)
			log.Error("sanction letter render failed", map[string]interface{}{"error": err})
		} else {
			result.Document = &renderOut.Document
			o.auditAppend(ctx, req.CustomerID, "sanction_pdf_generated", renderOut.Document.Filename)
			metrics.DocumentsRendered.WithLabelValues("generated").Inc()
			result.State = models.StateRendered
		}
	}

	o.metricsAppend(ctx, decision.CustomerID, models.NewMetricsRecord(decision))
	o.notify(ctx, decision, profile, result.Document)

	result.State = models.StateComplete
	if renderErr != nil {
		o.recordRun(ctx, "render_failed", start)
		// The decision survives the render fault; both travel back together.
		return result, renderErr
	}

	o.recordRun(ctx, "complete", start)
	return result, nil
}

// auditAppend writes one audit row, swallowing failure. A sink outage must
// never abort a run.
func (o *Orchestrator) auditAppend(ctx context.Context, customerID, action, data string) {
	rec := models.AuditRecord{
		Timestamp:  time.Now().UTC(),
		CustomerID: customerID,
		Action:     action,
		Data:       data,
	}
	if err := o.audit.Append(ctx, rec); err != nil {
		metrics.SinkFailures.WithLabelValues("audit").Inc()
		o.logger.Warn("audit append failed", map[string]interface{}{
			"action": action,
			"error":  err,
		})
	}
}

func (o *Orchestrator) metricsAppend(ctx context.Context, customerID string, rec models.MetricsRecord) {
	if err := o.metrics.Append(ctx, rec); err != nil {
		metrics.SinkFailures.WithLabelValues("metrics").Inc()
		o.auditAppend(ctx, customerID, "metrics_append_failed", err.Error())
	}
}

func (o *Orchestrator) notify(ctx context.Context, decision *models.UnderwritingDecision, profile *models.CustomerProfile, doc *models.DocumentHandle) {
	if o.notifier == nil {
		return
	}
	out, err := o.notifier.Execute(ctx, &notifydecision.Input{
		Decision: decision,
		Profile:  profile,
		Document: doc,
	})
	if err != nil {
		o.logger.Warn("notification step failed", map[string]interface{}{
			"customerId": decision.CustomerID,
			"error":      err,
		})
		return
	}
	if out.Status == notifydecision.StatusFailed {
		o.logger.Warn("notification delivery failed", map[string]interface{}{
			"customerId":     decision.CustomerID,
			"notificationId": out.NotificationID,
		})
	}
}

func (o *Orchestrator) recordRun(ctx context.Context, outcome string, start time.Time) {
	metrics.PipelineRuns.WithLabelValues(outcome).Inc()
	if o.obs != nil {
		o.obs.RecordRun(ctx, outcome)
		o.obs.RecordRunDuration(ctx, time.Since(start), outcome)
	}
}

func lowerDecision(d models.Decision) string {
	switch d {
	case models.DecisionApprove:
		return "approve"
	case models.DecisionRefer:
		return "refer"
	default:
		return "reject"
	}
}

func decisionDetail(d *models.UnderwritingDecision) string {
	dti := "unknown"
	if d.DTIKnown {
		dti = d.DTI.String()
	}
	return fmt.Sprintf("credit:%d;emi:%s;dti:%s", d.CreditScore, d.EMI.StringFixed(2), dti)
}
