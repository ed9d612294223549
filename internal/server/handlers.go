// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	stderrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/validation"
	"loan-orchestrator/internal/crm"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/nlp"
	"loan-orchestrator/internal/sink"
	kyccheck "loan-orchestrator/internal/steps/kyc-check"
	"loan-orchestrator/internal/steps/underwrite"
)

const maxBodyBytes = 1 << 20

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{"error": err})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readLoanRequest validates the raw payload against the JSON schema before
// decoding, so malformed bodies fail with a precise message.
func (s *Server) readLoanRequest(r *http.Request) (*models.LoanRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, stderrors.NewInvalidRequestError("unable to read request body")
	}
	if err := validation.ValidateLoanRequestJSON(body); err != nil {
		return nil, stderrors.NewInvalidRequestError(err.Error())
	}

	var req models.LoanRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, stderrors.NewInvalidRequestError(err.Error())
	}
	return &req, nil
}

func (s *Server) handleOrchestrate(w http.ResponseWriter, r *http.Request) {
	req, err := s.readLoanRequest(r)
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}

	result, err := s.orch.Run(r.Context(), req)
	if err != nil {
		// A render fault still carries the computed decision; surface both.
		if stderrors.IsCode(err, stderrors.ErrCodePdfGenerationFailed) && result != nil {
			s.errs.WriteErrorWithExtra(w, err, map[string]interface{}{
				"run_id":   result.RunID,
				"decision": result.Decision,
				"kyc":      result.Kyc,
			})
			return
		}
		s.errs.WriteError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	req, err := s.readLoanRequest(r)
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errs.WriteError(w, stderrors.NewInvalidRequestError(err.Error()))
		return
	}

	profile, err := s.store.GetProfile(r.Context(), req.CustomerID)
	if err != nil {
		if errors.Is(err, crm.ErrProfileNotFound) {
			s.errs.WriteError(w, stderrors.NewProfileNotFoundError(req.CustomerID))
			return
		}
		s.errs.WriteError(w, stderrors.NewProfileStoreUnavailableError(err))
		return
	}

	out, err := s.uw.Execute(r.Context(), &underwrite.Input{Request: req, Profile: profile})
	if err != nil {
		s.errs.WriteError(w, stderrors.NewUnderwritingFailedError(err))
		return
	}
	dec := out.Decision

	s.auditAppend(r.Context(), dec.CustomerID,
		"apply_"+strings.ToLower(string(dec.Decision)), applyDetail(dec))

	s.respondJSON(w, http.StatusOK, dec)
}

func applyDetail(d *models.UnderwritingDecision) string {
	dti := "unknown"
	if d.DTIKnown {
		dti = d.DTI.String()
	}
	return fmt.Sprintf("credit:%d;emi:%s;dti:%s", d.CreditScore, d.EMI.StringFixed(2), dti)
}

func (s *Server) handleKyc(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	profile, err := s.store.GetProfile(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, crm.ErrProfileNotFound) {
			s.errs.WriteError(w, stderrors.NewProfileNotFoundError(customerID))
			return
		}
		s.errs.WriteError(w, stderrors.NewProfileStoreUnavailableError(err))
		return
	}

	out, err := s.kyc.Execute(r.Context(), &kyccheck.Input{Profile: profile})
	if err != nil {
		s.errs.WriteError(w, stderrors.NewKycCheckFailedError(err))
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"customer_id": customerID,
		"kyc":         out.Result,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	profile, err := s.store.GetProfile(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, crm.ErrProfileNotFound) {
			s.errs.WriteError(w, stderrors.NewProfileNotFoundError(customerID))
			return
		}
		s.errs.WriteError(w, stderrors.NewProfileStoreUnavailableError(err))
		return
	}

	s.respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&update); err != nil {
		s.errs.WriteError(w, stderrors.NewInvalidRequestError("invalid JSON body"))
		return
	}

	customerID, _ := update["customer_id"].(string)
	if customerID == "" {
		s.errs.WriteError(w, stderrors.NewInvalidRequestError("customer_id required"))
		return
	}

	fields := make(map[string]string, len(update))
	for k, v := range update {
		if k == "customer_id" {
			continue
		}
		fields[k] = fmt.Sprintf("%v", v)
	}

	if err := s.store.UpdateProfile(r.Context(), customerID, fields); err != nil {
		if errors.Is(err, crm.ErrProfileNotFound) {
			s.errs.WriteError(w, stderrors.NewProfileNotFoundError(customerID))
			return
		}
		s.errs.WriteError(w, stderrors.NewProfileStoreUnavailableError(err))
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"updated": update,
	})
}

func (s *Server) handleListIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListIDs(r.Context())
	if err != nil {
		s.errs.WriteError(w, stderrors.NewProfileStoreUnavailableError(err))
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(ids),
		"ids":   ids,
	})
}

func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	profile, err := s.store.GetProfile(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, crm.ErrProfileNotFound) {
			s.errs.WriteError(w, stderrors.NewProfileNotFoundError(customerID))
			return
		}
		s.errs.WriteError(w, stderrors.NewProfileStoreUnavailableError(err))
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"customer_id":  profile.CustomerID,
		"credit_score": crm.CreditScore(profile),
	})
}

// handleStatus reports the most recent audit action for a customer.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	rows, err := s.audit.ReadRecent(r.Context(), 0, "")
	if err != nil {
		s.errs.WriteError(w, stderrors.NewInternalError(err))
		return
	}
	for _, row := range rows {
		if row.CustomerID == customerID {
			s.respondJSON(w, http.StatusOK, map[string]interface{}{
				"customer_id": customerID,
				"ts":          row.Timestamp,
				"action":      row.Action,
				"data":        row.Data,
			})
			return
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"customer_id": customerID,
		"status":      "no record found",
	})
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	// Serve by basename only; traversal out of the documents dir is not a
	// lookup miss, it is a malformed request.
	if filename != filepath.Base(filename) || !strings.HasSuffix(filename, ".pdf") {
		s.errs.WriteError(w, stderrors.NewInvalidRequestError("invalid filename"))
		return
	}

	path := filepath.Join(s.cfg.Documents.Dir, filename)
	if _, err := os.Stat(path); err != nil {
		s.errs.WriteError(w, stderrors.NewDocumentNotFoundError(filename))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	action := r.URL.Query().Get("action")

	rows, err := s.audit.ReadRecent(r.Context(), 0, action)
	if err != nil {
		s.errs.WriteError(w, stderrors.NewInternalError(err))
		return
	}

	summary := sink.SummarizeAudit(rows)
	limited := rows
	if limit > 0 && len(limited) > limit {
		limited = limited[:limit]
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":             len(rows),
		"summary_by_action": summary.ByAction,
		"decision_counts":   summary.DecisionCounts,
		"rows":              limited,
	})
}

func (s *Server) handleMetricsRecords(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)

	rows, err := s.metrics.ReadRecent(r.Context(), 0)
	if err != nil {
		s.errs.WriteError(w, stderrors.NewInternalError(err))
		return
	}

	summary := sink.SummarizeDecisions(rows)
	limited := rows
	if limit > 0 && len(limited) > limit {
		limited = limited[:limit]
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(rows),
		"summary": summary,
		"rows":    limited,
	})
}

// handleEvents logs frontend events into the audit trail. Always succeeds
// from the caller's point of view.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var evt map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&evt); err != nil {
		s.errs.WriteError(w, stderrors.NewInvalidRequestError("invalid JSON body"))
		return
	}

	customerID, _ := evt["customer_id"].(string)
	if customerID == "" {
		customerID = "UNKNOWN"
	}
	action, _ := evt["event"].(string)
	if action == "" {
		action = "frontend_event"
	}

	detail := make(map[string]interface{}, len(evt))
	for k, v := range evt {
		if k == "ts" || k == "customer_id" || k == "event" {
			continue
		}
		detail[k] = v
	}
	data, _ := json.Marshal(detail)

	s.auditAppend(r.Context(), customerID, action, string(data))
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type quoteRequest struct {
	Message    string `json:"message"`
	CustomerID string `json:"cust_id"`
}

// handleQuote turns free-form chat text into an EMI estimate plus tenure
// options. Extraction is best-effort; when no amount is found the reply asks
// for one instead of guessing.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.errs.WriteError(w, stderrors.NewInvalidRequestError("invalid JSON body"))
		return
	}

	fields := nlp.ExtractLoanFields(req.Message)

	if fields.Hesitation {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"reply":         "No worries, we can try a longer tenure or a lower amount to reduce the EMI. Want me to show options?",
			"quick_replies": []string{"Show lower EMI", "Show longer tenure options", "Keep same plan"},
		})
		return
	}

	// Profile lookup is optional context for the reply, never a hard failure.
	var profile *models.CustomerProfile
	if req.CustomerID != "" {
		profile, _ = s.store.GetProfile(r.Context(), req.CustomerID)
	}

	if fields.Amount == nil {
		reply := "Tell me how much you need (for example: 400000 or 5 lakh) and why, and I'll show EMI options."
		if profile != nil {
			if income, ok := crm.IncomeMonthly(profile); ok {
				reply = fmt.Sprintf("I can see your income on file: %s per month. Tell me how much loan you need (e.g., 400000) and I will show EMI options.",
					income.StringFixed(0))
			}
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"reply":         reply,
			"quick_replies": []string{"Check pre-approval", "Show EMI options", "Ask another question"},
		})
		return
	}

	amount := *fields.Amount
	rate := s.uwCfg.AnnualRatePercent
	tenure := s.cfg.Underwriting.DefaultTenure
	if tenure <= 0 {
		tenure = 36
	}
	if fields.TenureMonths != nil && *fields.TenureMonths > 0 {
		tenure = *fields.TenureMonths
	}

	estEMI, err := underwrite.ComputeEMI(amount, rate, tenure)
	if err != nil {
		s.errs.WriteError(w, stderrors.NewInvalidRequestError(err.Error()))
		return
	}
	est := underwrite.RoundQuote(estEMI)

	purpose := fields.Purpose
	if purpose == "" {
		purpose = "general"
	}

	reply := fmt.Sprintf("I estimate an EMI of %s/month for a loan of %s over %d months at %s%% p.a.",
		est.String(), amount.StringFixed(0), tenure, rate.String())

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"decision": map[string]interface{}{
			"intent":  "loan_interest",
			"purpose": purpose,
			"loan_request": map[string]interface{}{
				"loan_amount":   amount,
				"tenure_months": tenure,
				"rate":          rate,
				"est_emi":       est,
			},
		},
		"reply":         reply,
		"quick_replies": []string{"Check pre-approval", "Show EMI options", "Change tenure"},
		"emi_options":   underwrite.EMIOptions(amount, rate, s.uwCfg.QuoteTenures),
	})
}

// auditAppend is best-effort; sink outages never fail the request.
func (s *Server) auditAppend(ctx context.Context, customerID, action, data string) {
	rec := models.AuditRecord{
		Timestamp:  time.Now().UTC(),
		CustomerID: customerID,
		Action:     action,
		Data:       data,
	}
	if err := s.audit.Append(ctx, rec); err != nil {
		s.logger.Warn("audit append failed", map[string]interface{}{
			"action": action,
			"error":  err,
		})
	}
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
