package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/zafrem/data-detector/detect"
	"github.com/zafrem/data-detector/hint"
	"github.com/zafrem/data-detector/internal/otel"
	"github.com/zafrem/data-detector/rules"
	"github.com/zafrem/data-detector/token"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.startTime).String(),
	}
	if s.engine != nil {
		reg := s.engine.Registry()
		resp["rules"] = reg.Len()
		resp["registry_version"] = reg.Version()
	}
	writeJSON(w, http.StatusOK, resp)
}

// scanOptions translates wire-level request fields into engine options.
func scanOptions(namespaces []string, h *hint.Context, allowOverlaps, includeRaw, stopOnFirst bool) []detect.FindOption {
	var opts []detect.FindOption
	if len(namespaces) > 0 {
		opts = append(opts, detect.InNamespaces(namespaces...))
	}
	if h != nil {
		opts = append(opts, detect.WithHint(*h))
	}
	if allowOverlaps {
		opts = append(opts, detect.AllowOverlaps())
	}
	if includeRaw {
		opts = append(opts, detect.IncludeRaw())
	}
	if stopOnFirst {
		opts = append(opts, detect.StopOnFirst())
	}
	return opts
}

type findRequest struct {
	Text          string        `json:"text"`
	Namespaces    []string      `json:"namespaces,omitempty"`
	Hint          *hint.Context `json:"hint,omitempty"`
	AllowOverlaps bool          `json:"allow_overlaps,omitempty"`
	IncludeRaw    bool          `json:"include_raw,omitempty"`
	StopOnFirst   bool          `json:"stop_on_first,omitempty"`
}

func (req *findRequest) options() []detect.FindOption {
	return scanOptions(req.Namespaces, req.Hint, req.AllowOverlaps, req.IncludeRaw, req.StopOnFirst)
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	var req findRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}
	res, err := s.engine.Find(r.Context(), req.Text, req.options()...)
	if err != nil {
		var unknown *rules.UnknownRuleError
		if errors.As(err, &unknown) {
			writeError(w, http.StatusBadRequest, "unknown_rule", err.Error())
			return
		}
		log.Error().Err(err).Func(otel.LogTraceFields(r.Context())).Msg("find_error")
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	scansTotal.Add(r.Context(), 1)
	matchesFound.Add(r.Context(), int64(len(res.Matches)))
	trace.SpanFromContext(r.Context()).SetAttributes(
		otel.ScanAttributes(len(req.Text), len(res.Matches), req.Namespaces)...)
	writeJSON(w, http.StatusOK, res)
}

type validateRequest struct {
	Text   string `json:"text"`
	RuleID string `json:"rule_id"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if req.RuleID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "rule_id is required")
		return
	}
	res, err := s.engine.Validate(r.Context(), req.Text, req.RuleID)
	if err != nil {
		var unknown *rules.UnknownRuleError
		if errors.As(err, &unknown) {
			writeError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type redactRequest struct {
	Text       string        `json:"text"`
	Strategy   string        `json:"strategy,omitempty"`
	Namespaces []string      `json:"namespaces,omitempty"`
	Hint       *hint.Context `json:"hint,omitempty"`
	IncludeRaw bool          `json:"include_raw,omitempty"`
}

func (req *redactRequest) options() []detect.FindOption {
	return scanOptions(req.Namespaces, req.Hint, false, req.IncludeRaw, false)
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	var req redactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}
	strategy := detect.Strategy(req.Strategy)
	if req.Strategy == "" {
		strategy = detect.StrategyMask
	}
	if !strategy.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_request", "strategy must be mask, hash, tokenize, or fake")
		return
	}
	res, err := s.engine.Redact(r.Context(), req.Text, strategy, req.options()...)
	if err != nil {
		var unknown *rules.UnknownRuleError
		if errors.As(err, &unknown) {
			writeError(w, http.StatusBadRequest, "unknown_rule", err.Error())
			return
		}
		log.Error().Err(err).Func(otel.LogTraceFields(r.Context())).Msg("redact_error")
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	redactionsTotal.Add(r.Context(), 1)
	trace.SpanFromContext(r.Context()).SetAttributes(
		otel.RedactAttributes(string(strategy), res.Count)...)
	writeJSON(w, http.StatusOK, res)
}

type tokenizeRequest struct {
	Text       string        `json:"text"`
	Namespaces []string      `json:"namespaces,omitempty"`
	Hint       *hint.Context `json:"hint,omitempty"`
}

func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request) {
	if s.tokenizer == nil {
		writeError(w, http.StatusServiceUnavailable, "disabled", "tokenization is disabled")
		return
	}
	var req tokenizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}
	out, m, err := s.tokenizer.Tokenize(r.Context(), req.Text, scanOptions(req.Namespaces, req.Hint, false, false, false)...)
	if err != nil {
		var unknown *rules.UnknownRuleError
		if errors.As(err, &unknown) {
			writeError(w, http.StatusBadRequest, "unknown_rule", err.Error())
			return
		}
		log.Error().Err(err).Func(otel.LogTraceFields(r.Context())).Msg("tokenize_error")
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"text":   out,
		"tokens": m.Pairs(),
		"digest": m.Digest(),
		"count":  m.Len(),
	})
}

type detokenizeRequest struct {
	Text    string            `json:"text"`
	Tokens  map[string]string `json:"tokens"`
	Digest  string            `json:"digest,omitempty"`
	Partial bool              `json:"partial,omitempty"`
}

func (s *Server) handleDetokenize(w http.ResponseWriter, r *http.Request) {
	var req detokenizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if len(req.Tokens) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "tokens are required")
		return
	}
	m := token.FromPairs(req.Tokens)
	if req.Digest != "" && !m.Verify(req.Digest) {
		writeError(w, http.StatusConflict, "digest_mismatch", "token map does not match the supplied digest")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"text": token.Detokenize(req.Text, m, req.Partial),
	})
}

type ruleInfo struct {
	ID          string         `json:"id"`
	Category    rules.Category `json:"category"`
	Severity    rules.Severity `json:"severity"`
	Priority    int            `json:"priority"`
	HasVerify   bool           `json:"has_verify"`
	Description string         `json:"description,omitempty"`
	Expression  string         `json:"expression,omitempty"`
}

func (s *Server) handleRulesList(w http.ResponseWriter, r *http.Request) {
	reg := s.engine.Registry()
	withExpr := r.URL.Query().Get("expressions") == "true"

	var list []*rules.Rule
	if ns := r.URL.Query().Get("namespace"); ns != "" {
		list = reg.Namespace(ns)
	} else {
		for _, id := range reg.IDs() {
			if rule, ok := reg.Lookup(id); ok {
				list = append(list, rule)
			}
		}
	}

	infos := make([]ruleInfo, 0, len(list))
	for _, rule := range list {
		info := ruleInfo{
			ID:          rule.FullID(),
			Category:    rule.Category,
			Severity:    rule.Policy.Severity,
			Priority:    rule.Priority,
			HasVerify:   rule.VerifyName != "",
			Description: rule.Description,
		}
		if withExpr {
			info.Expression = rule.Expr.String()
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules":   infos,
		"count":   len(infos),
		"version": reg.Version(),
	})
}

func (s *Server) handleRulesReload(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "disabled", "rule reload requires a configured store")
		return
	}
	if err := s.store.Reload(); err != nil {
		var loadErr *rules.LoadError
		if errors.As(err, &loadErr) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":   "load_error",
				"message": loadErr.Error(),
				"file":    loadErr.File,
				"rule":    loadErr.Rule,
			})
			return
		}
		writeError(w, http.StatusConflict, "load_error", err.Error())
		return
	}
	reg := s.store.Snapshot()
	log.Info().Int("rules", reg.Len()).Int("version", reg.Version()).Msg("rules_reloaded")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "reloaded",
		"rules":   reg.Len(),
		"version": reg.Version(),
	})
}
