package handlers

import (
	"context"
	"errors"
	"ledger-rules/src/models"
	"ledger-rules/src/rules"
	"ledger-rules/src/util"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

const maxRuleListLimit = 500

func CreateRule(engine *rules.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft models.RuleDraft
		if err := decodeBody(r, &draft, false); err != nil {
			log.Errorf("Failed to decode create rule request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		created, err := engine.Rules.Create(r.Context(), draft)
		if err != nil {
			log.Errorf("Failed to create rule: %v", err)
			writeError(w, err, "failed to create rule")
			return
		}
		log.Infof("Created rule id %d, name %s by %s", created.ID, created.Name, actor(r))
		writeJSON(w, http.StatusCreated, created)
	}
}

func GetAllRules(engine *rules.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := util.ParseInt(r.URL.Query().Get("limit"), 0)
		if limit > maxRuleListLimit {
			limit = maxRuleListLimit
		}
		offset := max(util.ParseInt(r.URL.Query().Get("offset"), 0), 0)
		list, err := engine.Rules.List(r.Context(), limit, offset)
		if err != nil {
			log.Errorf("Failed to get rules: %v", err)
			writeError(w, err, "failed to get rules")
			return
		}
		if list == nil {
			list = []models.Rule{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"rules": list})
	}
}

func GetRuleByID(engine *rules.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, ok := idParam(r, "rule_id")
		if !ok {
			log.Errorf("Invalid rule id param: %s", chi.URLParam(r, "rule_id"))
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		rule, err := engine.Rules.Get(r.Context(), ruleID)
		if err != nil {
			log.Errorf("Rule id %d not found: %v", ruleID, err)
			writeError(w, err, "failed to get rule")
			return
		}
		writeJSON(w, http.StatusOK, rule)
	}
}

func UpdateRule(engine *rules.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, ok := idParam(r, "rule_id")
		if !ok {
			log.Errorf("Invalid rule id param: %s", chi.URLParam(r, "rule_id"))
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		var draft models.RuleDraft
		if err := decodeBody(r, &draft, false); err != nil {
			log.Errorf("Failed to decode update rule request body for rule %d: %v", ruleID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		updated, err := engine.Rules.Update(r.Context(), ruleID, draft)
		if err != nil {
			log.Errorf("Failed to update rule id %d: %v", ruleID, err)
			writeError(w, err, "failed to update rule")
			return
		}
		log.Infof("Updated rule id %d by %s", updated.ID, actor(r))
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteRule(engine *rules.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, ok := idParam(r, "rule_id")
		if !ok {
			log.Errorf("Invalid rule id param: %s", chi.URLParam(r, "rule_id"))
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		if err := engine.Rules.Delete(r.Context(), ruleID); err != nil {
			log.Errorf("Failed to delete rule id %d: %v", ruleID, err)
			writeError(w, err, "failed to delete rule")
			return
		}
		log.Infof("Deleted rule id %d by %s", ruleID, actor(r))
		writeJSON(w, http.StatusOK, map[string]string{"message": "rule deleted"})
	}
}

// ToggleRule sets is_enabled from the body, or flips it when the body does
// not carry one.
func ToggleRule(engine *rules.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, ok := idParam(r, "rule_id")
		if !ok {
			log.Errorf("Invalid rule id param: %s", chi.URLParam(r, "rule_id"))
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		var req struct {
			IsEnabled *models.Value `json:"is_enabled"`
		}
		if err := decodeBody(r, &req, true); err != nil {
			log.Errorf("Failed to decode toggle request body for rule %d: %v", ruleID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		current, err := engine.Rules.Get(r.Context(), ruleID)
		if err != nil {
			log.Errorf("Rule id %d not found: %v", ruleID, err)
			writeError(w, err, "failed to toggle rule")
			return
		}
		enabled := !current.IsEnabled
		if req.IsEnabled != nil {
			enabled = util.ParseBool(req.IsEnabled.String(), enabled)
		}
		rule, err := engine.Rules.Toggle(r.Context(), ruleID, enabled)
		if err != nil {
			log.Errorf("Failed to toggle rule id %d: %v", ruleID, err)
			writeError(w, err, "failed to toggle rule")
			return
		}
		log.Infof("Rule id %d is_enabled set to %t by %s", ruleID, rule.IsEnabled, actor(r))
		writeJSON(w, http.StatusOK, rule)
	}
}

func TestRule(engine *rules.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, ok := idParam(r, "rule_id")
		if !ok {
			log.Errorf("Invalid rule id param: %s", chi.URLParam(r, "rule_id"))
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		var params util.FilterParams
		if err := decodeBody(r, &params, true); err != nil {
			log.Errorf("Failed to decode test filter for rule %d: %v", ruleID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		result, err := engine.Batch.Test(r.Context(), ruleID, params.EntryFilter())
		if err != nil {
			log.Errorf("Failed to test rule id %d: %v", ruleID, err)
			writeError(w, err, "failed to test rule")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func ApplyRule(engine *rules.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, ok := idParam(r, "rule_id")
		if !ok {
			log.Errorf("Invalid rule id param: %s", chi.URLParam(r, "rule_id"))
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		var params util.FilterParams
		if err := decodeBody(r, &params, true); err != nil {
			log.Errorf("Failed to decode apply filter for rule %d: %v", ruleID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		result, err := engine.Batch.Apply(r.Context(), ruleID, params.EntryFilter())
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Warnf("Apply of rule id %d cancelled after %d updates", ruleID, result.Updated)
			writeJSON(w, http.StatusOK, result)
			return
		}
		if err != nil {
			log.Errorf("Failed to apply rule id %d: %v", ruleID, err)
			writeError(w, err, "failed to apply rule")
			return
		}
		log.Infof("Rule id %d applied by %s: %d updated", ruleID, actor(r), result.Updated)
		writeJSON(w, http.StatusOK, result)
	}
}

func GetRuleLog(engine *rules.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, ok := idParam(r, "rule_id")
		if !ok {
			log.Errorf("Invalid rule id param: %s", chi.URLParam(r, "rule_id"))
			http.Error(w, "invalid rule id", http.StatusBadRequest)
			return
		}
		limit := util.ParseInt(r.URL.Query().Get("limit"), 0)
		executions, err := engine.Audit.Log(r.Context(), ruleID, limit)
		if err != nil {
			log.Errorf("Failed to get log for rule id %d: %v", ruleID, err)
			writeError(w, err, "failed to get rule log")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"executions": executions})
	}
}
