/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package server

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/herdwise/feedopt/pkg/errors"
	"github.com/herdwise/feedopt/pkg/herd"
	"github.com/herdwise/feedopt/pkg/loader"
)

// CowRecord is one cow in a ration request. DIM and Milk are optional; they
// are only needed when the run groups by that attribute.
type CowRecord struct {
	ID   string   `json:"id"`
	DMI  float64  `json:"dmi"`
	NEL  float64  `json:"nel"`
	DIM  *float64 `json:"dim,omitempty"`
	Milk *float64 `json:"milk,omitempty"`
}

// RationRequest is the body of POST /v1/rations. Config overrides the
// server's base run configuration field by field; omitted fields keep the
// base value.
type RationRequest struct {
	Cows   []CowRecord           `json:"cows"`
	Config *loader.RunConfigFile `json:"config,omitempty"`
}

// handleRations solves rations for the posted herd against the server's
// ingredient library.
func (s *Server) handleRations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]any{"method": r.Method})
		return
	}

	var req RationRequest
	body := http.MaxBytesReader(w, r.Body, s.config.MaxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			"Invalid request body", false, map[string]any{"error": err.Error()})
		return
	}
	if len(req.Cows) == 0 {
		s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			"Request must carry at least one cow", false, nil)
		return
	}

	cfg := &s.baseConfig
	if req.Config != nil {
		resolved, err := loader.ResolveRunConfig(s.baseConfig, req.Config)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
				"Invalid run configuration", false, map[string]any{"error": err.Error()})
			return
		}
		cfg = resolved
	}

	cows := make([]herd.Cow, len(req.Cows))
	for i, c := range req.Cows {
		cows[i] = herd.Cow{
			ID:         c.ID,
			DMI:        c.DMI,
			NEL:        c.NEL,
			DaysInMilk: deref(c.DIM),
			MilkYield:  deref(c.Milk),
		}
	}

	result, err := s.optimizer.Run(r.Context(), cows, s.library, *cfg)
	if err != nil {
		switch errors.CodeOf(err) {
		case errors.ErrCodeInvalidConfig,
			errors.ErrCodeInvalidGroupCount,
			errors.ErrCodeMissingCriterion,
			errors.ErrCodeUnknownForageIngredient,
			errors.ErrCodeIngredientNotInLibrary:
			s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
				err.Error(), false, nil)
		default:
			s.writeError(w, r, http.StatusInternalServerError, ErrCodeInternalError,
				"Failed to solve rations", true, map[string]any{"error": err.Error()})
		}
		return
	}

	// Solver verdicts are not transport errors: a run where every group is
	// infeasible still returns the result with its failures listed.
	respondJSON(w, http.StatusOK, result)
}

func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
