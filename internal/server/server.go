// Package server exposes the advisor over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/diabetesmx/ada-advisor/internal/apperrors"
	"github.com/diabetesmx/ada-advisor/internal/domain"
	"github.com/diabetesmx/ada-advisor/internal/services"
)

// Server wires the services behind the HTTP routes.
type Server struct {
	store    domain.ProfileStore
	catalog  domain.CatalogProvider
	profiles *services.ProfileService
	evals    *services.EvaluationService
	bolus    *services.BolusService
	reports  *services.ReportService
}

func New(store domain.ProfileStore, cat domain.CatalogProvider,
	profiles *services.ProfileService, evals *services.EvaluationService,
	bolus *services.BolusService, reports *services.ReportService) *Server {
	return &Server{
		store:    store,
		catalog:  cat,
		profiles: profiles,
		evals:    evals,
		bolus:    bolus,
		reports:  reports,
	}
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", s.handleReadyz)

	api := router.Group("/api")
	{
		api.GET("/catalog", s.handleCatalog)
		api.POST("/evaluate", s.handleEvaluate)
		api.POST("/bolus", s.handleBolus)

		api.POST("/profiles", s.handleCreateProfile)
		api.GET("/profiles", s.handleListProfiles)
		api.GET("/profiles/:id", s.handleGetProfile)
		api.PUT("/profiles/:id", s.handleUpdateProfile)
		api.DELETE("/profiles/:id", s.handleDeleteProfile)
		api.GET("/profiles/:id/evaluation", s.handleProfileEvaluation)
		api.GET("/profiles/:id/report", s.handleProfileReport)
	}
	return router
}

func limitBodySize(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}

// profileRequest is the JSON shape for profile create/update and inline
// evaluation. Optional labs stay pointers so absent and zero are distinct.
type profileRequest struct {
	Name                string   `json:"name"`
	Age                 int      `json:"age"`
	Sex                 string   `json:"sex"`
	Diagnosis           string   `json:"diagnosis"`
	WeightKg            float64  `json:"weight_kg"`
	HeightCm            float64  `json:"height_cm"`
	A1cPct              *float64 `json:"a1c_pct"`
	TargetA1cPct        *float64 `json:"target_a1c_pct"`
	GlucoseUnit         string   `json:"glucose_unit"`
	FastingGlucose      *float64 `json:"fasting_glucose"`
	PostprandialGlucose *float64 `json:"postprandial_glucose"`
	SerumCreatinine     *float64 `json:"serum_creatinine"`
	UACR                *float64 `json:"uacr"`
	ASCVD               bool     `json:"ascvd"`
	HeartFailure        bool     `json:"heart_failure"`
	CKD                 bool     `json:"ckd"`
	CatabolicSymptoms   bool     `json:"catabolic_symptoms"`
	HypoglycemiaRisk    bool     `json:"hypoglycemia_risk"`
	MedicationPlan      string   `json:"medication_plan"`
	Notes               string   `json:"notes"`
}

func (r profileRequest) toDomain() domain.PatientProfile {
	return domain.PatientProfile{
		Name:                r.Name,
		Age:                 r.Age,
		Sex:                 domain.Sex(r.Sex),
		Diagnosis:           domain.DiagnosisType(r.Diagnosis),
		WeightKg:            r.WeightKg,
		HeightCm:            r.HeightCm,
		A1cPct:              r.A1cPct,
		TargetA1cPct:        r.TargetA1cPct,
		GlucoseUnit:         domain.GlucoseUnit(r.GlucoseUnit),
		FastingGlucose:      r.FastingGlucose,
		PostprandialGlucose: r.PostprandialGlucose,
		SerumCreatinine:     r.SerumCreatinine,
		UACR:                r.UACR,
		ASCVD:               r.ASCVD,
		HeartFailure:        r.HeartFailure,
		CKD:                 r.CKD,
		CatabolicSymptoms:   r.CatabolicSymptoms,
		HypoglycemiaRisk:    r.HypoglycemiaRisk,
		MedicationPlan:      r.MedicationPlan,
		Notes:               r.Notes,
	}
}

type profileResponse struct {
	profileRequest
	ID        uint   `json:"id"`
	UpdatedAt string `json:"updated_at"`
}

func toResponse(p domain.PatientProfile) profileResponse {
	return profileResponse{
		profileRequest: profileRequest{
			Name:                p.Name,
			Age:                 p.Age,
			Sex:                 string(p.Sex),
			Diagnosis:           string(p.Diagnosis),
			WeightKg:            p.WeightKg,
			HeightCm:            p.HeightCm,
			A1cPct:              p.A1cPct,
			TargetA1cPct:        p.TargetA1cPct,
			GlucoseUnit:         string(p.GlucoseUnit),
			FastingGlucose:      p.FastingGlucose,
			PostprandialGlucose: p.PostprandialGlucose,
			SerumCreatinine:     p.SerumCreatinine,
			UACR:                p.UACR,
			ASCVD:               p.ASCVD,
			HeartFailure:        p.HeartFailure,
			CKD:                 p.CKD,
			CatabolicSymptoms:   p.CatabolicSymptoms,
			HypoglycemiaRisk:    p.HypoglycemiaRisk,
			MedicationPlan:      p.MedicationPlan,
			Notes:               p.Notes,
		},
		ID:        p.ID,
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleReadyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "ok", "catalog_fallback": s.catalog.Fallback()})
}

func (s *Server) handleCatalog(c *gin.Context) {
	entries := s.catalog.Entries()
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"class":        e.Class,
			"name":         e.Name,
			"cost_tier":    e.CostTier,
			"availability": e.Availability,
			"renal_rule":   e.RenalRule,
			"notes":        e.Notes,
			"institution":  e.Institution,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": out, "fallback": s.catalog.Fallback()})
}

func (s *Server) handleEvaluate(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	profile := req.toDomain()
	services.NormalizeGlucose(&profile)

	eval, err := s.evals.Evaluate(c.Request.Context(), profile)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

func (s *Server) handleBolus(c *gin.Context) {
	var req struct {
		domain.BolusInput
		ProfileID uint `json:"profile_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var profile *domain.PatientProfile
	if req.ProfileID != 0 {
		var err error
		profile, err = s.profiles.GetProfile(c.Request.Context(), req.ProfileID)
		if err != nil {
			s.renderError(c, err)
			return
		}
	}

	result, err := s.bolus.Compute(c.Request.Context(), req.BolusInput, profile)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCreateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	profile := req.toDomain()
	if err := s.profiles.SaveProfile(c.Request.Context(), &profile); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(profile))
}

func (s *Server) handleListProfiles(c *gin.Context) {
	profiles, err := s.profiles.ListProfiles(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"profiles": out})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	profile, ok := s.loadProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toResponse(*profile))
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	profile := req.toDomain()
	profile.ID = id
	if err := s.profiles.SaveProfile(c.Request.Context(), &profile); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(profile))
}

func (s *Server) handleDeleteProfile(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.profiles.DeleteProfile(c.Request.Context(), id); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleProfileEvaluation(c *gin.Context) {
	profile, ok := s.loadProfile(c)
	if !ok {
		return
	}
	eval, err := s.evals.Evaluate(c.Request.Context(), *profile)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

func (s *Server) handleProfileReport(c *gin.Context) {
	profile, ok := s.loadProfile(c)
	if !ok {
		return
	}
	pdf, err := s.reports.RenderPDF(c.Request.Context(), *profile)
	if err != nil {
		s.renderError(c, err)
		return
	}
	filename := fmt.Sprintf("ada-advisor-%d.pdf", profile.ID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) loadProfile(c *gin.Context) (*domain.PatientProfile, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}
	profile, err := s.profiles.GetProfile(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return nil, false
	}
	return profile, true
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func (s *Server) renderError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "message": appErr.Message})
			return
		case apperrors.ErrorTypeNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": appErr.Message})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
}

