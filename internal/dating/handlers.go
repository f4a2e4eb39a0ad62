package dating

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/imadgeboyega/kiekky-matchengine/internal/auth"
	"github.com/imadgeboyega/kiekky-matchengine/internal/common/utils"
	"github.com/imadgeboyega/kiekky-matchengine/internal/matching"
)

type Handler struct {
	service Service
	ranker  Ranker
	admin   *AdminService
	logger  *zap.Logger
}

func NewHandler(service Service, ranker Ranker, admin *AdminService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, ranker: ranker, admin: admin, logger: logger}
}

func (h *Handler) DiscoverMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var params DiscoverParams
	query := r.URL.Query()
	if limit := query.Get("limit"); limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		params.Limit = l
	}
	if minScore := query.Get("min_score"); minScore != "" {
		m, err := strconv.ParseFloat(minScore, 64)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid min_score")
			return
		}
		params.MinScore = &m
	}
	if err := utils.ValidateStruct(params); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	candidates, err := h.ranker.RankCandidates(r.Context(), userID, RankOptions{
		Limit:    params.Limit,
		MinScore: params.MinScore,
	})
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to discover matches")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, DiscoverResponse{Candidates: candidates, Count: len(candidates)})
}

func (h *Handler) LocationMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	params, ok := listParams(w, r)
	if !ok {
		return
	}

	matches, err := h.ranker.LocationMatches(r.Context(), userID, params.Limit)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to find location matches")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, LocationMatchesResponse{Matches: matches, Count: len(matches)})
}

func (h *Handler) IncomingSwipes(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	params, ok := listParams(w, r)
	if !ok {
		return
	}

	users, err := h.ranker.RecentSwipers(r.Context(), userID, params.Limit)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to list incoming swipes")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, IncomingSwipesResponse{Users: users, Count: len(users)})
}

func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	record, err := h.service.ComputePair(r.Context(), userID, targetID)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to compute compatibility")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, record)
}

func (h *Handler) UpdateRelationshipStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var dto RelationshipStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.SetRelationshipStatus(r.Context(), userID, targetID, dto.Status); err != nil {
		h.respondWithServiceError(w, err, "Failed to update relationship status")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"partner_id":          targetID,
		"relationship_status": dto.Status,
	})
}

func (h *Handler) BatchCompatibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var dto BatchCompatibilityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ComputeForTargets(r.Context(), userID, dto.TargetUserIDs)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to compute compatibility batch")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	params := DefaultRecommendationParams()
	query := r.URL.Query()
	if minComp := query.Get("min_compatibility"); minComp != "" {
		m, err := strconv.Atoi(minComp)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid min_compatibility")
			return
		}
		params.MinCompatibility = m
	}
	if limit := query.Get("limit"); limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		params.Limit = l
	}
	if err := utils.ValidateStruct(params); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := h.service.Recommendations(r.Context(), userID, params.MinCompatibility, params.Limit)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to get recommendations")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, RecommendationsResponse{Recommendations: recs, Count: len(recs)})
}

func (h *Handler) ProfileChanged(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	flagged, err := h.service.ProfileChanged(r.Context(), userID)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to process profile change")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ProfileChangedResponse{UserID: userID, RecordsFlagged: flagged})
}

// Admin

func (h *Handler) StartRecompute(w http.ResponseWriter, r *http.Request) {
	batchID := h.admin.StartRecompute(r.Context())
	utils.RespondWithJSON(w, http.StatusAccepted, RecomputeAcceptedResponse{BatchID: batchID, Status: "started"})
}

func (h *Handler) LastRecompute(w http.ResponseWriter, r *http.Request) {
	summary := h.admin.LastRecompute()
	if summary == nil {
		utils.RespondWithError(w, http.StatusNotFound, "No recompute has finished yet")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.GetStats(r.Context())
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to get stats")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *Handler) respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, matching.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrRecordNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, matching.ErrSameUser), errors.Is(err, ErrInvalidStatus):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(fallback, zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return userID, ok
}

func pathUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return id, true
}

func listParams(w http.ResponseWriter, r *http.Request) (ListParams, bool) {
	var params ListParams
	if limit := r.URL.Query().Get("limit"); limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return params, false
		}
		params.Limit = l
	}
	if err := utils.ValidateStruct(params); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return params, false
	}
	return params, true
}
