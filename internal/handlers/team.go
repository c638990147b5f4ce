package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eclat-backend/internal/httpx"
	"eclat-backend/internal/models"
	"eclat-backend/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const teamCacheKey = "team:all"

type TeamMemberRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	Role      string `json:"role" validate:"required,max=120"`
	Bio       string `json:"bio" validate:"omitempty,max=2000"`
	PhotoURL  string `json:"photoUrl" validate:"omitempty,url,max=2000"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

func (s *Server) GetTeam(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	if cached, ok, err := s.Cache.Get(r.Context(), teamCacheKey); err == nil && ok {
		log.Info("team: cache hit")
		writeCachedJSON(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := s.Cols.TeamMembers.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Error("team: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	defer cursor.Close(ctx)

	items := make([]models.TeamMember, 0)
	for cursor.Next(ctx) {
		var m models.TeamMember
		if err := cursor.Decode(&m); err != nil {
			log.Error("team: decode error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "decode error", nil)
			return
		}
		items = append(items, m)
	}
	if err := cursor.Err(); err != nil {
		log.Error("team: cursor error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "cursor error", nil)
		return
	}

	response := map[string]interface{}{"team": items}
	if payload, err := encodeJSON(response); err == nil {
		_ = s.Cache.Set(r.Context(), teamCacheKey, payload, s.cacheTTL())
	}

	log.Info("team: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, response)
}

func (s *Server) CreateTeamMember(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)

	var req TeamMemberRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("team create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.TrimSpace(req.Role)
	if err := s.Val.Struct(req); err != nil {
		log.Warn("team create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	member := models.TeamMember{
		ID:        primitive.NewObjectID().Hex(),
		Name:      req.Name,
		Role:      req.Role,
		Bio:       strings.TrimSpace(req.Bio),
		PhotoURL:  strings.TrimSpace(req.PhotoURL),
		SortOrder: req.SortOrder,
		CreatedAt: time.Now().In(s.Cfg.Timezone),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.Cols.TeamMembers.InsertOne(ctx, member); err != nil {
		log.Error("team create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	_ = s.Cache.Delete(r.Context(), teamCacheKey)

	log.Info("team create: ok", slog.String("member_id", member.ID))
	transport.WriteJSON(w, http.StatusCreated, member)
}

func (s *Server) UpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req TeamMemberRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("team update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.TrimSpace(req.Role)
	if err := s.Val.Struct(req); err != nil {
		log.Warn("team update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	set := bson.M{
		"name":      req.Name,
		"role":      req.Role,
		"bio":       strings.TrimSpace(req.Bio),
		"photoUrl":  strings.TrimSpace(req.PhotoURL),
		"sortOrder": req.SortOrder,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.TeamMember
	err := s.Cols.TeamMembers.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		log.Warn("team update: not found", slog.String("member_id", id))
		transport.WriteError(w, http.StatusNotFound, "team member not found", nil)
		return
	}
	if err != nil {
		log.Error("team update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	_ = s.Cache.Delete(r.Context(), teamCacheKey)

	log.Info("team update: ok", slog.String("member_id", id))
	transport.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) DeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := s.Cols.TeamMembers.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error("team delete: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	if res.DeletedCount == 0 {
		log.Warn("team delete: not found", slog.String("member_id", id))
		transport.WriteError(w, http.StatusNotFound, "team member not found", nil)
		return
	}

	_ = s.Cache.Delete(r.Context(), teamCacheKey)

	log.Info("team delete: ok", slog.String("member_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
