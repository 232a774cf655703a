package blink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"capsulex-blink/actionerr"
	"capsulex-blink/capsuleprogram"
	"capsulex-blink/game"
	"capsulex-blink/logging"
)

const maxPostBody = 64 << 10

// Handler serves the action endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// postParams - fields of an action POST after query fallback
type postParams struct {
	Account      string
	Action       string
	GuessContent string
	IsAnonymous  bool
	Wallet       string
}

// parsePostParams reads {account, data:{...}}. A field missing from data is
// taken from the query string of the same name. An empty body is allowed;
// an oversized or malformed one is an InvalidRequest.
func parsePostParams(r *http.Request) (postParams, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPostBody+1))
	if err != nil {
		return postParams{}, actionerr.NewInvalidRequest(fmt.Errorf("read body: %w", err))
	}
	if len(body) > maxPostBody {
		return postParams{}, actionerr.NewInvalidRequest(fmt.Errorf("body exceeds %d bytes", maxPostBody))
	}
	if len(bytes.TrimSpace(body)) > 0 && !gjson.ValidBytes(body) {
		return postParams{}, actionerr.NewInvalidRequest(fmt.Errorf("body is not valid JSON"))
	}

	doc := gjson.ParseBytes(body)
	data := doc.Get("data")
	query := r.URL.Query()

	field := func(name string) gjson.Result {
		if v := data.Get(name); v.Exists() && v.Type != gjson.Null {
			return v
		}
		if query.Has(name) {
			return gjson.Result{Type: gjson.String, Str: query.Get(name)}
		}
		return gjson.Result{}
	}

	return postParams{
		Account:      doc.Get("account").String(),
		Action:       field("action").String(),
		GuessContent: field("guess_content").String(),
		IsAnonymous:  isTrue(field("is_anonymous")),
		Wallet:       field("wallet").String(),
	}, nil
}

// isTrue accepts JSON true, the string "true", or a checkbox array holding it.
func isTrue(v gjson.Result) bool {
	switch {
	case v.Type == gjson.True:
		return true
	case v.Type == gjson.String:
		return v.Str == "true"
	case v.IsArray():
		for _, item := range v.Array() {
			if isTrue(item) {
				return true
			}
		}
	}
	return false
}

// GuessGet serves GET /api/guess/{capsule_id}.
func (h *Handler) GuessGet(w http.ResponseWriter, r *http.Request) {
	capsuleID := mux.Vars(r)["capsule_id"]
	respondJSON(w, h.service.Formatter().GuessAction(capsuleID), http.StatusOK)
}

// GuessPost serves POST /api/guess/{capsule_id}.
func (h *Handler) GuessPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	capsuleID := mux.Vars(r)["capsule_id"]

	params, err := parsePostParams(r)
	if err != nil {
		h.respondEnvelope(w, h.service.Reject(ctx, "", err))
		return
	}

	action, actionErr := game.ParseAction(params.Action, params.GuessContent, params.IsAnonymous)
	var kind game.Kind
	if actionErr == nil {
		kind = action.Kind()
	}

	account, err := capsuleprogram.ParseAccount(params.Account)
	if err != nil {
		h.respondEnvelope(w, h.service.Reject(ctx, kind, err))
		return
	}
	if actionErr != nil {
		h.respondEnvelope(w, h.service.Reject(ctx, "", actionErr))
		return
	}

	env := h.service.Post(ctx, ActionRequest{
		CapsuleID: capsuleID,
		Account:   account,
		Action:    action,
	})
	h.respondEnvelope(w, env)
}

// GameDetails serves GET and POST /api/game-details/{capsule_id}.
func (h *Handler) GameDetails(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GameDetails(r.Context(), mux.Vars(r)["capsule_id"])
	h.respondAction(w, r, resp, err)
}

// GameLeaderboard serves GET and POST /api/game-leaderboard/{capsule_id}.
func (h *Handler) GameLeaderboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GameLeaderboard(r.Context(), mux.Vars(r)["capsule_id"])
	h.respondAction(w, r, resp, err)
}

// GlobalLeaderboard serves GET /api/leaderboard/global.
func (h *Handler) GlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GlobalLeaderboard(r.Context(), requestOrigin(r))
	h.respondAction(w, r, resp, err)
}

// UserStats serves /api/leaderboard/user. The wallet comes from the query on
// GET and from data.wallet (or the query) on POST.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if r.Method == http.MethodPost {
		params, err := parsePostParams(r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		wallet = params.Wallet
	}

	resp, err := h.service.UserStats(r.Context(), strings.TrimSpace(wallet), requestOrigin(r))
	h.respondAction(w, r, resp, err)
}

// GameLeaderboardSummary serves GET /api/leaderboard/game/{capsule_id}.
func (h *Handler) GameLeaderboardSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GameLeaderboardSummary(r.Context(), mux.Vars(r)["capsule_id"], requestOrigin(r))
	if actionerr.Is(err, actionerr.NotGamified) {
		ae := actionerr.As(err)
		respondJSON(w, ErrorResponse{Message: ae.Message, Error: string(ae.Kind)}, http.StatusBadRequest)
		return
	}
	h.respondAction(w, r, resp, err)
}

// Manifest serves actions.json.
func (h *Handler) Manifest(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.service.Formatter().Manifest(), http.StatusOK)
}

// Health serves /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// NotFound answers unknown paths with an action error body.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, ErrorResponse{Message: "Not found", Error: string(actionerr.NotFound)}, http.StatusNotFound)
}

// MethodNotAllowed answers known paths hit with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, ErrorResponse{Message: "Method not allowed"}, http.StatusMethodNotAllowed)
}

func (h *Handler) respondEnvelope(w http.ResponseWriter, env *Envelope) {
	respondJSON(w, env.Body(), env.Status)
}

func (h *Handler) respondAction(w http.ResponseWriter, r *http.Request, resp ActionGetResponse, err error) {
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, resp, http.StatusOK)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	ae := actionerr.As(err)
	log := logging.For(r.Context(), h.logger)
	if ae.Status >= 500 {
		log.Error("request failed", zap.String("path", r.URL.Path), zap.String("kind", string(ae.Kind)), zap.Error(err))
	} else {
		log.Info("request rejected", zap.String("path", r.URL.Path), zap.String("kind", string(ae.Kind)), zap.Error(err))
	}
	respondJSON(w, ErrorResponse{Message: ae.Message, Error: string(ae.Kind)}, ae.Status)
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// requestOrigin rebuilds scheme://host of the request, honoring a TLS
// terminating proxy.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + r.Host
}
