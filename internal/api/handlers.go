package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nalanda-edu/nalanda/internal/content"
	"github.com/nalanda-edu/nalanda/internal/economy"
	"github.com/nalanda-edu/nalanda/internal/grader"
	"github.com/nalanda-edu/nalanda/internal/store"
)

type numericalRequest struct {
	Input        string  `json:"input"`
	CorrectValue float64 `json:"correctValue"`
	CorrectUnit  string  `json:"correctUnit"`
	Tolerance    float64 `json:"tolerance"`
}

func (s *Server) gradeNumerical(w http.ResponseWriter, r *http.Request) {
	var req numericalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Tolerance < 0 {
		s.fail(w, r, badRequest(errors.New("tolerance must be non-negative")))
		return
	}
	writeJSON(w, http.StatusOK, grader.CheckNumericalAnswer(req.Input, req.CorrectValue, req.CorrectUnit, req.Tolerance))
}

type questionRequest struct {
	Question content.Question  `json:"question"`
	Answers  map[string]string `json:"answers"`
}

type questionResponse struct {
	Results  content.ResultState       `json:"results"`
	Verdicts map[string]grader.Verdict `json:"verdicts"`
	Obtained float64                   `json:"obtained"`
	Total    float64                   `json:"total"`
}

func (s *Server) gradeQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Question.Validate(); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}
	if req.Question.GradingMode == content.GradingAI {
		s.fail(w, r, badRequest(fmt.Errorf("question %s is graded by AI", req.Question.ID)))
		return
	}
	results, verdicts := grader.GradeQuestion(req.Question, req.Answers)
	writeJSON(w, http.StatusOK, questionResponse{
		Results:  results,
		Verdicts: verdicts,
		Obtained: economy.ObtainedMarks(req.Question, results),
		Total:    req.Question.TotalMarks(),
	})
}

func (s *Server) worksheetCost(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBundle(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cfg := s.wallets.Settings(r.Context())
	writeJSON(w, http.StatusOK, economy.CalculateWorksheetCost(b.Ordered(), &cfg))
}

func (s *Server) worksheetRewards(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBundle(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var ws content.Worksheet
	if b.Worksheet != nil {
		ws = *b.Worksheet
	}
	cfg := s.wallets.Settings(r.Context())
	writeJSON(w, http.StatusOK, economy.ExplainAttemptRewards(ws, b.Ordered(), b.Results, r.URL.Query().Get("user"), &cfg))
}

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	b, err := s.wallets.Balance(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) walletHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.fail(w, r, badRequest(fmt.Errorf("invalid limit %q", v)))
			return
		}
		limit = n
	}
	events, err := s.wallets.History(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if events == nil {
		events = []store.EventRecord{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBundle(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if b.Worksheet == nil {
		s.fail(w, r, badRequest(errors.New("checkout needs a worksheet")))
		return
	}
	receipt, err := s.wallets.Checkout(r.Context(), chi.URLParam(r, "userID"), b.Worksheet.ID, b.Ordered())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) settleAttempt(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBundle(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if b.Worksheet == nil {
		s.fail(w, r, badRequest(errors.New("settlement needs a worksheet")))
		return
	}
	receipt, err := s.wallets.SettleAttempt(r.Context(),
		chi.URLParam(r, "userID"), chi.URLParam(r, "attemptID"),
		*b.Worksheet, b.Ordered(), b.Results)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

type convertRequest struct {
	From   economy.Currency `json:"from"`
	To     economy.Currency `json:"to"`
	Amount int64            `json:"amount"`
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	receipt, err := s.wallets.Convert(r.Context(), chi.URLParam(r, "userID"), req.From, req.To, req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

type grantRequest struct {
	Ref  string `json:"ref"`
	Note string `json:"note"`
	economy.WalletTransaction
}

func (s *Server) grant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	receipt, err := s.wallets.Grant(r.Context(), chi.URLParam(r, "userID"), req.Ref, req.Note, req.WalletTransaction)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wallets.Settings(r.Context()))
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var o economy.Overrides
	if err := decodeJSON(w, r, &o); err != nil {
		s.fail(w, r, err)
		return
	}
	cfg, err := s.wallets.UpdateSettings(r.Context(), o)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) resetSettings(w http.ResponseWriter, r *http.Request) {
	if err := s.wallets.ResetSettings(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.wallets.Settings(r.Context()))
}
