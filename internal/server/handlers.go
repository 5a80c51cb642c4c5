package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/questionnaire"
	"github.com/alexanderramin/strengthscope/internal/render"
	"github.com/alexanderramin/strengthscope/internal/report"
	"github.com/alexanderramin/strengthscope/internal/repository"
	"github.com/alexanderramin/strengthscope/internal/service"
)

// apiResponse is the envelope for every JSON body.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respond(c *gin.Context, code int, data any) {
	c.JSON(code, apiResponse{Success: true, Data: data})
}

func fail(c *gin.Context, err error) {
	c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), apiResponse{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrNoReport):
		return http.StatusNotFound
	case errors.Is(err, questionnaire.ErrIncomplete),
		errors.Is(err, questionnaire.ErrMissingSubject),
		errors.Is(err, questionnaire.ErrOutOfRange),
		errors.Is(err, questionnaire.ErrUnknownStatement),
		errors.Is(err, catalog.ErrUnknownEdition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, render.ErrFontRequired):
		return http.StatusServiceUnavailable
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("invalid request body")

// sessionView is the client-facing session. Items carry their display
// number so clients can render "Q.n" labels directly.
type sessionView struct {
	ID         string                  `json:"id"`
	EditionID  string                  `json:"edition"`
	Seed       uint64                  `json:"seed"`
	Subject    string                  `json:"subject,omitempty"`
	Items      []itemView              `json:"items"`
	Answers    questionnaire.AnswerSet `json:"answers"`
	Unanswered int                     `json:"unanswered"`
	HasReport  bool                    `json:"has_report"`
}

type itemView struct {
	Number      int    `json:"number"`
	StatementID string `json:"statement_id"`
	Text        string `json:"text"`
}

func newSessionView(sess *questionnaire.Session, rep *report.Report) sessionView {
	v := sessionView{
		ID:         sess.ID,
		EditionID:  sess.EditionID,
		Seed:       sess.Seed,
		Subject:    sess.Subject,
		Items:      make([]itemView, len(sess.Items)),
		Answers:    sess.Answers,
		Unanswered: len(sess.Unanswered()),
		HasReport:  rep != nil,
	}
	for i, it := range sess.Items {
		v.Items[i] = itemView{Number: i + 1, StatementID: it.StatementID, Text: it.Text}
	}
	if v.Answers == nil {
		v.Answers = questionnaire.AnswerSet{}
	}
	return v
}

func (s *Server) listEditions(c *gin.Context) {
	respond(c, http.StatusOK, s.svc.Editions(c.Request.Context()))
}

func (s *Server) startSession(c *gin.Context) {
	var req service.StartRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}
	sess, err := s.svc.Start(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, newSessionView(sess, nil))
}

func (s *Server) getSession(c *gin.Context) {
	rec, err := s.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, newSessionView(rec.Session, rec.Report))
}

func (s *Server) saveAnswers(c *gin.Context) {
	var req service.AnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	sess, err := s.svc.SaveAnswers(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, newSessionView(sess, nil))
}

func (s *Server) generateReport(c *gin.Context) {
	rep, err := s.svc.GenerateReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, rep)
}

func (s *Server) lastReport(c *gin.Context) {
	rep, err := s.svc.LastReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, rep)
}

func (s *Server) downloadReport(f render.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := s.renderers[f]
		if !ok {
			fail(c, s.pdfErr)
			return
		}
		rep, err := s.svc.LastReport(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}

		data, err := render.Bytes(r, rep)
		s.metrics.Rendered(string(f), err)
		if err != nil {
			fail(c, err)
			return
		}
		name := report.Filename(rep.Subject, r.Extension())
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", name, url.PathEscape(name)))
		c.Data(http.StatusOK, r.ContentType(), data)
	}
}
