package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aggieseek/seatwatch/api"
	"github.com/aggieseek/seatwatch/api/portal"
	"github.com/aggieseek/seatwatch/api/section"
	"github.com/aggieseek/seatwatch/log"
	"github.com/gin-gonic/gin"
	"github.com/morikuni/failure/v2"
)

// KeyQueryTime carries the handling time in seconds on every body
const KeyQueryTime = "QUERY_TIME"

// Service is what the routes need from api.Service
type Service interface {
	Section(ctx context.Context, ref section.Ref) *section.Record
	Seats(ctx context.Context, ref section.Ref) (section.SeatPage, error)
	Classes(ctx context.Context, term string) ([]section.Class, error)
	Terms(ctx context.Context) ([]section.Term, error)
	Term(ctx context.Context, code string) (section.Term, error)
	Subjects(ctx context.Context, term string) ([]string, error)
	Courses(ctx context.Context, term, subject string) ([]string, error)
	Sections(ctx context.Context, term, subject, course string) ([]section.Class, error)
}

var _ Service = (*api.Service)(nil)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// respond writes body with the elapsed time since the request started
func respond(c *gin.Context, status int, body gin.H) {
	body[KeyQueryTime] = time.Since(c.GetTime(startKey)).Seconds()
	c.JSON(status, body)
}

func (h *Handler) Section(c *gin.Context) {
	ref := section.NewRef(c.Param("term"), c.Param("crn"))
	if err := ref.Validate(); err != nil {
		respond(c, http.StatusBadRequest, gin.H{section.KeyErrors: []string{failure.MessageOf(err).String()}})
		return
	}

	rec := h.svc.Section(c.Request.Context(), ref)
	status := http.StatusOK
	if !rec.Found() {
		status = http.StatusNotFound
	}
	respond(c, status, gin.H(rec.Map()))
}

func (h *Handler) Seats(c *gin.Context) {
	ref := section.NewRef(c.Param("term"), c.Param("crn"))
	if err := ref.Validate(); err != nil {
		respond(c, http.StatusBadRequest, gin.H{"ERROR": failure.MessageOf(err).String()})
		return
	}

	page, err := h.svc.Seats(c.Request.Context(), ref)
	if err != nil {
		switch {
		case failure.Is(err, portal.ErrSectionNotFound):
			respond(c, http.StatusBadRequest, gin.H{"CRN": ref.CRN, "ERROR": "section not found"})
		default:
			log.Warn("Seat lookup failed", "term", ref.Term, "crn", ref.CRN, "error", err)
			respond(c, http.StatusBadGateway, gin.H{"CRN": ref.CRN, "ERROR": "failed to fetch seats"})
		}
		return
	}

	respond(c, http.StatusOK, gin.H{
		section.KeySeats: page.Seats,
		"CRN":            ref.CRN,
		"TITLE":          page.Title,
		"COURSE":         page.Course,
		"SECTION":        page.Section,
		"TERM":           page.Term,
	})
}

func (h *Handler) Classes(c *gin.Context) {
	term := c.Param("term")
	classes, err := h.svc.Classes(c.Request.Context(), term)
	if err != nil {
		classesError(c, term, "CLASSES", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"CLASSES": classes})
}

func (h *Handler) Terms(c *gin.Context) {
	terms, err := h.svc.Terms(c.Request.Context())
	if err != nil {
		log.Warn("Term lookup failed", "error", err)
		respond(c, http.StatusBadGateway, gin.H{"TERMS": []section.Term{}, "ERROR": "Failed to fetch term data from Howdy"})
		return
	}
	respond(c, http.StatusOK, gin.H{"TERMS": terms})
}

func (h *Handler) Term(c *gin.Context) {
	term, err := h.svc.Term(c.Request.Context(), c.Param("term"))
	if err != nil {
		if failure.Is(err, api.ErrTermNotFound) {
			respond(c, http.StatusNotFound, gin.H{"TERMS": nil, "ERROR": "term not found"})
			return
		}
		log.Warn("Term lookup failed", "term", c.Param("term"), "error", err)
		respond(c, http.StatusBadGateway, gin.H{"TERMS": nil, "ERROR": "Failed to fetch term data from Howdy"})
		return
	}
	respond(c, http.StatusOK, gin.H{"TERMS": term})
}

func (h *Handler) Subjects(c *gin.Context) {
	term := c.Param("term")
	subjects, err := h.svc.Subjects(c.Request.Context(), term)
	if err != nil {
		classesError(c, term, "DEPARTMENTS", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"DEPARTMENTS": subjects})
}

func (h *Handler) Courses(c *gin.Context) {
	term := c.Param("term")
	courses, err := h.svc.Courses(c.Request.Context(), term, strings.ToUpper(c.Param("subject")))
	if err != nil {
		classesError(c, term, "COURSES", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"COURSES": courses})
}

func (h *Handler) Sections(c *gin.Context) {
	term := c.Param("term")
	sections, err := h.svc.Sections(c.Request.Context(), term, strings.ToUpper(c.Param("subject")), c.Param("course"))
	if err != nil {
		classesError(c, term, "SECTIONS", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"SECTIONS": sections})
}

// classesError maps listing failures. An empty term and an unreachable
// portal are reported differently.
func classesError(c *gin.Context, term, key string, err error) {
	switch {
	case failure.Is(err, api.ErrNoClasses):
		respond(c, http.StatusNotFound, gin.H{key: []any{}, "ERROR": "no classes found"})
	default:
		log.Warn("Class listing failed", "term", term, "error", err)
		respond(c, http.StatusBadGateway, gin.H{key: []any{}, "ERROR": "failed to fetch classes"})
	}
}
