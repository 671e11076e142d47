package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/morikuni/failure/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aggieseek/seatwatch/api"
	"github.com/aggieseek/seatwatch/api/portal"
	"github.com/aggieseek/seatwatch/api/section"
	"github.com/aggieseek/seatwatch/server"
)

var _ = Describe("Handler", func() {
	var (
		router *gin.Engine
		svc    *mockService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		svc = &mockService{}
		router = server.NewRouter(svc, server.Config{
			CORSOrigins: []string{"http://localhost:5173", "https://aggieseek.net/"},
		})
	})

	get := func(path string, header ...string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for i := 0; i+1 < len(header); i += 2 {
			req.Header.Set(header[i], header[i+1])
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) map[string]any {
		var body map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		return body
	}

	Describe("GET /classes/:term/:crn/", func() {
		It("returns 200 with the merged record", func() {
			svc.sectionFn = func(_ context.Context, ref section.Ref) *section.Record {
				Expect(ref).To(Equal(section.Ref{Term: "202431", CRN: "12345"}))
				rec := section.NewRecord()
				rec.Fields = map[string]any{"DEPT": "CSCE", "COURSE_NUMBER": "121"}
				rec.CourseName = "CSCE 121"
				rec.Instructor = "Jane Doe"
				rec.OtherAttributes = map[string]any{portal.ResourcePrereqs: map[string]any{}}
				return rec
			}

			w := get("/classes/202431/12345/")

			Expect(w.Code).To(Equal(http.StatusOK))
			body := decode(w)
			Expect(body["COURSE_NAME"]).To(Equal("CSCE 121"))
			Expect(body["INSTRUCTOR"]).To(Equal("Jane Doe"))
			Expect(body["ERRORS"]).To(BeEmpty())
			Expect(body).To(HaveKey(server.KeyQueryTime))
			Expect(body[server.KeyQueryTime]).To(BeNumerically(">=", 0))
		})

		It("returns 404 with only errors for a missing section", func() {
			svc.sectionFn = func(_ context.Context, _ section.Ref) *section.Record {
				rec := section.NewRecord()
				rec.AddError(api.ErrGeneralInfo)
				return rec
			}

			w := get("/classes/202431/99999/")

			Expect(w.Code).To(Equal(http.StatusNotFound))
			body := decode(w)
			Expect(body).To(HaveLen(2))
			Expect(body["ERRORS"]).To(ConsistOf(api.ErrGeneralInfo))
		})

		It("returns 400 for a malformed term", func() {
			called := false
			svc.sectionFn = func(_ context.Context, _ section.Ref) *section.Record {
				called = true
				return section.NewRecord()
			}

			w := get("/classes/fall/12345/")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(called).To(BeFalse())
		})
	})

	Describe("GET /classes/:term/:crn/seats/", func() {
		It("returns the seat counters", func() {
			svc.seatsFn = func(_ context.Context, _ section.Ref) (section.SeatPage, error) {
				return section.SeatPage{
					Seats: section.Seats{Actual: 93, Capacity: 100, Remaining: 7},
					Title: "PROGRAMMING I",
				}, nil
			}

			w := get("/classes/202431/12345/seats/")

			Expect(w.Code).To(Equal(http.StatusOK))
			body := decode(w)
			Expect(body["CRN"]).To(Equal("12345"))
			Expect(body["SEATS"]).To(Equal(map[string]any{
				"ACTUAL":    float64(93),
				"CAPACITY":  float64(100),
				"REMAINING": float64(7),
			}))
		})

		It("returns 400 when the section does not exist", func() {
			svc.seatsFn = func(_ context.Context, _ section.Ref) (section.SeatPage, error) {
				return section.SeatPage{}, failure.New(portal.ErrSectionNotFound)
			}

			w := get("/classes/202431/99999/seats/")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)["ERROR"]).To(Equal("section not found"))
		})

		It("returns 502 when the portal is unreachable", func() {
			svc.seatsFn = func(_ context.Context, _ section.Ref) (section.SeatPage, error) {
				return section.SeatPage{}, errors.New("connection reset")
			}

			w := get("/classes/202431/12345/seats/")

			Expect(w.Code).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("GET /classes/:term/", func() {
		It("returns the listing", func() {
			svc.classesFn = func(_ context.Context, term string) ([]section.Class, error) {
				Expect(term).To(Equal("202431"))
				return []section.Class{{section.ClassKeyCRN: "12345"}}, nil
			}

			w := get("/classes/202431/")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["CLASSES"]).To(HaveLen(1))
		})

		It("tells an empty term apart from a failed fetch", func() {
			svc.classesFn = func(_ context.Context, _ string) ([]section.Class, error) {
				return nil, failure.New(api.ErrNoClasses)
			}
			empty := get("/classes/202431/")

			svc.classesFn = func(_ context.Context, _ string) ([]section.Class, error) {
				return nil, failure.Wrap(errors.New("timeout"), failure.WithCode(api.ErrClassesUnavailable))
			}
			broken := get("/classes/202431/")

			Expect(empty.Code).To(Equal(http.StatusNotFound))
			Expect(decode(empty)["ERROR"]).To(Equal("no classes found"))
			Expect(broken.Code).To(Equal(http.StatusBadGateway))
			Expect(decode(broken)["ERROR"]).To(Equal("failed to fetch classes"))
		})
	})

	Describe("terms", func() {
		It("lists terms", func() {
			svc.termsFn = func(_ context.Context) ([]section.Term, error) {
				return []section.Term{{section.TermKeyCode: "202431"}}, nil
			}

			w := get("/terms/")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["TERMS"]).To(HaveLen(1))
		})

		It("returns 404 for an unknown term", func() {
			svc.termFn = func(_ context.Context, _ string) (section.Term, error) {
				return nil, failure.New(api.ErrTermNotFound)
			}

			w := get("/terms/199931")

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("subjects", func() {
		It("lists departments", func() {
			svc.subjectsFn = func(_ context.Context, _ string) ([]string, error) {
				return []string{"CSCE", "MATH"}, nil
			}

			w := get("/subjects/202431/")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["DEPARTMENTS"]).To(Equal([]any{"CSCE", "MATH"}))
		})

		It("upper-cases the subject", func() {
			var got string
			svc.coursesFn = func(_ context.Context, _ string, subject string) ([]string, error) {
				got = subject
				return []string{"121"}, nil
			}

			w := get("/subjects/202431/csce")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got).To(Equal("CSCE"))
			Expect(decode(w)["COURSES"]).To(Equal([]any{"121"}))
		})

		It("returns seat-enriched sections", func() {
			svc.sectionsFn = func(_ context.Context, _, subject, course string) ([]section.Class, error) {
				Expect(subject).To(Equal("CSCE"))
				Expect(course).To(Equal("121"))
				return []section.Class{{
					section.ClassKeyCRN: "12345",
					section.KeySeats:    section.Seats{Capacity: 10}.Map(),
				}}, nil
			}

			w := get("/subjects/202431/csce/121")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["SECTIONS"]).To(HaveLen(1))
		})
	})

	Describe("CORS", func() {
		It("allows configured origins", func() {
			w := get("/health", "Origin", "https://aggieseek.net")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://aggieseek.net"))
		})

		It("ignores other origins", func() {
			w := get("/health", "Origin", "https://example.com")

			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		})

		It("answers preflight requests", func() {
			req := httptest.NewRequest(http.MethodOptions, "/terms/", nil)
			req.Header.Set("Origin", "http://localhost:5173")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:5173"))
		})
	})
})
