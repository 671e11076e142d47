package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aggieseek/seatwatch/api"
	"github.com/aggieseek/seatwatch/api/section"
	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type fakeService struct {
	refs []section.Ref
}

func (f *fakeService) Section(_ context.Context, ref section.Ref) *section.Record {
	f.refs = append(f.refs, ref)
	rec := section.NewRecord()
	if ref.CRN == "99999" {
		rec.AddError(api.ErrGeneralInfo)
		return rec
	}
	rec.Fields = map[string]any{"DEPT": "CSCE", "COURSE_NUMBER": "121"}
	rec.CourseName = "CSCE 121"
	rec.Instructor = "Jane Doe"
	return rec
}

func (f *fakeService) SeatBatch(_ context.Context, refs []section.Ref) []section.Class {
	f.refs = append(f.refs, refs...)
	out := make([]section.Class, len(refs))
	for i, ref := range refs {
		out[i] = section.Class{section.ClassKeyTerm: ref.Term, section.ClassKeyCRN: ref.CRN}
		if ref.CRN == "12345" {
			out[i][section.KeySeats] = section.Seats{Actual: 93, Capacity: 100, Remaining: 7}.Map()
		}
	}
	return out
}

func call(t *testing.T, tool func(Service) (mcp.Tool, server.ToolHandlerFunc), svc Service, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	_, handler := tool(svc)
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("got %d contents, want 1", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestFetchSection(t *testing.T) {
	svc := &fakeService{}
	res := call(t, FetchSection, svc, map[string]any{"term": "202431", "crn": "12345"})
	if res.IsError {
		t.Fatalf("tool failed: %s", text(t, res))
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(text(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if got["COURSE_NAME"] != "CSCE 121" || got["INSTRUCTOR"] != "Jane Doe" {
		t.Errorf("fetch_section = %v", got)
	}
	if diff := cmp.Diff([]section.Ref{{Term: "202431", CRN: "12345"}}, svc.refs); diff != "" {
		t.Errorf("refs mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchSectionMarkdown(t *testing.T) {
	res := call(t, FetchSection, &fakeService{}, map[string]any{"term": "202431", "crn": "12345", "markdown": true})
	if res.IsError {
		t.Fatalf("tool failed: %s", text(t, res))
	}
	if got := text(t, res); !strings.HasPrefix(got, "# CSCE 121") {
		t.Errorf("fetch_section markdown = %q", got)
	}
}

func TestFetchSectionErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing crn", map[string]any{"term": "202431"}},
		{"bad term", map[string]any{"term": "fall", "crn": "12345"}},
		{"unknown section", map[string]any{"term": "202431", "crn": "99999"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, FetchSection, &fakeService{}, tt.args)
			if !res.IsError {
				t.Errorf("fetch_section(%v) succeeded", tt.args)
			}
		})
	}
}

func TestFetchSeats(t *testing.T) {
	svc := &fakeService{}
	res := call(t, FetchSeats, svc, map[string]any{
		"term": "202431",
		"crns": []any{"12345", "12346"},
	})
	if res.IsError {
		t.Fatalf("tool failed: %s", text(t, res))
	}

	want := `[{"crn":"12345","seats":{"ACTUAL":93,"CAPACITY":100,"REMAINING":7}},{"crn":"12346","seats":null}]`
	if got := text(t, res); got != want {
		t.Errorf("fetch_seats = %s, want %s", got, want)
	}
}

func TestFetchSeatsRequiresCRNs(t *testing.T) {
	res := call(t, FetchSeats, &fakeService{}, map[string]any{"term": "202431", "crns": []any{}})
	if !res.IsError {
		t.Error("fetch_seats with no CRNs succeeded")
	}
}

func TestInitTools(t *testing.T) {
	tools := InitTools(&fakeService{})
	var names []string
	for _, st := range tools {
		names = append(names, st.Tool.Name)
	}
	if diff := cmp.Diff([]string{"fetch_section", "fetch_seats"}, names); diff != "" {
		t.Errorf("tool names mismatch (-want +got):\n%s", diff)
	}
}
