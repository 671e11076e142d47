package mcp

import (
	"context"
	"encoding/json"

	"github.com/aggieseek/seatwatch/api"
	"github.com/aggieseek/seatwatch/api/section"
	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

var validate = validator.New()

// Service is what the tools need from api.Service
type Service interface {
	Section(ctx context.Context, ref section.Ref) *section.Record
	SeatBatch(ctx context.Context, refs []section.Ref) []section.Class
}

var _ Service = (*api.Service)(nil)

func InitTools(svc Service) []server.ServerTool {
	tools := []server.ServerTool{}

	tools = append(tools, newServerTool(FetchSection(svc)))
	tools = append(tools, newServerTool(FetchSeats(svc)))

	return tools
}

func FetchSection(svc Service) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"fetch_section",
			mcp.WithDescription("Fetch the full detail of one class section: meeting times, instructor, restrictions, prerequisites, bookstore and syllabus links"),
			mcp.WithString("term", mcp.Required(), mcp.Description("Six digit term code, e.g. 202431 for Fall 2024 College Station")),
			mcp.WithString("crn", mcp.Required(), mcp.Description("Course reference number of the section")),
			mcp.WithBoolean("markdown", mcp.Description("Return a markdown document instead of JSON")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				Term     string `mapstructure:"term" validate:"required,len=6,numeric"`
				CRN      string `mapstructure:"crn" validate:"required"`
				Markdown bool   `mapstructure:"markdown"`
			}
			var args ToolArguments
			if err := mapstructure.WeakDecode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			rec := svc.Section(ctx, section.NewRef(args.Term, args.CRN))
			if !rec.Found() {
				return mcp.NewToolResultError(api.ErrGeneralInfo), nil
			}

			if args.Markdown {
				doc, err := api.Document(rec)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return mcp.NewToolResultText(doc), nil
			}

			b, err := json.Marshal(rec)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(string(b)), nil
		}
}

func FetchSeats(svc Service) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"fetch_seats",
			mcp.WithDescription("Fetch seat counts (actual, capacity, remaining) for one or more sections of a term"),
			mcp.WithString("term", mcp.Required(), mcp.Description("Six digit term code, e.g. 202431")),
			mcp.WithArray("crns", mcp.Required(), mcp.Description("Course reference numbers, as strings")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				Term string   `mapstructure:"term" validate:"required,len=6,numeric"`
				CRNs []string `mapstructure:"crns" validate:"required,min=1,dive,required"`
			}
			var args ToolArguments
			if err := mapstructure.WeakDecode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			refs := lo.Map(args.CRNs, func(crn string, _ int) section.Ref {
				return section.NewRef(args.Term, crn)
			})
			stubs := svc.SeatBatch(ctx, refs)

			type SeatInfo struct {
				CRN   string         `json:"crn"`
				Seats *section.Seats `json:"seats"`
			}
			out := lo.Map(stubs, func(c section.Class, _ int) SeatInfo {
				info := SeatInfo{CRN: c.CRN()}
				if m, ok := c[section.KeySeats].(map[string]any); ok {
					var s section.Seats
					if err := mapstructure.Decode(m, &s); err == nil {
						info.Seats = &s
					}
				}
				return info
			})

			b, err := json.Marshal(out)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(string(b)), nil
		}
}
