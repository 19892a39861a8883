package pipeline

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/smart-dfd-agent/agent/nodes"
)

func (s *Service) compileRunGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, s.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("generate_response",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.GenerateResponse(ctx, in, s.generator)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate_response: %w", err)
	}

	if err := graph.AddLambdaNode("parse_diagram",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ParseDiagram(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node parse_diagram: %w", err)
	}

	if err := graph.AddLambdaNode("mint_identity",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.MintIdentity(ctx, in, s.namer)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node mint_identity: %w", err)
	}

	if err := graph.AddLambdaNode("write_report",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.WriteReport(in, s.archiver)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node write_report: %w", err)
	}

	if err := graph.AddLambdaNode("render_image",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RenderImage(ctx, in, s.renderer)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node render_image: %w", err)
	}

	if err := graph.AddLambdaNode("archive_image",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ArchiveImage(in, s.archiver, s.imagePath)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node archive_image: %w", err)
	}

	if err := graph.AddLambdaNode("write_document",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.WriteDocument(in, s.documents)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node write_document: %w", err)
	}

	if err := graph.AddLambdaNode("record_index",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordIndex(ctx, in, s.indexes...)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_index: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_result",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeResult(in, s.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_result: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "generate_response"},
		{"generate_response", "parse_diagram"},
		{"parse_diagram", "mint_identity"},
		{"mint_identity", "write_report"},
		{"write_report", "render_image"},
		{"render_image", "archive_image"},
		{"archive_image", "write_document"},
		{"write_document", "record_index"},
		{"record_index", "finalize_result"},
		{"finalize_result", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("dfd.run"))
	if err != nil {
		return nil, fmt.Errorf("compile run graph: %w", err)
	}
	return runner, nil
}
