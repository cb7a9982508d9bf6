package mcpserver

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shouni/nova-canvas-kit/pkg/domain"
)

const imageURIPrefix = "image://"

func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "image",
		Description: "Raw bytes of an image file. The image id is its file path.",
		URITemplate: imageURIPrefix + "{image_id}",
	}, s.readImage)
}

func (s *Server) readImage(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	// 絶対パスは image://%2Fpath%2Fto%2Fimg.png のようにエスケープして渡される
	escaped, ok := strings.CutPrefix(uri, imageURIPrefix)
	if !ok || escaped == "" {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	imageID, err := url.PathUnescape(escaped)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	data, err := s.gen.LoadImage(ctx, imageID)
	if err != nil {
		if domain.IsKind(err, domain.KindValidation) {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: http.DetectContentType(data),
			Blob:     data,
		}},
	}, nil
}
