package chi

import (
	"github.com/kailas-cloud/mailsense/internal/domain/mail"
	"github.com/kailas-cloud/mailsense/internal/domain/query/enhancement"
	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest                = "bad_request"
	CodeUnauthorized              = "unauthorized"
	CodeNotFound                  = "not_found"
	CodeEmbeddingQuotaExceeded    = "embedding_quota_exceeded"
	CodeEmbeddingProviderError    = "embedding_provider_error"
	CodeEmbedderNotConfigured     = "embedder_not_configured"
	CodeKeywordSearchNotSupported = "keyword_search_not_supported"
	CodeIndexUnavailable          = "index_unavailable"
	CodeInternalError             = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type analyzeRequest struct {
	Query string `json:"query"`
}

type analyzeResponse struct {
	Enhancement enhancement.Enhancement `json:"enhancement"`
	Summary     string                  `json:"summary"`
}

type queryRequest struct {
	Query   string          `json:"query"`
	TopK    int             `json:"top_k"`
	Debug   bool            `json:"debug"`
	Filters filter.Metadata `json:"filters"`
}

type upsertRequest struct {
	Messages []mail.Message `json:"messages"`
}

type upsertItem struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type upsertResponse struct {
	Results []upsertItem `json:"results"`
	Indexed int          `json:"indexed"`
	Failed  int          `json:"failed"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func upsertResultsToResponse(results []mail.UpsertResult) upsertResponse {
	resp := upsertResponse{Results: make([]upsertItem, len(results))}
	for i, r := range results {
		item := upsertItem{ID: r.ID(), Status: string(r.Status())}
		if r.Err() != nil {
			item.Error = safeDomainMessage(r.Err())
			resp.Failed++
		} else {
			resp.Indexed++
		}
		resp.Results[i] = item
	}
	return resp
}
