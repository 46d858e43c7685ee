package intelligent

import (
	"time"

	"github.com/kailas-cloud/mailsense/internal/domain/mail"
	"github.com/kailas-cloud/mailsense/internal/domain/query/enhancement"
)

// annotate attaches the query interpretation to resp.
// elapsed covers analysis only; retrieval reports its own response_time.
func annotate(resp *mail.Response, enh enhancement.Enhancement, st Strategy, elapsed time.Duration, debug bool) {
	if resp.Citations == nil {
		resp.Citations = []mail.Citation{}
	}
	resp.QueryIntelligence = &mail.Intelligence{
		OriginalQuery:  enh.OriginalQuery(),
		EnhancedQuery:  enh.EnhancedQuery(),
		Intent:         enh.Intent(),
		Confidence:     enh.Confidence(),
		Entities:       enh.Entities(),
		Context:        enh.ContextExpansion(),
		Strategy:       string(st),
		ProcessingTime: elapsed.Seconds(),
	}
	if debug {
		resp.Debug = enh.Summary()
	}
}
