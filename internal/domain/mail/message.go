package mail

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
)

// Message limits.
const (
	MaxIDLength      = 256
	MaxBodyBytes     = 256 * 1024
	MaxImportance    = 5
	DefaultSnippetLn = 300
)

// Message is an email as stored in the index.
type Message struct {
	ID         string          `json:"id"`
	From       string          `json:"from"`
	Subject    string          `json:"subject"`
	Body       string          `json:"body"`
	Date       time.Time       `json:"date"`
	Category   filter.Category `json:"category,omitempty"`
	Importance int             `json:"importance,omitempty"`
}

// Validate checks the message before indexing.
func (m *Message) Validate() error {
	if m.ID == "" {
		return errors.New("id is required")
	}
	if len(m.ID) > MaxIDLength {
		return fmt.Errorf("id too long (max %d chars)", MaxIDLength)
	}
	if strings.TrimSpace(m.From) == "" {
		return errors.New("from is required")
	}
	if strings.TrimSpace(m.Subject) == "" && strings.TrimSpace(m.Body) == "" {
		return errors.New("subject or body is required")
	}
	if len(m.Body) > MaxBodyBytes {
		return fmt.Errorf("body too large (max %d bytes)", MaxBodyBytes)
	}
	if m.Category != "" && !m.Category.IsValid() {
		return fmt.Errorf("invalid category %q", m.Category)
	}
	if m.Importance < 0 || m.Importance > MaxImportance {
		return fmt.Errorf("importance must be between 0 and %d", MaxImportance)
	}
	return nil
}

// EmbeddingText is the text vectorized for semantic retrieval.
func (m *Message) EmbeddingText() string {
	return m.Subject + "\n" + m.Body
}

// Record is a message paired with its embedding. Vector is nil when no
// embedding provider is configured.
type Record struct {
	Message Message
	Vector  []float32
}
