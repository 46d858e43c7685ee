package mail

// UpsertStatus is the indexing outcome of one message.
type UpsertStatus string

// Upsert status values.
const (
	StatusOK    UpsertStatus = "ok"
	StatusError UpsertStatus = "error"
)

// UpsertResult reports what happened to one message of a batch.
type UpsertResult struct {
	id     string
	status UpsertStatus
	err    error
}

// Indexed creates a successful result.
func Indexed(id string) UpsertResult { return UpsertResult{id: id, status: StatusOK} }

// Failed creates a failed result.
func Failed(id string, err error) UpsertResult {
	return UpsertResult{id: id, status: StatusError, err: err}
}

// ID returns the message identifier.
func (r UpsertResult) ID() string { return r.id }

// Status returns the outcome.
func (r UpsertResult) Status() UpsertStatus { return r.status }

// Err returns the failure, if any.
func (r UpsertResult) Err() error { return r.err }
