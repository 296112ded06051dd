package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ReadStatus int

const (
	ReadStatusPending ReadStatus = iota
	ReadStatusSuccess
	ReadStatusError
)

func (s ReadStatus) String() string {
	switch s {
	case ReadStatusSuccess:
		return "success"
	case ReadStatusError:
		return "error"
	default:
		return "pending"
	}
}

func ParseReadStatus(s string) (ReadStatus, error) {
	switch strings.ToLower(s) {
	case "pending":
		return ReadStatusPending, nil
	case "success":
		return ReadStatusSuccess, nil
	case "error":
		return ReadStatusError, nil
	}
	return ReadStatusPending, fmt.Errorf("unknown read status %q", s)
}

func (s ReadStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ReadStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseReadStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ReadResult is the outcome of one contract read on one chain.
// Value holds the formatted return values joined with ", " and is only set
// when Status is ReadStatusSuccess; Reason is only set on ReadStatusError.
type ReadResult struct {
	ID      uuid.UUID  `json:"id"`
	Chain   string     `json:"chain"`
	ChainID uint64     `json:"chainId"`
	Status  ReadStatus `json:"status"`
	Value   string     `json:"value,omitempty"`
	Values  []string   `json:"values,omitempty"`
	Reason  string     `json:"reason,omitempty"`
	ReadAt  time.Time  `json:"readAt"`
}

func Pending(chain string, chainID uint64) *ReadResult {
	return &ReadResult{
		ID:      uuid.New(),
		Chain:   chain,
		ChainID: chainID,
		Status:  ReadStatusPending,
	}
}

func Success(chain string, chainID uint64, values []string) *ReadResult {
	return &ReadResult{
		ID:      uuid.New(),
		Chain:   chain,
		ChainID: chainID,
		Status:  ReadStatusSuccess,
		Value:   strings.Join(values, ", "),
		Values:  values,
		ReadAt:  time.Now().UTC(),
	}
}

func Failure(chain string, chainID uint64, err error) *ReadResult {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return &ReadResult{
		ID:      uuid.New(),
		Chain:   chain,
		ChainID: chainID,
		Status:  ReadStatusError,
		Reason:  reason,
		ReadAt:  time.Now().UTC(),
	}
}

// IsPending reports true for a nil result as well.
func (r *ReadResult) IsPending() bool {
	return r == nil || r.Status == ReadStatusPending
}

func (r *ReadResult) IsSuccess() bool {
	return r != nil && r.Status == ReadStatusSuccess
}

func (r *ReadResult) IsError() bool {
	return r != nil && r.Status == ReadStatusError
}
