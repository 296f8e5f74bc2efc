package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/steth-arb/internal/apperror"
)

// SourceUnavailable reports that one source produced no value this tick.
// The source's metric is replaced by zero.
type SourceUnavailable struct {
	Source   string
	Contract common.Address
	Err      error
}

// NewSourceUnavailable wraps cause with the SOURCE_UNAVAILABLE code.
func NewSourceUnavailable(source string, contract common.Address, cause error) *SourceUnavailable {
	return &SourceUnavailable{
		Source:   source,
		Contract: contract,
		Err:      apperror.Wrap(cause, apperror.CodeSourceUnavailable, source),
	}
}

func (e *SourceUnavailable) Error() string {
	return fmt.Sprintf("%s source unavailable at %s: %v", e.Source, e.Contract.Hex(), e.Err)
}

func (e *SourceUnavailable) Unwrap() error {
	return e.Err
}
