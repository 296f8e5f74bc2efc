// Package lido measures the age of the newest Lido withdrawal request.
package lido

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/steth-arb/business/market/app"
	"github.com/fd1az/steth-arb/business/market/domain"
	"github.com/fd1az/steth-arb/internal/apperror"
	"github.com/fd1az/steth-arb/internal/rates"
)

var (
	_ app.Source   = (*QueueDurationSource)(nil)
	_ app.Bindable = (*QueueDurationSource)(nil)
)

// QueueDurationSource reports how long, in years, the most recent
// withdrawal request has been waiting. An empty queue is 0 with no error.
type QueueDurationSource struct {
	reader app.ContractReader
	queue  common.Address
}

// NewQueueDurationSource creates a source for the queue at address.
func NewQueueDurationSource(reader app.ContractReader, queue common.Address) *QueueDurationSource {
	return &QueueDurationSource{reader: reader, queue: queue}
}

func (s *QueueDurationSource) Name() string             { return domain.SourceQueue }
func (s *QueueDurationSource) Contract() common.Address { return s.queue }

// Binding returns the withdrawal queue ABI.
func (s *QueueDurationSource) Binding() app.Binding {
	return app.Binding{
		Name:     ABIName,
		Contract: s.queue,
		ABI:      WithdrawalQueueABI,
		Methods:  []string{methodGetLastRequestID, methodGetWithdrawalStatus},
	}
}

// Fetch reads the last request id, the chain head timestamp and the
// request's creation timestamp. A failure in any of the three reads fails
// the whole source.
func (s *QueueDurationSource) Fetch(ctx context.Context) (decimal.Decimal, error) {
	years, err := s.fetch(ctx)
	if err != nil {
		return decimal.Zero, domain.NewSourceUnavailable(s.Name(), s.queue, err)
	}
	return years, nil
}

func (s *QueueDurationSource) fetch(ctx context.Context) (decimal.Decimal, error) {
	lastID, err := s.lastRequestID(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if lastID.Sign() == 0 {
		return decimal.Zero, nil
	}

	head, err := s.reader.LatestBlock(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	status, err := s.WithdrawalStatus(ctx, lastID)
	if err != nil {
		return decimal.Zero, err
	}

	age := decimal.NewFromInt(head.Unix()).Sub(decimal.NewFromBigInt(status.Timestamp, 0))
	if age.IsNegative() {
		// Request mined after the head we read.
		age = decimal.Zero
	}
	return rates.SecondsToYears(age), nil
}

func (s *QueueDurationSource) lastRequestID(ctx context.Context) (*big.Int, error) {
	out, err := s.reader.Call(ctx, s.queue, methodGetLastRequestID)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, apperror.New(apperror.CodeUnexpectedOutput,
			apperror.WithContext(fmt.Sprintf("getLastRequestId: %d outputs", len(out))))
	}
	id, ok := out[0].(*big.Int)
	if !ok || id == nil {
		return nil, apperror.New(apperror.CodeUnexpectedOutput,
			apperror.WithContext(fmt.Sprintf("getLastRequestId: %T", out[0])))
	}
	return id, nil
}

// WithdrawalStatus returns the status record of a single request.
func (s *QueueDurationSource) WithdrawalStatus(ctx context.Context, requestID *big.Int) (status WithdrawalRequestStatus, err error) {
	out, err := s.reader.Call(ctx, s.queue, methodGetWithdrawalStatus, []*big.Int{requestID})
	if err != nil {
		return WithdrawalRequestStatus{}, err
	}
	if len(out) != 1 {
		return WithdrawalRequestStatus{}, apperror.New(apperror.CodeUnexpectedOutput,
			apperror.WithContext(fmt.Sprintf("getWithdrawalStatus: %d outputs", len(out))))
	}

	defer func() {
		if r := recover(); r != nil {
			err = apperror.New(apperror.CodeABIDecodeFailed,
				apperror.WithContext(fmt.Sprintf("getWithdrawalStatus: %v", r)))
		}
	}()
	statuses := *abi.ConvertType(out[0], new([]WithdrawalRequestStatus)).(*[]WithdrawalRequestStatus)

	if len(statuses) != 1 || statuses[0].Timestamp == nil {
		return WithdrawalRequestStatus{}, apperror.New(apperror.CodeUnexpectedOutput,
			apperror.WithContext(fmt.Sprintf("getWithdrawalStatus: %d statuses for 1 id", len(statuses))))
	}
	return statuses[0], nil
}
