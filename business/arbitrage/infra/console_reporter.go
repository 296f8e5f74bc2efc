// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/steth-arb/business/arbitrage/app"
	"github.com/fd1az/steth-arb/business/arbitrage/domain"
	marketDomain "github.com/fd1az/steth-arb/business/market/domain"
)

var _ app.Reporter = (*ConsoleReporter)(nil)

var divider = strings.Repeat("-", 37)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a reporter writing to out, or stdout when nil.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

// Start prints the banner.
func (r *ConsoleReporter) Start(_ context.Context) error {
	_, err := fmt.Fprintln(r.out, "stETH withdrawal queue monitor started")
	return err
}

// Report prints one tick as a block framed by dividers.
func (r *ConsoleReporter) Report(_ context.Context, report domain.TickReport) error {
	s := report.Snapshot
	res := report.Result

	var buf bytes.Buffer
	fmt.Fprintln(&buf, divider)
	fmt.Fprintf(&buf, "Block Number:         %d\n", s.BlockHeight)
	fmt.Fprintf(&buf, "stETH/ETH Price:      %s\n", field(s, marketDomain.SourcePrice, s.ExchangeRate.StringFixed(6)))
	fmt.Fprintf(&buf, "Supply APY:           %s\n", field(s, marketDomain.SourceYield, s.SupplyAPY.Shift(2).StringFixed(4)+"%"))
	fmt.Fprintf(&buf, "Withdrawal Queue:     %s\n", field(s, marketDomain.SourceQueue, queue(s)))
	fmt.Fprintf(&buf, "Reference Coupon:    %9s ETH\n", res.ReferenceCoupon.StringFixed(6))
	fmt.Fprintf(&buf, "Queue Coupon:        %9s ETH\n", res.QueueCoupon.StringFixed(6))
	fmt.Fprintf(&buf, "Result:              %s\n", result(res.RelativeProfit))
	fmt.Fprintln(&buf, divider)

	_, err := r.out.Write(buf.Bytes())
	return err
}

// Stop prints the shutdown notice.
func (r *ConsoleReporter) Stop() error {
	_, err := fmt.Fprintln(r.out, "Exiting...")
	return err
}

func queue(s marketDomain.MarketSnapshot) string {
	if s.QueueEmpty() {
		return "Empty"
	}
	return s.QueueDurationYears.StringFixed(4) + " years"
}

func field(s marketDomain.MarketSnapshot, source, value string) string {
	if s.IsUnavailable(source) {
		return value + " (unavailable)"
	}
	return value
}

func result(profit decimal.Decimal) string {
	if profit.IsPositive() {
		return fmt.Sprintf("+%8s ETH 💰", profit.StringFixed(6))
	}
	return fmt.Sprintf("%9s ETH 💸", profit.StringFixed(6))
}
