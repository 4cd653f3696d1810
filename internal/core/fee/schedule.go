// Package fee implements the volume-tiered transfer fee.
//
// The fee on a transfer of amount A is
//
//	baseTxFee + feeIncrement * floor((cumulativeVolume + A) / volumeThreshold)
//
// after which A is added to the cumulative volume. Volume is never reset, so
// the tier only rises.
package fee

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
)

// ErrInvalidParameter is returned for a zero volume threshold.
var ErrInvalidParameter = errors.New("fee: volume threshold must be non-zero")

// Params are the owner-tunable fee parameters, in smallest token units.
type Params struct {
	BaseTxFee       *uint256.Int
	FeeIncrement    *uint256.Int
	VolumeThreshold *uint256.Int
}

// Validate checks the division-by-zero guard.
func (p Params) Validate() error {
	if amount.IsZero(p.VolumeThreshold) {
		return ErrInvalidParameter
	}
	return nil
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	return Params{
		BaseTxFee:       amount.Clone(p.BaseTxFee),
		FeeIncrement:    amount.Clone(p.FeeIncrement),
		VolumeThreshold: amount.Clone(p.VolumeThreshold),
	}
}

// Schedule holds the fee parameters and the running transfer volume.
type Schedule struct {
	params           Params
	cumulativeVolume *uint256.Int
}

// NewSchedule returns a schedule with zero accumulated volume.
func NewSchedule(params Params) (*Schedule, error) {
	return Restore(params, nil)
}

// Restore rebuilds a schedule with a previously accumulated volume.
func Restore(params Params, cumulativeVolume *uint256.Int) (*Schedule, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Schedule{
		params:           params.Clone(),
		cumulativeVolume: amount.Clone(cumulativeVolume),
	}, nil
}

// QuoteFee returns the fee a transfer of amt would pay now. It has no side effects.
func (s *Schedule) QuoteFee(amt *uint256.Int) (*uint256.Int, error) {
	volume, err := amount.Add(s.cumulativeVolume, amt)
	if err != nil {
		return nil, fmt.Errorf("quote fee: volume: %w", err)
	}
	tier := new(uint256.Int).Div(volume, s.params.VolumeThreshold)

	step, err := amount.Mul(s.params.FeeIncrement, tier)
	if err != nil {
		return nil, fmt.Errorf("quote fee: increment: %w", err)
	}
	fee, err := amount.Add(s.params.BaseTxFee, step)
	if err != nil {
		return nil, fmt.Errorf("quote fee: total: %w", err)
	}
	return fee, nil
}

// ApplyVolume quotes the fee for amt and records amt in the cumulative volume.
// It must be called once per executed transfer.
func (s *Schedule) ApplyVolume(amt *uint256.Int) (*uint256.Int, error) {
	fee, err := s.QuoteFee(amt)
	if err != nil {
		return nil, err
	}
	// QuoteFee already proved the sum fits.
	s.cumulativeVolume = new(uint256.Int).Add(s.cumulativeVolume, amt)
	return fee, nil
}

// SetParams replaces the fee parameters. Accumulated volume is kept.
func (s *Schedule) SetParams(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.params = params.Clone()
	return nil
}

// Params returns a copy of the current parameters.
func (s *Schedule) Params() Params {
	return s.params.Clone()
}

// CumulativeVolume returns the total volume transferred so far.
func (s *Schedule) CumulativeVolume() *uint256.Int {
	return amount.Clone(s.cumulativeVolume)
}

// Tier returns floor(cumulativeVolume / volumeThreshold).
func (s *Schedule) Tier() *uint256.Int {
	return new(uint256.Int).Div(s.cumulativeVolume, s.params.VolumeThreshold)
}

// Clone returns an independent copy of the schedule.
func (s *Schedule) Clone() *Schedule {
	return &Schedule{
		params:           s.params.Clone(),
		cumulativeVolume: amount.Clone(s.cumulativeVolume),
	}
}
