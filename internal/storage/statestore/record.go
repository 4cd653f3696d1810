package statestore

import (
	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/token"
)

// formatVersion is bumped whenever a record layout changes incompatibly.
const formatVersion = 1

// metaRecord holds everything in token.State except the accounts.
type metaRecord struct {
	Version      int    `codec:"v"`
	Name         string `codec:"name"`
	Symbol       string `codec:"symbol"`
	Decimals     uint8  `codec:"decimals"`
	Owner        []byte `codec:"owner"`
	FeeRecipient []byte `codec:"fee_recipient"`

	Factor           []byte `codec:"factor"`
	TotalNormalized  []byte `codec:"total"`
	BaseTxFee        []byte `codec:"base_fee"`
	FeeIncrement     []byte `codec:"fee_increment"`
	VolumeThreshold  []byte `codec:"volume_threshold"`
	CumulativeVolume []byte `codec:"volume"`
	LastFee          []byte `codec:"last_fee"`
	Seq              uint64 `codec:"seq"`

	Holders [][]byte `codec:"holders"`
}

type allowanceRecord struct {
	Spender []byte `codec:"spender"`
	Amount  []byte `codec:"amount"`
}

type accountRecord struct {
	Normalized []byte            `codec:"balance"`
	Nonce      uint64            `codec:"nonce"`
	Allowances []allowanceRecord `codec:"allowances"`
}

func intBytes(v *uint256.Int) []byte {
	if v == nil {
		return nil
	}
	return v.Bytes()
}

func bytesInt(b []byte) *uint256.Int {
	return new(uint256.Int).SetBytes(b)
}

func addrBytes(a address.Address) []byte {
	return a.Bytes()
}

func bytesAddr(b []byte) (address.Address, error) {
	return address.FromBytes(b)
}

func newMetaRecord(s token.State) metaRecord {
	m := metaRecord{
		Version:          formatVersion,
		Name:             s.Name,
		Symbol:           s.Symbol,
		Decimals:         s.Decimals,
		Owner:            addrBytes(s.Owner),
		FeeRecipient:     addrBytes(s.FeeRecipient),
		Factor:           intBytes(s.Factor),
		TotalNormalized:  intBytes(s.TotalNormalized),
		BaseTxFee:        intBytes(s.Fees.BaseTxFee),
		FeeIncrement:     intBytes(s.Fees.FeeIncrement),
		VolumeThreshold:  intBytes(s.Fees.VolumeThreshold),
		CumulativeVolume: intBytes(s.CumulativeVolume),
		LastFee:          intBytes(s.LastFee),
		Seq:              s.Seq,
		Holders:          make([][]byte, len(s.Holders)),
	}
	for i, h := range s.Holders {
		m.Holders[i] = addrBytes(h)
	}
	return m
}

func (m metaRecord) apply(s *token.State) error {
	owner, err := bytesAddr(m.Owner)
	if err != nil {
		return err
	}
	feeRecipient, err := bytesAddr(m.FeeRecipient)
	if err != nil {
		return err
	}

	s.Name = m.Name
	s.Symbol = m.Symbol
	s.Decimals = m.Decimals
	s.Owner = owner
	s.FeeRecipient = feeRecipient
	s.Factor = bytesInt(m.Factor)
	s.TotalNormalized = bytesInt(m.TotalNormalized)
	s.Fees = fee.Params{
		BaseTxFee:       bytesInt(m.BaseTxFee),
		FeeIncrement:    bytesInt(m.FeeIncrement),
		VolumeThreshold: bytesInt(m.VolumeThreshold),
	}
	s.CumulativeVolume = bytesInt(m.CumulativeVolume)
	s.LastFee = bytesInt(m.LastFee)
	s.Seq = m.Seq

	s.Holders = make([]address.Address, len(m.Holders))
	for i, h := range m.Holders {
		if s.Holders[i], err = bytesAddr(h); err != nil {
			return err
		}
	}
	return nil
}

func newAccountRecord(acc token.AccountState) accountRecord {
	r := accountRecord{
		Normalized: intBytes(acc.Normalized),
		Nonce:      acc.Nonce,
	}
	spenders := make([]address.Address, 0, len(acc.Allowances))
	for sp := range acc.Allowances {
		spenders = append(spenders, sp)
	}
	sortAddresses(spenders)
	for _, sp := range spenders {
		r.Allowances = append(r.Allowances, allowanceRecord{
			Spender: addrBytes(sp),
			Amount:  intBytes(acc.Allowances[sp]),
		})
	}
	return r
}

func (r accountRecord) state() (token.AccountState, error) {
	acc := token.AccountState{
		Normalized: bytesInt(r.Normalized),
		Nonce:      r.Nonce,
	}
	if len(r.Allowances) > 0 {
		acc.Allowances = make(map[address.Address]*uint256.Int, len(r.Allowances))
		for _, a := range r.Allowances {
			sp, err := bytesAddr(a.Spender)
			if err != nil {
				return acc, err
			}
			acc.Allowances[sp] = bytesInt(a.Amount)
		}
	}
	return acc, nil
}
