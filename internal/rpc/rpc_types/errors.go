package rpc_types

import (
	"errors"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/token"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
)

// RpcError represents an RPC error with code and message
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Type        string `json:"type"`
	Message     string `json:"error_message,omitempty"`
}

func (e RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// Error codes
const (
	// Universal errors
	RpcUNKNOWN          = -1
	RpcJSON_RPC         = -32600
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	// General purpose errors
	RpcGENERAL         = 1
	RpcMISSING_COMMAND = 2
	RpcTOO_BUSY        = 6
	RpcSHUT_DOWN       = 11

	// Subscription errors
	RpcSTREAM_MALFORMED = 26

	RpcNOT_ENABLED = 31

	// Token errors
	RpcINSUFFICIENT_BALANCE   = 60
	RpcINSUFFICIENT_ALLOWANCE = 61
	RpcINVALID_ALLOWANCE      = 62
	RpcINVALID_RECIPIENT      = 63
	RpcINVALID_PERCENTAGE     = 64
	RpcINVALID_FEE_PARAMS     = 65
	RpcOVERFLOW               = 66
	RpcINDEX_OUT_OF_RANGE     = 67
	RpcNOT_OWNER              = 68
	RpcSIGNATURE_EXPIRED      = 69
	RpcBAD_SIGNATURE          = 70
)

func NewRpcError(code int, error, errorType, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: error,
		Type:        errorType,
		Message:     message,
	}
}

func RpcErrorUnknown(message string) *RpcError {
	return NewRpcError(RpcUNKNOWN, "unknown", "unknown", message)
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "unknownCmd", "Unknown method '"+method+"'.")
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", "internal", message)
}

func RpcErrorNotEnabled(feature string) *RpcError {
	return NewRpcError(RpcNOT_ENABLED, "notEnabled", "notEnabled", feature+" is not enabled on this node.")
}

func RpcErrorShutDown() *RpcError {
	return NewRpcError(RpcSHUT_DOWN, "shuttingDown", "shuttingDown", "The server is shutting down.")
}

// RpcErrorMissingField returns an error for a missing required field
func RpcErrorMissingField(field string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", "Missing field '"+field+"'.")
}

// RpcErrorInvalidField returns an error for an invalid field value
func RpcErrorInvalidField(field string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", "Invalid field '"+field+"'.")
}

var tokenErrors = []struct {
	target error
	code   int
	name   string
}{
	{token.ErrInsufficientBalance, RpcINSUFFICIENT_BALANCE, "insufficientBalance"},
	{token.ErrInsufficientAllowance, RpcINSUFFICIENT_ALLOWANCE, "insufficientAllowance"},
	{token.ErrInvalidAllowance, RpcINVALID_ALLOWANCE, "invalidAllowance"},
	{token.ErrInvalidRecipient, RpcINVALID_RECIPIENT, "invalidRecipient"},
	{token.ErrInvalidPercentage, RpcINVALID_PERCENTAGE, "invalidPercentage"},
	{token.ErrInvalidParameter, RpcINVALID_FEE_PARAMS, "invalidFeeParams"},
	{token.ErrOverflow, RpcOVERFLOW, "overflow"},
	{token.ErrIndexOutOfRange, RpcINDEX_OUT_OF_RANGE, "indexOutOfRange"},
	{token.ErrNotOwner, RpcNOT_OWNER, "notOwner"},
	{token.ErrSignatureExpired, RpcSIGNATURE_EXPIRED, "signatureExpired"},
	{token.ErrInvalidSignature, RpcBAD_SIGNATURE, "badSignature"},
	{relationaldb.ErrInvalidLimit, RpcINVALID_PARAMS, "invalidParams"},
}

// RpcErrorFrom maps a core error onto its RPC error. Anything unrecognised is
// reported as internal.
func RpcErrorFrom(err error) *RpcError {
	var rpcErr *RpcError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	for _, e := range tokenErrors {
		if errors.Is(err, e.target) {
			return NewRpcError(e.code, e.name, e.name, err.Error())
		}
	}
	return RpcErrorInternal(err.Error())
}
