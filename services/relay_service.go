package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-kit/log/level"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/keyfort/go-passkey-wallet/global"
	"github.com/keyfort/go-passkey-wallet/metrics"
	"github.com/keyfort/go-passkey-wallet/types"
)

// dummySignatureLength is the size of the all-zero placeholder signature
// sent with gas estimation requests; some relays insist on a syntactically
// plausible signature even before one exists.
const dummySignatureLength = 65

type rpcRequest struct {
	JsonRPC string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JsonRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

type gasEstimateWire struct {
	PreVerificationGas   string `json:"preVerificationGas"`
	VerificationGasLimit string `json:"verificationGasLimit"`
	CallGasLimit         string `json:"callGasLimit"`
}

type gasFeeWire struct {
	MaxFeePerGas         string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas"`
}

type gasPriceWire struct {
	Slow     gasFeeWire `json:"slow"`
	Standard gasFeeWire `json:"standard"`
	Fast     gasFeeWire `json:"fast"`
}

// RelayService is the JSON-RPC client to the operation relay (bundler). The
// relay credential lives in the config handed to the constructor; there is
// no process-wide mutable state.
type RelayService struct {
	client          *resty.Client
	entryPoint      common.Address
	receiptTimeout  time.Duration
	receiptInterval time.Duration
}

func NewRelayService(conf global.RelayConfig, entryPoint common.Address) *RelayService {
	cl := resty.New().SetBaseURL(conf.Url).SetTimeout(time.Second * 10)
	cl.SetHeader("Content-Type", "application/json")
	cl.SetHeader("Accept", "application/json")
	if conf.ApiKey != "" {
		cl.SetQueryParam("apikey", conf.ApiKey)
	}
	return &RelayService{
		client:          cl,
		entryPoint:      entryPoint,
		receiptTimeout:  time.Duration(conf.ReceiptTimeoutMs) * time.Millisecond,
		receiptInterval: time.Duration(conf.ReceiptIntervalMs) * time.Millisecond,
	}
}

// Client exposes the underlying resty client (mocked in tests).
func (rs *RelayService) Client() *resty.Client {
	return rs.client
}

// call posts one JSON-RPC request and unmarshals its result.
func (rs *RelayService) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	request := rpcRequest{
		JsonRPC: "2.0",
		ID:      uuid.New().String(),
		Method:  method,
		Params:  params,
	}
	resp, err := rs.client.R().SetContext(ctx).SetBody(request).Post("")
	if err != nil {
		return fmt.Errorf("%w: %s: %s", types.ErrRelay, method, err.Error())
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s: http status %d", types.ErrRelay, method, resp.StatusCode())
	}
	var rpcResp rpcResponse
	if uErr := json.Unmarshal(resp.Body(), &rpcResp); uErr != nil {
		return fmt.Errorf("%w: %s: %s", types.ErrRelay, method, uErr.Error())
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%w: %s: %s (code %d)", types.ErrRelay, method, rpcResp.Error.Message, rpcResp.Error.Code)
	}
	if result == nil || string(rpcResp.Result) == "null" {
		return nil
	}
	if uErr := json.Unmarshal(rpcResp.Result, result); uErr != nil {
		return fmt.Errorf("%w: %s: %s", types.ErrRelay, method, uErr.Error())
	}
	return nil
}

// SendUserOperation submits a signed operation and returns the relay's
// identifying hash for it.
func (rs *RelayService) SendUserOperation(ctx context.Context, op *types.UserOperation) (common.Hash, error) {
	var result string
	wire := types.MapUserOperationToWire(op)
	err := rs.call(ctx, "eth_sendUserOperation", []interface{}{wire, rs.entryPoint.Hex()}, &result)
	if err != nil {
		return common.Hash{}, err
	}
	metrics.OperationsSubmittedTotal.Inc()
	return common.HexToHash(result), nil
}

// EstimateUserOperationGas asks the relay to simulate the operation and
// return gas limits. The operation is sent with an all-zero dummy signature
// since the real one does not exist yet.
func (rs *RelayService) EstimateUserOperationGas(ctx context.Context, op *types.UserOperation) (*types.GasEstimate, error) {
	wire := types.MapUserOperationToWire(op)
	wire.Signature = hexutil.Encode(make([]byte, dummySignatureLength))

	var result gasEstimateWire
	err := rs.call(ctx, "eth_estimateUserOperationGas", []interface{}{wire, rs.entryPoint.Hex()}, &result)
	if err != nil {
		return nil, err
	}
	estimate := &types.GasEstimate{}
	if estimate.PreVerificationGas, err = decodeHexBig(result.PreVerificationGas); err != nil {
		return nil, err
	}
	if estimate.VerificationGasLimit, err = decodeHexBig(result.VerificationGasLimit); err != nil {
		return nil, err
	}
	if estimate.CallGasLimit, err = decodeHexBig(result.CallGasLimit); err != nil {
		return nil, err
	}
	return estimate, nil
}

// GetUserOperationReceipt fetches the inclusion receipt for an operation.
// A nil receipt with nil error means the operation is not included yet; that
// is a normal outcome, not a failure.
func (rs *RelayService) GetUserOperationReceipt(ctx context.Context, userOpHash common.Hash) (*types.UserOperationReceipt, error) {
	var wire *types.UserOperationReceiptWire
	err := rs.call(ctx, "eth_getUserOperationReceipt", []interface{}{userOpHash.Hex()}, &wire)
	if err != nil {
		return nil, err
	}
	if wire == nil {
		return nil, nil
	}
	blockNumber, err := decodeHexBig(wire.Receipt.BlockNumber)
	if err != nil {
		return nil, err
	}
	metrics.ReceiptsFetchedTotal.Inc()
	return &types.UserOperationReceipt{
		UserOpHash:      common.HexToHash(wire.UserOpHash),
		TransactionHash: common.HexToHash(wire.Receipt.TransactionHash),
		BlockNumber:     blockNumber,
		Success:         wire.Success,
	}, nil
}

// WaitForReceipt polls for the receipt at a constant interval until it
// appears or the timeout budget runs out. No backoff and no jitter: the
// fixed interval trades relay load for predictable latency. On timeout the
// operation is unresolved, not failed; the caller decides what to do next.
func (rs *RelayService) WaitForReceipt(ctx context.Context, userOpHash common.Hash) (*types.UserOperationReceipt, error) {
	deadline := time.NewTimer(rs.receiptTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(rs.receiptInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			metrics.ReceiptPollTimeoutsTotal.Inc()
			level.Warn(global.Logger).Log("msg", "receipt poll timed out", "userOpHash", userOpHash.Hex())
			return nil, fmt.Errorf("%w: %s", types.ErrTimeout, userOpHash.Hex())
		case <-ticker.C:
			receipt, err := rs.GetUserOperationReceipt(ctx, userOpHash)
			if err != nil {
				return nil, err
			}
			if receipt != nil {
				return receipt, nil
			}
		}
	}
}

// GetUserOperationGasPrice fetches the relay's fee hints. Callers wanting
// responsive inclusion should use the fast tier.
func (rs *RelayService) GetUserOperationGasPrice(ctx context.Context) (*types.GasPriceTiers, error) {
	var result gasPriceWire
	err := rs.call(ctx, "pimlico_getUserOperationGasPrice", []interface{}{}, &result)
	if err != nil {
		return nil, err
	}
	tiers := &types.GasPriceTiers{}
	for _, pair := range []struct {
		wire gasFeeWire
		out  *types.GasFee
	}{
		{result.Slow, &tiers.Slow},
		{result.Standard, &tiers.Standard},
		{result.Fast, &tiers.Fast},
	} {
		maxFee, dErr := decodeHexBig(pair.wire.MaxFeePerGas)
		if dErr != nil {
			return nil, dErr
		}
		priorityFee, dErr := decodeHexBig(pair.wire.MaxPriorityFeePerGas)
		if dErr != nil {
			return nil, dErr
		}
		pair.out.MaxFeePerGas = maxFee
		pair.out.MaxPriorityFeePerGas = priorityFee
	}
	return tiers, nil
}

// decodeHexBig parses a 0x-prefixed hex quantity off the wire.
func decodeHexBig(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	out, err := hexutil.DecodeBig(value)
	if err != nil {
		return nil, fmt.Errorf("%w: bad hex quantity %q", types.ErrRelay, value)
	}
	return out, nil
}
