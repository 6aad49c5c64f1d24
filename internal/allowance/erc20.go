package allowance

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const erc20AllowanceABIJSON = `[
  {"inputs": [{"internalType": "address", "name": "owner", "type": "address"}, {"internalType": "address", "name": "spender", "type": "address"}], "name": "allowance", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

var (
	allowanceABI    abi.ABI
	allowanceOnce   sync.Once
	allowanceABIErr error
)

func getAllowanceABI() (abi.ABI, error) {
	allowanceOnce.Do(func() {
		allowanceABI, allowanceABIErr = abi.JSON(strings.NewReader(erc20AllowanceABIJSON))
	})
	return allowanceABI, allowanceABIErr
}

// ContractCaller is the read-only chain dependency: an eth_call executor.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

func erc20Allowance(ctx context.Context, caller ContractCaller, token, owner, spender common.Address) (*big.Int, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller is nil")
	}
	parsed, err := getAllowanceABI()
	if err != nil {
		return nil, err
	}

	data, err := parsed.Pack("allowance", owner, spender)
	if err != nil {
		return nil, fmt.Errorf("pack allowance: %w", err)
	}

	msg := ethereum.CallMsg{To: &token, Data: data}
	resp, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call allowance: %w", err)
	}

	values, err := parsed.Unpack("allowance", resp)
	if err != nil {
		return nil, fmt.Errorf("unpack allowance: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("allowance return size %d", len(values))
	}
	granted, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("allowance unexpected type %T", values[0])
	}
	return granted, nil
}
