package services

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// accountABIJson covers the smart account's batch execute entry, the only
// account function this core ever encodes.
const accountABIJson = `[
	{"type":"function","name":"executeBatch","inputs":[
		{"name":"calls","type":"tuple[]","components":[
			{"name":"target","type":"address"},
			{"name":"value","type":"uint256"},
			{"name":"data","type":"bytes"}
		]}
	]}
]`

// factoryABIJson covers the account factory: the CREATE2 address prediction
// and the matching account creation call. The three placeholder parameters
// are unused feature slots the factory reserves; this core always passes
// zero for them.
const factoryABIJson = `[
	{"type":"function","name":"getAddress","inputs":[
		{"name":"chainId","type":"uint256"},
		{"name":"slot0","type":"uint256"},
		{"name":"slot1","type":"uint256"},
		{"name":"slot2","type":"uint256"},
		{"name":"keySlot","type":"uint256"},
		{"name":"x","type":"uint256"},
		{"name":"y","type":"uint256"},
		{"name":"salt","type":"uint256"}
	],"outputs":[{"name":"account","type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"createAccount","inputs":[
		{"name":"chainId","type":"uint256"},
		{"name":"slot0","type":"uint256"},
		{"name":"slot1","type":"uint256"},
		{"name":"slot2","type":"uint256"},
		{"name":"keySlot","type":"uint256"},
		{"name":"x","type":"uint256"},
		{"name":"y","type":"uint256"},
		{"name":"salt","type":"uint256"}
	],"outputs":[{"name":"account","type":"address"}]}
]`

var (
	accountABI = mustParseABI(accountABIJson)
	factoryABI = mustParseABI(factoryABIJson)

	typeUint256 = mustNewType("uint256")
	typeAddress = mustNewType("address")
	typeBytes32 = mustNewType("bytes32")
	typeBytes   = mustNewType("bytes")
	typeString  = mustNewType("string")
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}
