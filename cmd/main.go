package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/keyfort/go-passkey-wallet/global"
	"github.com/keyfort/go-passkey-wallet/services"
)

var configFile string

func check(e error) {
	if e != nil {
		fmt.Printf("%v\n", e.Error())
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "passkey-wallet",
	Short:   "Passkey wallet is a smart-account pipeline signed with platform passkeys",
	Long:    `Passkey wallet builds, signs and relays ERC-4337 user operations for smart accounts whose owner key lives in a platform passkey.`,
	Version: "0.1.0",
	Run: func(cmd *cobra.Command, args []string) {
		// empty
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "conf.yaml", "configuration file path")
}

// loadConf loads the yaml configuration for commands that talk to the chain
// or the relay. The keys command works without one.
func loadConf() {
	check(global.LoadConfig(configFile))
}

func newRelayService() *services.RelayService {
	return services.NewRelayService(global.Conf.Relay, common.HexToAddress(global.Conf.Chain.EntryPointAddress))
}

func newAddressService() *services.AddressService {
	chain, err := services.NewChainService(global.Conf.Chain)
	check(err)
	return services.NewAddressService(chain, global.Conf.Chain)
}

func main() {
	Execute()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
