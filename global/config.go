package global

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// Conf global config
var Conf Config

type Config struct {
	Version  string         `yaml:"version"`
	LogLevel string         `yaml:"logLevel"`
	Chain    ChainConfig    `yaml:"chain"`
	Relay    RelayConfig    `yaml:"relay"`
	GasModel GasModelConfig `yaml:"gas"`
}

type ChainConfig struct {
	RpcUrl            string `yaml:"rpcUrl" validate:"required,url"`
	ChainID           int64  `yaml:"chainId" validate:"required"`
	EntryPointAddress string `yaml:"entryPointAddress" validate:"required"`
	FactoryAddress    string `yaml:"factoryAddress" validate:"required"`
}

type RelayConfig struct {
	Url    string `yaml:"url" validate:"required,url"`
	ApiKey string `yaml:"apiKey"`
	// receipt polling (milliseconds)
	ReceiptTimeoutMs  int64 `yaml:"receiptTimeoutMs"`
	ReceiptIntervalMs int64 `yaml:"receiptIntervalMs"`
}

// GasModelConfig holds starting gas limits used before the relay estimate
// comes back (or when estimation fails).
type GasModelConfig struct {
	CallGasLimit               uint64 `yaml:"callGasLimit"`
	VerificationGasLimit       uint64 `yaml:"verificationGasLimit"`
	VerificationGasLimitDeploy uint64 `yaml:"verificationGasLimitDeploy"`
	PreVerificationGas         uint64 `yaml:"preVerificationGas"`
}

// LoadConfig reads and validates a yaml config file into the global Conf
func LoadConfig(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var conf Config
	if err := yaml.Unmarshal(content, &conf); err != nil {
		return err
	}
	conf.ApplyDefaults()

	validate := validator.New()
	if vErr := validate.Struct(conf); vErr != nil {
		return vErr
	}
	Conf = conf
	SetLogLevel(conf.LogLevel)
	return nil
}

// ApplyDefaults fills zero-valued tuning fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Relay.ReceiptTimeoutMs == 0 {
		c.Relay.ReceiptTimeoutMs = 60000
	}
	if c.Relay.ReceiptIntervalMs == 0 {
		c.Relay.ReceiptIntervalMs = 2000
	}
	if c.GasModel.CallGasLimit == 0 {
		c.GasModel.CallGasLimit = 200000
	}
	if c.GasModel.VerificationGasLimit == 0 {
		c.GasModel.VerificationGasLimit = 150000
	}
	if c.GasModel.VerificationGasLimitDeploy == 0 {
		c.GasModel.VerificationGasLimitDeploy = 600000
	}
	if c.GasModel.PreVerificationGas == 0 {
		c.GasModel.PreVerificationGas = 100000
	}
}
