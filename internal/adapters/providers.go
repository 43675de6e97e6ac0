package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/flashops/internal/adapters/blockchain"
	internalconfig "github.com/trebuchet-org/flashops/internal/adapters/config"
	"github.com/trebuchet-org/flashops/internal/adapters/contracts"
	"github.com/trebuchet-org/flashops/internal/adapters/fs"
	"github.com/trebuchet-org/flashops/internal/adapters/interactive"
	"github.com/trebuchet-org/flashops/internal/adapters/ledger"
	"github.com/trebuchet-org/flashops/internal/adapters/senders"
	"github.com/trebuchet-org/flashops/internal/config"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// LedgerSet provides the RPC-backed ledger client
var LedgerSet = wire.NewSet(
	ledger.ProvideClient,
	wire.Bind(new(usecase.LedgerClient), new(*ledger.Client)),
)

// ContractsSet provides contract proxies bound to the active network
var ContractsSet = wire.NewSet(
	contracts.NewRegistry,
	wire.Bind(new(usecase.ContractRegistry), new(*contracts.Registry)),
)

// SendersSet provides signing accounts
var SendersSet = wire.NewSet(
	senders.NewService,
	wire.Bind(new(usecase.AccountProvider), new(*senders.Service)),
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewRunJournalAdapter,
	wire.Bind(new(usecase.OperationJournal), new(*fs.RunJournalAdapter)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.InteractiveSelector), new(*interactive.SelectorAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	config.ProvideNetworkResolver,
	internalconfig.NewNetworkResolverAdapter,
	wire.Bind(new(usecase.NetworkResolver), new(*internalconfig.NetworkResolverAdapter)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	blockchain.NewCheckerAdapter,
	wire.Bind(new(usecase.ChainProbe), new(*blockchain.CheckerAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	LedgerSet,
	ContractsSet,
	SendersSet,
	FSSet,
	InteractiveSet,
	ConfigSet,
	BlockchainSet,
)

var (
	_ usecase.LedgerClient        = (*ledger.Client)(nil)
	_ usecase.ContractRegistry    = (*contracts.Registry)(nil)
	_ usecase.AccountProvider     = (*senders.Service)(nil)
	_ usecase.OperationJournal    = (*fs.RunJournalAdapter)(nil)
	_ usecase.InteractiveSelector = (*interactive.SelectorAdapter)(nil)
	_ usecase.NetworkResolver     = (*internalconfig.NetworkResolverAdapter)(nil)
	_ usecase.ChainProbe          = (*blockchain.CheckerAdapter)(nil)
)
