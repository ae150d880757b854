// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package contracts

import (
	"context"

	"github.com/boostxyz/boost-protocol-sub000/boost/abis"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

var (
	regGetBaseImplementation = bindRead("getBaseImplementation", abis.BoostRegistryName)
	regGetClone              = bindRead("getClone", abis.BoostRegistryName)
	regGetCloneIdentifier    = bindRead("getCloneIdentifier", abis.BoostRegistryName)
	regGetClones             = bindRead("getClones", abis.BoostRegistryName)
	regGetIdentifier         = bindRead("getIdentifier", abis.BoostRegistryName)
	regDeployClone           = bindWrite("deployClone", abis.BoostRegistryName)
	regRegister              = bindWrite("register", abis.BoostRegistryName)
	regSimDeployClone        = bindSimulate("deployClone", abis.BoostRegistryName)
	regDeployed              = bindEvent("Deployed", abis.BoostRegistryName)
	regRegistered            = bindEvent("Registered", abis.BoostRegistryName)
)

// BoostRegistry records base implementations of boost modules and deploys
// initialized clones of them.
type BoostRegistry struct {
	*Contract
	erc165
}

// NewBoostRegistry binds the BoostRegistry at addr.
func NewBoostRegistry(addr common.Address, backend bind.ContractBackend) (*BoostRegistry, error) {
	c, err := NewContract(abis.BoostRegistryName, addr, backend)
	if err != nil {
		return nil, err
	}
	return &BoostRegistry{Contract: c, erc165: erc165{c}}, nil
}

// Registered is emitted when a base implementation is registered.
type Registered struct {
	RegistryType   uint8
	Identifier     [32]byte
	Implementation common.Address
	Log
}

// Deployed is emitted when a clone is deployed.
type Deployed struct {
	RegistryType       uint8
	Identifier         [32]byte
	BaseImplementation common.Address
	DeployedInstance   common.Address
	Log
}

// GetBaseImplementation looks up a registered base implementation.
func (r *BoostRegistry) GetBaseImplementation(ctx context.Context, identifier [32]byte) (common.Address, error) {
	return Read[common.Address](callOpts(ctx), r.Contract, regGetBaseImplementation, identifier)
}

// GetClone looks up a deployed clone.
func (r *BoostRegistry) GetClone(ctx context.Context, identifier [32]byte) (*Clone, error) {
	clone, err := Read[Clone](callOpts(ctx), r.Contract, regGetClone, identifier)
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

// GetCloneIdentifier computes the identifier of a clone.
func (r *BoostRegistry) GetCloneIdentifier(ctx context.Context, typ RegistryType, base, deployer common.Address, name string) ([32]byte, error) {
	return Read[[32]byte](callOpts(ctx), r.Contract, regGetCloneIdentifier, uint8(typ), base, deployer, name)
}

// GetClones lists the identifiers of the clones deployed by deployer.
func (r *BoostRegistry) GetClones(ctx context.Context, deployer common.Address) ([][32]byte, error) {
	return Read[[][32]byte](callOpts(ctx), r.Contract, regGetClones, deployer)
}

// GetIdentifier computes the identifier of a base implementation.
func (r *BoostRegistry) GetIdentifier(ctx context.Context, typ RegistryType, name string) ([32]byte, error) {
	return Read[[32]byte](callOpts(ctx), r.Contract, regGetIdentifier, uint8(typ), name)
}

// DeployClone deploys and initializes a clone of base.
func (r *BoostRegistry) DeployClone(opts *bind.TransactOpts, typ RegistryType, base common.Address, name string, data []byte) (*types.Transaction, error) {
	return Write(opts, r.Contract, regDeployClone, uint8(typ), base, name, data)
}

// Register registers a base implementation.
func (r *BoostRegistry) Register(opts *bind.TransactOpts, typ RegistryType, name string, implementation common.Address) (*types.Transaction, error) {
	return Write(opts, r.Contract, regRegister, uint8(typ), name, implementation)
}

// SimulateDeployClone simulates DeployClone, returning the clone address.
func (r *BoostRegistry) SimulateDeployClone(opts *SimOpts, typ RegistryType, base common.Address, name string, data []byte) (*Simulation[common.Address], error) {
	return Simulate[common.Address](opts, r.Contract, regSimDeployClone, uint8(typ), base, name, data)
}

// WatchRegistered subscribes to Registered events.
func (r *BoostRegistry) WatchRegistered(opts *bind.WatchOpts, sink chan<- *Registered, registryType []uint8, identifier [][32]byte) (event.Subscription, error) {
	return Watch[Registered](opts, r.Contract, regRegistered, sink, rule(registryType), rule(identifier))
}

// FilterRegistered retrieves past Registered events.
func (r *BoostRegistry) FilterRegistered(opts *bind.FilterOpts, registryType []uint8, identifier [][32]byte) ([]*Registered, error) {
	return Filter[Registered](opts, r.Contract, regRegistered, rule(registryType), rule(identifier))
}

// WatchDeployed subscribes to Deployed events.
func (r *BoostRegistry) WatchDeployed(opts *bind.WatchOpts, sink chan<- *Deployed, registryType []uint8, identifier [][32]byte) (event.Subscription, error) {
	return Watch[Deployed](opts, r.Contract, regDeployed, sink, rule(registryType), rule(identifier))
}

// FilterDeployed retrieves past Deployed events.
func (r *BoostRegistry) FilterDeployed(opts *bind.FilterOpts, registryType []uint8, identifier [][32]byte) ([]*Deployed, error) {
	return Filter[Deployed](opts, r.Contract, regDeployed, rule(registryType), rule(identifier))
}
