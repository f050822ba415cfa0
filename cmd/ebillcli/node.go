package main

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/bitbill-network/ebill-core/core/action"
	"github.com/bitbill-network/ebill-core/core/billcache"
	"github.com/bitbill-network/ebill-core/core/identity"
	"github.com/bitbill-network/ebill-core/core/store/filestore"
	"github.com/bitbill-network/ebill-core/pkg/config"
)

// node bundles the stores and engine every bill command needs, all rooted
// at the node's configured data directory.
type node struct {
	cfg       *config.Config
	identity  *filestore.IdentityStore
	contacts  *filestore.ContactStore
	companies *filestore.CompanyStore
	blocks    *filestore.BlockStore
	bills     *filestore.BillStore
	engine    *action.Engine
}

func openNode() (*node, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	ids, err := filestore.NewIdentityStore(cfg.Node.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open identity store: %w", err)
	}
	contacts, err := filestore.NewContactStore(cfg.Node.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open contact store: %w", err)
	}
	companies, err := filestore.NewCompanyStore(cfg.Node.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open company store: %w", err)
	}
	blocks, err := filestore.NewBlockStore(cfg.Node.DataDir + "/blocks")
	if err != nil {
		return nil, fmt.Errorf("open block store: %w", err)
	}
	bills, err := filestore.NewBillStore(cfg.Node.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open bill store: %w", err)
	}
	notifications, err := filestore.NewNotificationStore(cfg.Node.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open notification store: %w", err)
	}
	cache, err := billcache.New(cfg.Storage.BillCacheSz)
	if err != nil {
		return nil, fmt.Errorf("build bill cache: %w", err)
	}

	eng := action.New(blocks, bills, notifications, cache)
	if self, err := ids.Get(context.Background()); err == nil {
		eng.SelfNodeID = self.NodeID
	}
	if cfg.Bitcoin.Network == "testnet" {
		eng.Network = &chaincfg.TestNet3Params
	} else {
		eng.Network = &chaincfg.MainNetParams
	}
	queue, err := filestore.NewNostrQueueStore(cfg.Node.DataDir)
	if err == nil {
		eng.Queue = queue
	}

	return &node{
		cfg:       cfg,
		identity:  ids,
		contacts:  contacts,
		companies: companies,
		blocks:    blocks,
		bills:     bills,
		engine:    eng,
	}, nil
}

// localSigner loads the node's own identity and returns it as an
// action.Signer, for commands that act in the operator's own name rather
// than on behalf of a company.
func (n *node) localSigner() (action.Signer, *identity.Identity, error) {
	self, err := n.identity.Get(context.Background())
	if err != nil {
		return action.Signer{}, nil, fmt.Errorf("no local identity; run `ebillcli identity init` first: %w", err)
	}
	if !self.IsFull() {
		return action.Signer{}, nil, fmt.Errorf("local identity has no signing key")
	}
	return action.Signer{Keys: self.Keys, SignatoryNodeID: self.NodeID}, self, nil
}
