package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/identity"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Manage the node's local identity",
}

var identityInitCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Generate a fresh key pair and save it as the local identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		kp, err := chain.NewKeyPair()
		if err != nil {
			return fmt.Errorf("generate key pair: %w", err)
		}
		id := identity.Identity{
			NodeID: chain.NodeIDFromPublicKey(kp.Public),
			Name:   args[0],
			Keys:   kp,
		}
		if err := n.identity.Save(context.Background(), id); err != nil {
			return fmt.Errorf("save identity: %w", err)
		}
		fmt.Printf("node_id: %s\n", id.NodeID)
		return nil
	},
}

var identityShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the local identity's public fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		self, err := n.identity.Get(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("node_id: %s\nname: %s\nfull: %v\n", self.NodeID, self.Name, self.IsFull())
		return nil
	},
}

func init() {
	identityCmd.AddCommand(identityInitCmd, identityShowCmd)
}
